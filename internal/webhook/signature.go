/**
 * @description
 * This file implements verification of Bridge webhook signatures. Bridge signs
 * every webhook delivery with RSA-SHA256 and sends the result in a header of
 * the form `t=<unix-ms>,v0=<base64 signature>`. The signed payload is the
 * literal string "<timestamp>.<raw_body>", so verification must run against
 * the raw request bytes before any JSON decoding.
 *
 * Key features:
 * - Enforces a time-tolerance window (10 minutes by default) that bounds how
 *   long a captured signature can be replayed.
 * - Clock and tolerance are injectable through VerifyOptions so tests are
 *   deterministic.
 * - All cryptographic failure modes collapse into the single message
 *   "Invalid signature"; callers cannot tell a malformed key from a
 *   non-matching signature.
 *
 * @dependencies
 * - crypto/rsa, crypto/sha256, crypto/x509, encoding/pem: Standard library
 *   RSA signature verification.
 */
package webhook

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultToleranceMs is the maximum allowed skew between the signature
// timestamp and the verification clock: 10 minutes.
const DefaultToleranceMs int64 = 10 * 60 * 1000

// Logger is the advisory logging port for the webhook core. Logging never
// alters control flow; a nil logger keeps verification silent.
type Logger interface {
	Printf(format string, v ...any)
}

// VerifyOptions tunes signature verification. Zero values select the
// defaults: DefaultToleranceMs and the wall clock.
type VerifyOptions struct {
	ToleranceMs int64
	NowMs       int64
	Logger      Logger
}

// Verify checks that signatureHeader is a valid RSA-SHA256 signature of
// rawBody produced within the tolerance window. It returns nil on success and
// a *SignatureError with a stable message on every failure mode.
func Verify(rawBody []byte, signatureHeader string, publicKeyPEM []byte, opts VerifyOptions) error {
	if signatureHeader == "" {
		return &SignatureError{Message: "Missing signature header"}
	}

	timestamp, signature, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	timestampMs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return &SignatureError{Message: "Invalid signature timestamp"}
	}

	nowMs := opts.NowMs
	if nowMs == 0 {
		nowMs = time.Now().UnixMilli()
	}
	toleranceMs := opts.ToleranceMs
	if toleranceMs == 0 {
		toleranceMs = DefaultToleranceMs
	}

	skew := nowMs - timestampMs
	if skew < 0 {
		skew = -skew
	}
	if skew > toleranceMs {
		return &SignatureError{Message: "Signature timestamp outside tolerance"}
	}

	// The signed payload uses the exact timestamp substring from the header
	// and the raw body verbatim. Re-serializing the body would break this.
	signedPayload := timestamp + "." + string(rawBody)

	pub, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		logf(opts.Logger, "webhook signature: public key parse failed: %v", err)
		return &SignatureError{Message: "Invalid signature"}
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		logf(opts.Logger, "webhook signature: base64 decode failed: %v", err)
		return &SignatureError{Message: "Invalid signature"}
	}

	digest := sha256.Sum256([]byte(signedPayload))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		logf(opts.Logger, "webhook signature: mismatch")
		return &SignatureError{Message: "Invalid signature"}
	}

	logf(opts.Logger, "webhook signature: verified")
	return nil
}

// parseSignatureHeader extracts the timestamp and signature substrings from a
// `t=<ts>,v0=<sig>` header.
func parseSignatureHeader(header string) (timestamp, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		if v, ok := strings.CutPrefix(part, "t="); ok && timestamp == "" {
			timestamp = v
		}
		if v, ok := strings.CutPrefix(part, "v0="); ok && signature == "" {
			signature = v
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", &SignatureError{Message: "Missing signature timestamp or value"}
	}
	return timestamp, signature, nil
}

// parseRSAPublicKey accepts both PKCS#1 and PKIX PEM encodings, since Bridge
// has changed the format of the webhook public key between API versions.
func parseRSAPublicKey(publicKeyPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return pub, nil
}

func logf(l Logger, format string, v ...any) {
	if l != nil {
		l.Printf(format, v...)
	}
}
