/**
 * @description
 * This file handles configuration management for the bridge-service. It uses
 * the Viper library to read settings from environment variables or a local
 * .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration library for Go applications.
 */
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application. The values are read
// by viper from a config file or environment variables.
type Config struct {
	ServerPort             string `mapstructure:"SERVER_PORT"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	RabbitMQURL            string `mapstructure:"RABBITMQ_URL"`
	RedisURL               string `mapstructure:"REDIS_URL"`
	BridgeAPIKey           string `mapstructure:"BRIDGE_API_KEY"`
	BridgeSandbox          bool   `mapstructure:"BRIDGE_SANDBOX"`
	BridgeWebhookPublicKey string `mapstructure:"BRIDGE_WEBHOOK_PUBLIC_KEY"`
	KycReconcileSchedule   string `mapstructure:"KYC_RECONCILE_SCHEDULE"`
	KycReconcileBatchSize  int    `mapstructure:"KYC_RECONCILE_BATCH_SIZE"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind env vars explicitly
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("BRIDGE_API_KEY")
	_ = viper.BindEnv("BRIDGE_SANDBOX")
	_ = viper.BindEnv("BRIDGE_WEBHOOK_PUBLIC_KEY")
	_ = viper.BindEnv("KYC_RECONCILE_SCHEDULE")
	_ = viper.BindEnv("KYC_RECONCILE_BATCH_SIZE")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("KYC_RECONCILE_SCHEDULE", "*/15 * * * *")
	viper.SetDefault("KYC_RECONCILE_BATCH_SIZE", 50)

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, err
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config.BridgeAPIKey == "" {
		return config, errors.New("BRIDGE_API_KEY is required")
	}
	if config.BridgeWebhookPublicKey == "" {
		return config, errors.New("BRIDGE_WEBHOOK_PUBLIC_KEY is required")
	}

	return config, nil
}
