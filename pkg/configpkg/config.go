// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver             string        `mapstructure:"DB_DRIVER"`
	DBSource             string        `mapstructure:"DB_SOURCE"`
	DBLockTimeout        time.Duration `mapstructure:"DB_LOCK_TIMEOUT"`
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	TokenType            string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey    string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	TransferFeePercent   string        `mapstructure:"TRANSFER_FEE_PERCENT"`
	Environment          string        `mapstructure:"GO_ENV"`
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("TOKEN_TYPE", "paseto")
	v.SetDefault("TRANSFER_FEE_PERCENT", "0")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
