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
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	TokenSymmetricKey    string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	BankPrefix           string        `mapstructure:"BANK_PREFIX"`
	BankName             string        `mapstructure:"BANK_NAME"`
	BankTransactionURL   string        `mapstructure:"BANK_TRANSACTION_URL"`
	BankJWKSURL          string        `mapstructure:"BANK_JWKS_URL"`
	CentralBankURL       string        `mapstructure:"CENTRAL_BANK_URL"`
	CentralBankAPIKey    string        `mapstructure:"CENTRAL_BANK_API_KEY"`
	KeysDir              string        `mapstructure:"KEYS_DIR"`
	AssertionTTL         time.Duration `mapstructure:"ASSERTION_TTL"`
	InterbankTimeout     time.Duration `mapstructure:"INTERBANK_TIMEOUT"`
	Environement         string        `mapstructure:"GO_ENV"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("ASSERTION_TTL", 5*time.Minute)
	viper.SetDefault("INTERBANK_TIMEOUT", 5*time.Second)

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
