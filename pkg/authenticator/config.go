package authenticator

import (
	"encoding/hex"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/caarlos0/env/v11"

	"github.com/jeremyhahn/go-mobileauth/pkg/hotp"
	"github.com/jeremyhahn/go-mobileauth/pkg/secret"
)

// Config holds authenticator configuration.
type Config struct {
	// Secret is the raw HMAC key. Either Secret or RestoreText is required.
	Secret []byte
	// RestoreText is a serialized provisioning bundle (see pkg/secret);
	// fields it carries override the ones below.
	RestoreText string
	// Digits is the code length (1..9). Default: 6.
	Digits int
	// Period is the time step in seconds. Default: 30.
	Period int
	// Algorithm selects the HMAC hash. Default: SHA1.
	Algorithm hotp.Algorithm
	// Serial is the optional device serial; its first two characters name
	// the region when present.
	Serial string
	// Region is the two-letter sync region, used when no serial is set.
	Region string
	// Issuer and AccountName label provisioning URIs.
	Issuer      string
	AccountName string
	// Clock overrides the wall clock; tests inject a mock.
	Clock clock.Clock
}

// resolve validates the configuration, decodes RestoreText when present and
// applies defaults, returning the effective configuration.
func (c Config) resolve() (Config, error) {
	if c.Digits == 0 {
		c.Digits = hotp.DefaultDigits
	}
	if c.Period == 0 {
		c.Period = hotp.DefaultPeriod
	}
	if c.Algorithm == "" {
		c.Algorithm = hotp.AlgorithmSHA1
	}

	if c.RestoreText != "" {
		bundle, _, err := secret.Decode(c.RestoreText, secret.Bundle{
			Digits:    c.Digits,
			Algorithm: c.Algorithm,
			Period:    c.Period,
			Serial:    c.Serial,
		})
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Secret = bundle.Secret
		c.Digits = bundle.Digits
		c.Algorithm = bundle.Algorithm
		c.Period = bundle.Period
		c.Serial = bundle.Serial
	}

	if len(c.Secret) == 0 {
		return Config{}, fmt.Errorf("%w: secret must not be empty", ErrInvalidConfig)
	}
	if c.Digits < 1 || c.Digits > 9 {
		return Config{}, fmt.Errorf("%w: digits must be between 1 and 9", ErrInvalidConfig)
	}
	if c.Period < 1 {
		return Config{}, fmt.Errorf("%w: period must be positive", ErrInvalidConfig)
	}
	switch c.Algorithm {
	case hotp.AlgorithmSHA1, hotp.AlgorithmSHA256, hotp.AlgorithmSHA512:
	default:
		return Config{}, fmt.Errorf("%w: algorithm must be SHA1, SHA256, or SHA512", ErrInvalidConfig)
	}

	return c, nil
}

// envConfig is the environment-variable surface for FromEnv.
type envConfig struct {
	SecretHex   string `env:"MOBILEAUTH_SECRET"`
	RestoreText string `env:"MOBILEAUTH_RESTORE"`
	Digits      int    `env:"MOBILEAUTH_DIGITS" envDefault:"6"`
	Period      int    `env:"MOBILEAUTH_PERIOD" envDefault:"30"`
	Algorithm   string `env:"MOBILEAUTH_ALGORITHM" envDefault:"SHA1"`
	Serial      string `env:"MOBILEAUTH_SERIAL"`
	Region      string `env:"MOBILEAUTH_REGION" envDefault:"US"`
	Issuer      string `env:"MOBILEAUTH_ISSUER"`
	AccountName string `env:"MOBILEAUTH_ACCOUNT"`
}

// FromEnv builds a Config from MOBILEAUTH_* environment variables. The
// secret may be supplied as hex (MOBILEAUTH_SECRET) or as a serialized
// bundle (MOBILEAUTH_RESTORE).
func FromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := Config{
		RestoreText: ec.RestoreText,
		Digits:      ec.Digits,
		Period:      ec.Period,
		Algorithm:   hotp.Algorithm(ec.Algorithm),
		Serial:      ec.Serial,
		Region:      ec.Region,
		Issuer:      ec.Issuer,
		AccountName: ec.AccountName,
	}

	if ec.SecretHex != "" {
		key, err := hex.DecodeString(ec.SecretHex)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MOBILEAUTH_SECRET is not valid hex: %v", ErrInvalidConfig, err)
		}
		cfg.Secret = key
	}

	return cfg, nil
}
