// Package config loads the ambient settings the dispatcher and transport
// need to start: listen address, the tradeable symbol set, and the depth
// of each shard's mailbox. None of it is part of the matching core's
// contract; the core only ever sees symbols, sides, prices, and sizes.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully-resolved process configuration.
type Config struct {
	Address      string
	Port         int
	Symbols      []string
	MailboxDepth int
	LogLevel     string
}

const (
	defaultAddress      = "0.0.0.0"
	defaultPort         = 8080
	defaultMailboxDepth = 256
	defaultLogLevel     = "info"
)

var defaultSymbols = []string{"BTCUSD", "ETHUSD"}

// Load resolves configuration from, in increasing priority: built-in
// defaults, a config file named "ladderbook" (if found on the search
// path), and environment variables prefixed LADDERBOOK_.
func Load(configPath string) (Config, error) {
	v := viper.New()

	v.SetDefault("address", defaultAddress)
	v.SetDefault("port", defaultPort)
	v.SetDefault("symbols", defaultSymbols)
	v.SetDefault("mailbox_depth", defaultMailboxDepth)
	v.SetDefault("log_level", defaultLogLevel)

	v.SetConfigName("ladderbook")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("LADDERBOOK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}

	symbols := v.GetStringSlice("symbols")
	for i, s := range symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	return Config{
		Address:      v.GetString("address"),
		Port:         v.GetInt("port"),
		Symbols:      symbols,
		MailboxDepth: v.GetInt("mailbox_depth"),
		LogLevel:     v.GetString("log_level"),
	}, nil
}
