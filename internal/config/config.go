// Package config reads the service configuration through viper.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the assembled service configuration.
type Config struct {
	ListenIP   string
	ListenPort string
	LogLevel   string

	// ControlURL is the base URL of the control core's HTTP gateway.
	ControlURL     string
	ControlTimeout time.Duration

	// Detectors, when set, seeds the registry without asking the
	// control core for the inventory.
	Detectors []string

	// RedisAddr enables mirroring of lock broadcasts to Redis when
	// non-empty.
	RedisAddr    string
	RedisChannel string
}

// SetDefaults installs the defaults so they apply even without a
// config file.
func SetDefaults() {
	viper.SetDefault("listen.ip", "0.0.0.0")
	viper.SetDefault("listen.port", "8084")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("control.timeout", 7*time.Second)
	viper.SetDefault("broadcast.redis_channel", "detlockd.locks")
}

// Load assembles the configuration from whatever viper has read.
func Load() Config {
	return Config{
		ListenIP:       viper.GetString("listen.ip"),
		ListenPort:     viper.GetString("listen.port"),
		LogLevel:       viper.GetString("log.level"),
		ControlURL:     viper.GetString("control.url"),
		ControlTimeout: viper.GetDuration("control.timeout"),
		Detectors:      viper.GetStringSlice("inventory.detectors"),
		RedisAddr:      viper.GetString("broadcast.redis_addr"),
		RedisChannel:   viper.GetString("broadcast.redis_channel"),
	}
}
