package client

import (
	"net"
	"strconv"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the terminal client settings. Command-line flags override them.
type Config struct {
	Host string `envconfig:"CHAT_HOST" default:"localhost"`
	Port int    `envconfig:"CHAT_PORT" default:"1500"`
	// CHAT_COLOURS enables colorized output for system lines and private messages
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
