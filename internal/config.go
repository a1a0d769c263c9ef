package internal

import (
	errs "chatroom/errors"
	"chatroom/runtime"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Config is the chat server configuration, read from the environment.
type Config struct {
	Host            string        `env:"HOST" validate:"omitempty,hostname_rfc1123|ip"`
	Port            int           `env:"PORT,default=1500" validate:"min=1,max=65535"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	OutboxSize      int           `env:"OUTBOX_SIZE,default=64" validate:"min=1"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT,default=0s" validate:"gte=0"`
	MaxLineLength   int           `env:"MAX_LINE_LENGTH,default=65536" validate:"min=64"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CensoredDir     string        `env:"CENSORED_DIR"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=0s" validate:"gte=0"`
	DebugPort       int           `env:"DEBUG_PORT,default=0" validate:"min=0,max=65535"`
	AdminPort       int           `env:"ADMIN_PORT,default=0" validate:"min=0,max=65535"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
}

var validate = validator.New()

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	return nil
}

// Address is the chat listen address, all interfaces when Host is empty.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) SessionOptions() runtime.SessionOptions {
	return runtime.SessionOptions{
		OutboxSize:    c.OutboxSize,
		WriteTimeout:  c.WriteTimeout,
		IdleTimeout:   c.IdleTimeout,
		MaxLineLength: c.MaxLineLength,
	}
}

// Words splits CENSORED_WORDS on commas, dropping blanks and duplicates.
func (c Config) Words() []string {
	words := lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Uniq(lo.Compact(words))
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
