package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is shared by the server and the terminal front ends. Each binary
// reads the fields it needs.
type Config struct {
	Addr                string        `validate:"required,hostname_port"`
	AllowOrigins        string        `validate:"required"`
	RateLimit           int           `validate:"min=0"` // requests per second per IP, 0 disables
	MatchmakingInterval time.Duration `validate:"min=10ms"`
	ClockLimit          time.Duration `validate:"min=1s"`
	HistoryFile         string
	Theme               string `validate:"oneof=off brown green gray"`
	Demo                bool
	Dev                 bool
}

func Default() Config {
	return Config{
		Addr:                "localhost:3000",
		AllowOrigins:        "http://localhost:5173",
		RateLimit:           10,
		MatchmakingInterval: time.Second,
		ClockLimit:          10 * time.Minute,
		HistoryFile:         ".chess_history",
		Theme:               "brown",
	}
}

var validate = validator.New()

// Validate checks the struct tags above and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(fields, "; "))
}

// Load builds a Config from defaults, then CHESS_* environment variables,
// then command-line flags.
func Load(name string, args []string) (Config, error) {
	return load(name, args, os.Getenv)
}

func load(name string, args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "API listen address (host:port)")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", cfg.AllowOrigins, "comma separated CORS origins")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per second per IP, 0 disables")
	fs.DurationVar(&cfg.MatchmakingInterval, "matchmaking-interval", cfg.MatchmakingInterval, "how often queued players are paired")
	fs.DurationVar(&cfg.ClockLimit, "clock", cfg.ClockLimit, "thinking time per player")
	fs.StringVar(&cfg.HistoryFile, "history-file", cfg.HistoryFile, "readline history file, empty disables")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "board colors: off, brown, green, gray")
	fs.BoolVar(&cfg.Demo, "demo", cfg.Demo, "play the four move demo and exit")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development mode (relaxed rate limits)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("CHESS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("CHESS_ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = v
	}
	if v := getenv("CHESS_HISTORY_FILE"); v != "" {
		cfg.HistoryFile = v
	}
	if v := getenv("CHESS_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := getenv("CHESS_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHESS_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = n
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CHESS_MATCHMAKING_INTERVAL", &cfg.MatchmakingInterval},
		{"CHESS_CLOCK_LIMIT", &cfg.ClockLimit},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}
