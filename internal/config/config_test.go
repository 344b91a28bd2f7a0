package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envOf(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		env    map[string]string
		modify func(*Config)
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name: "environment",
			env: map[string]string{
				"CHESS_ADDR":                 "0.0.0.0:8080",
				"CHESS_RATE_LIMIT":           "0",
				"CHESS_MATCHMAKING_INTERVAL": "250ms",
				"CHESS_THEME":                "gray",
			},
			modify: func(c *Config) {
				c.Addr = "0.0.0.0:8080"
				c.RateLimit = 0
				c.MatchmakingInterval = 250 * time.Millisecond
				c.Theme = "gray"
			},
		},
		{
			name: "flags override environment",
			args: []string{"-addr", "127.0.0.1:9000", "-clock", "5m", "-demo"},
			env:  map[string]string{"CHESS_ADDR": "0.0.0.0:8080", "CHESS_CLOCK_LIMIT": "1m"},
			modify: func(c *Config) {
				c.Addr = "127.0.0.1:9000"
				c.ClockLimit = 5 * time.Minute
				c.Demo = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load("chess", tt.args, envOf(tt.env))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			want := Default()
			tt.modify(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{"bad theme", []string{"-theme", "purple"}, nil, "Theme"},
		{"bad addr", []string{"-addr", "nowhere"}, nil, "Addr"},
		{"negative rate", []string{"-rate-limit", "-1"}, nil, "RateLimit"},
		{"tiny interval", []string{"-matchmaking-interval", "1ms"}, nil, "MatchmakingInterval"},
		{"bad env duration", nil, map[string]string{"CHESS_CLOCK_LIMIT": "soon"}, "CHESS_CLOCK_LIMIT"},
		{"unknown flag", []string{"-verbose"}, nil, "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load("chess", tt.args, envOf(tt.env))
			if err == nil {
				t.Fatal("load succeeded; want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
