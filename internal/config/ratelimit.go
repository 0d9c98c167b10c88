package config

import (
	"strings"
	"time"
)

// DefaultLimitedCommands are the commands that change shared state.
// LIST_FLIGHTS is read-only and stays unthrottled unless listed.
var DefaultLimitedCommands = []string{"REGISTER", "LOGIN", "ADD_FLIGHT", "RESERVE", "CONFIRM", "CANCEL"}

// RateLimitConfig configures the Redis token bucket applied to command
// frames.  Limiting is off by default and also stays off when no Redis
// client could be created.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size
	RefillTokens   int           // tokens added per RefillInterval
	RefillInterval time.Duration
	TTL            time.Duration // idle buckets expire after this
	KeyStrategy    string        // ip, session, command, ip_command, session_command, or all three
	Prefix         string
	Commands       []string // throttled command names; empty means all
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", false),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_session_command"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Commands:       envList("RATE_LIMIT_COMMANDS", DefaultLimitedCommands),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		rl.Capacity = b
	}
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// A bucket must outlive a few refills or it resets to full.
	if floor := 5 * rl.RefillInterval; rl.TTL < floor {
		rl.TTL = floor
	}
	return rl
}

// Limits reports whether command is subject to throttling.
func (rl RateLimitConfig) Limits(command string) bool {
	if len(rl.Commands) == 0 {
		return true
	}
	for _, c := range rl.Commands {
		if c == command {
			return true
		}
	}
	return false
}

func envList(k string, d []string) []string {
	v := envStr(k, "")
	if v == "" {
		return d
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
