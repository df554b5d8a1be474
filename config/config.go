package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"padel-bot/types"
)

// Venue ids worth watching; override with RELEVANT_TENANTS.
var defaultRelevantTenants = []string{
	"19dd692d-32d8-4e22-8a25-989a00b2695f", // Padel City
	"cc65e668-bba9-42f6-8629-31c607c1b899", // Allround Padel
	"0bd51db2-7d73-4748-952e-2b628e4e7679", // Plaza Padel
}

type App struct {
	// Telegram
	TelegramToken   string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	TelegramAdminID int64  `envconfig:"TELEGRAM_CHAT_ID"`
	// Playtomic
	PlaytomicURL      string   `envconfig:"PLAYTOMIC_URL" default:"https://playtomic.io"`
	PlaytomicEmail    string   `envconfig:"PLAYTOMIC_EMAIL" required:"true"`
	PlaytomicPassword string   `envconfig:"PLAYTOMIC_PASSWORD" required:"true"`
	RelevantTenants   []string `envconfig:"RELEVANT_TENANTS"`
	// Bot API (preferred clubs and times)
	BotAPIURL string `envconfig:"PLAYTOMIC_BOT_API" required:"true"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	// Redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	// Watcher
	CheckInterval  time.Duration `envconfig:"CHECK_INTERVAL" default:"20m"`
	DurationPolicy string        `envconfig:"DURATION_POLICY" default:"min:90"`
	DesiredTimes   []string      `envconfig:"DESIRED_TIMES" default:"17:30:00,18:00:00"`
	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if len(c.RelevantTenants) == 0 {
		c.RelevantTenants = defaultRelevantTenants
	}
	return c, nil
}

// ParseDurationPolicy turns "min:90" or "exact:90,120" into a policy.
func (c App) ParseDurationPolicy() (types.DurationPolicy, error) {
	kind, arg, ok := strings.Cut(c.DurationPolicy, ":")
	if !ok {
		return nil, fmt.Errorf("invalid duration policy %q, want min:N or exact:N,M", c.DurationPolicy)
	}

	switch kind {
	case "min":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid duration policy %q: %w", c.DurationPolicy, err)
		}
		return types.MinDuration(n), nil
	case "exact":
		var durations []int
		for _, part := range strings.Split(arg, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid duration policy %q: %w", c.DurationPolicy, err)
			}
			durations = append(durations, n)
		}
		return types.ExactDurations(durations...), nil
	default:
		return nil, fmt.Errorf("unknown duration policy kind %q", kind)
	}
}
