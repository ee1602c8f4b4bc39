package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"careerarcade"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"super-secret-key-change-me"`

	// AMQPURL enables the analytics sink; empty disables it.
	AMQPURL string `env:"AMQP_URL"`

	TickInterval      time.Duration `env:"TICK_INTERVAL" envDefault:"250ms"`
	RevealHold        time.Duration `env:"REVEAL_HOLD" envDefault:"2s"`
	Intermission      time.Duration `env:"INTERMISSION" envDefault:"15s"`
	JoinGrace         time.Duration `env:"JOIN_GRACE" envDefault:"10s"`
	RoundTime         time.Duration `env:"ROUND_TIME" envDefault:"20s"`
	InactivityTimeout time.Duration `env:"INACTIVITY_TIMEOUT" envDefault:"2m"`
	SessionTimeLimit  time.Duration `env:"SESSION_TIME_LIMIT" envDefault:"10m"`
	BotThinkDelay     time.Duration `env:"BOT_THINK_DELAY" envDefault:"1500ms"`
	BotPolicy         string        `env:"BOT_POLICY" envDefault:"weighted"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
