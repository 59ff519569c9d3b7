package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8000"`
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns    int32  `env:"DB_MIN_CONNS" envDefault:"1"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	ReplyText     string `env:"REPLY_TEXT" envDefault:"recieved and returned"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	// Ventana y maximo de appends por chat; solo aplica con REDIS_ADDR.
	AppendRateWindow time.Duration `env:"APPEND_RATE_WINDOW" envDefault:"1m"`
	AppendRateMax    int           `env:"APPEND_RATE_MAX" envDefault:"30"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
