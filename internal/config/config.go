package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	ClassifierURL string `env:"CLASSIFIER_URL"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal("[ERR] Failed to parse config: ", err)
	}
	return cfg
}
