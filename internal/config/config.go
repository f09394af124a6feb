package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	JWT struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"jwt"`
	Storage struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"storage"`
	Geocoder struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"geocoder"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	FCM struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"fcm"`
	Cleaner struct {
		StaleAfterDays int `yaml:"stale_after_days"`
	} `yaml:"cleaner"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	// Env overrides for values that should not live in the file.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.JWT.SigningKey = v
	}
	if v := os.Getenv("GEOCODER_API_KEY"); v != "" {
		cfg.Geocoder.APIKey = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	return cfg
}
