package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	HTTPAddr    string
	// BaseURL — внешний адрес портала, используется в ссылках
	// /send/{code} и в кнопке «Открыть в браузере».
	BaseURL            string
	SessionSecret      string
	RecaptchaSecret    string // пустой — проверка пропускается (dev-режим)
	RecaptchaThreshold float64
	Location           *time.Location
	LogLevel           string
	Env                string // dev|prod
	SentryDSN          string
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Bishkek")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	threshold := 0.5
	if v := os.Getenv("RECAPTCHA_THRESHOLD"); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RECAPTCHA_THRESHOLD: %w", err)
		}
	}

	cfg := &Config{
		BotToken:           mustEnv("BOT_TOKEN"),
		DatabaseURL:        mustEnv("DATABASE_URL"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		BaseURL:            getenv("BASE_URL", "http://127.0.0.1:8080"),
		SessionSecret:      mustEnv("SESSION_SECRET"),
		RecaptchaSecret:    os.Getenv("RECAPTCHA_SECRET"),
		RecaptchaThreshold: threshold,
		Location:           loc,
		LogLevel:           getenv("LOG_LEVEL", "info"),
		Env:                getenv("ENV", "dev"),
		SentryDSN:          os.Getenv("SENTRY_DSN"),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
