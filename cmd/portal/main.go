package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/anonmektep/portal/internal/app"
	"github.com/anonmektep/portal/internal/bot"
	"github.com/anonmektep/portal/internal/captcha"
	"github.com/anonmektep/portal/internal/config"
	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/jobs"
	"github.com/anonmektep/portal/internal/logging"
	"github.com/anonmektep/portal/internal/notify"
	"github.com/anonmektep/portal/internal/observability"
	"github.com/anonmektep/portal/internal/web"
)

var version = "dev" // подставляется при сборке через -ldflags

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	zl := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		zl.Warnw("sentry не инициализирован", "err", err)
	}
	defer flush()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		zl.Fatalw("подключение к БД", "err", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		zl.Fatalw("миграции", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Первый супер-админ заводится один раз на пустой базе
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		username := os.Getenv("ADMIN_USERNAME")
		if username == "" {
			username = "admin"
		}
		created, err := db.SeedSuperAdmin(ctx, database, username, pass)
		if err != nil {
			zl.Fatalw("создание первого администратора", "err", err)
		}
		if created {
			zl.Infow("создан первый супер-админ", "username", username)
		}
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		zl.Fatalw("запуск бота", "err", err)
	}
	zl.Infow("бот запущен", "username", api.Self.UserName)

	notifier := &notify.Notifier{Bot: api, DB: database, BaseURL: cfg.BaseURL, Log: zl}
	verifier := captcha.New(cfg.RecaptchaSecret, cfg.RecaptchaThreshold, zl)

	server := web.New(database, cfg, zl, verifier, notifier)
	app.StartHTTP(ctx, cfg.HTTPAddr, server.Router())
	zl.Infow("http запущен", "addr", cfg.HTTPAddr)

	runner := jobs.New(ctx)
	runner.Every(time.Hour, "session_cleanup", jobs.SessionCleanup(database, zl))

	dispatcher := bot.NewDispatcher(api, database, zl)
	app.RunBot(ctx, api, dispatcher, zl)

	zl.Info("остановка")
}
