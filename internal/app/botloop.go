package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/anonmektep/portal/internal/bot"
	"github.com/anonmektep/portal/internal/ctxutil"
	"github.com/anonmektep/portal/internal/metrics"
	"github.com/anonmektep/portal/internal/observability"
)

const updateTimeout = 30 * time.Second

// RunBot крутит long polling до отмены контекста. Обработка апдейта идёт
// в отдельной горутине, внутри одного чата — строго по очереди.
func RunBot(ctx context.Context, api *tgbotapi.BotAPI, d *bot.Dispatcher, log *zap.SugaredLogger) {
	limiter := NewChatLimiter()

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, open := <-updates:
			if !open {
				return
			}
			metrics.BotUpdates.Inc()

			chatID := updateChatID(update)
			if chatID == 0 {
				continue
			}

			go limiter.Do(chatID, func() {
				defer func() {
					if r := recover(); r != nil {
						metrics.HandlerErrors.Inc()
						log.Errorw("паника в обработчике", "chat_id", chatID, "panic", r)
						observability.CaptureErr(fmt.Errorf("паника в обработчике апдейта: %v", r))
					}
				}()

				uctx, cancel := ctxutil.WithTimeout(ctxutil.WithChatID(ctx, chatID), updateTimeout)
				defer cancel()

				switch {
				case update.CallbackQuery != nil:
					d.HandleCallback(uctx, update.CallbackQuery)
				case update.Message != nil:
					d.HandleMessage(uctx, update.Message)
				}
			})
		}
	}
}

func updateChatID(u tgbotapi.Update) int64 {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID
	}
	return 0
}
