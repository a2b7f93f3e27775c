package notify

import (
	"context"
	"database/sql"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/metrics"
	"github.com/anonmektep/portal/internal/models"
	"github.com/anonmektep/portal/internal/tg"
)

type Notifier struct {
	Bot     *tgbotapi.BotAPI
	DB      *sql.DB
	BaseURL string
	Log     *zap.SugaredLogger
}

// ReportCreated рассылает алерт о новом обращении. Доставка best-effort:
// сбой по одному получателю логируется и не мешает остальным, создание
// обращения от рассылки не зависит.
func (n *Notifier) ReportCreated(ctx context.Context, r *models.Report) {
	if n.Bot == nil {
		return
	}
	targets, err := db.NotifyTargets(ctx, n.DB, r.SchoolID)
	if err != nil {
		n.Log.Warnw("не удалось выбрать получателей уведомления", "report_id", r.ID, "err", err)
		return
	}

	text := FormatReportAlert(r)
	markup := AlertKeyboard(r.ID, n.BaseURL)
	for _, u := range targets {
		if u.TelegramChatID == nil {
			continue
		}
		msg := tgbotapi.NewMessage(*u.TelegramChatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		msg.ReplyMarkup = markup
		if _, err := tg.SendWithRetry(n.Bot, msg); err != nil {
			metrics.NotifyFailures.Inc()
			n.Log.Warnw("уведомление не доставлено", "report_id", r.ID, "chat_id", *u.TelegramChatID, "err", err)
		}
	}
}

// FormatReportAlert — текст алерта: номер, адресат, тип, усечённое описание,
// время. HTML-режим Telegram.
func FormatReportAlert(r *models.Report) string {
	recipient := "🏢 <b>Районный отдел образования</b>"
	if r.SchoolID != nil {
		recipient = fmt.Sprintf("🏫 <b>Школа:</b> %s", r.SchoolName)
	}
	return fmt.Sprintf(
		"🚨 <b>Новое обращение #%d</b>\n\n%s\n📋 <b>Тип проблемы:</b> %s\n📝 <b>Описание:</b> %s\n⏰ <b>Время:</b> %s",
		r.ID,
		recipient,
		r.ProblemType.Label(),
		Truncate(r.Problem, 200),
		r.CreatedAt.Format("02.01.2006 15:04"),
	)
}

// AlertKeyboard — кнопки быстрых действий плюс ссылка на карточку в вебе.
func AlertKeyboard(reportID int64, baseURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ В работу", fmt.Sprintf("status:%d:in_progress", reportID)),
			tgbotapi.NewInlineKeyboardButtonData("✅ Решено", fmt.Sprintf("status:%d:resolved", reportID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Комментарий", fmt.Sprintf("comment:%d", reportID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📋 Открыть в браузере", fmt.Sprintf("%s/staff/reports/%d", baseURL, reportID)),
		),
	)
}

// Truncate обрезает строку по рунам, добавляя многоточие.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
