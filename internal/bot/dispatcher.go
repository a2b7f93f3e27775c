package bot

import (
	"context"
	"database/sql"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/metrics"
	"github.com/anonmektep/portal/internal/tg"
)

// Dispatcher разбирает входящие апдейты. Состояние диалога живёт в
// bot_sessions, сам диспетчер ничего в памяти не держит.
type Dispatcher struct {
	Bot *tgbotapi.BotAPI
	DB  *sql.DB
	Log *zap.SugaredLogger
}

func NewDispatcher(bot *tgbotapi.BotAPI, database *sql.DB, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{Bot: bot, DB: database, Log: log}
}

func (d *Dispatcher) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/start") {
		d.startAuth(ctx, chatID)
		return
	}
	if text == "/logout" {
		d.logout(ctx, chatID)
		return
	}

	user, err := db.GetUserByChatID(ctx, d.DB, chatID)
	if err != nil && !isNotFound(err) {
		d.Log.Errorw("поиск пользователя по чату", "err", err, "chat_id", chatID)
		return
	}

	// Чат привязан к учётной записи
	if user != nil {
		if !user.IsActive {
			d.send(tgbotapi.NewMessage(chatID, "🚫 Учетная запись отключена. Обратитесь к администратору."))
			return
		}
		sess, err := db.GetBotSession(ctx, d.DB, chatID)
		if err != nil {
			d.Log.Errorw("чтение сессии", "err", err, "chat_id", chatID)
			return
		}
		if sess != nil && sess.State == db.BotStateAwaitingComment {
			d.saveComment(ctx, chatID, user, sess, text)
			return
		}
		d.sendMainMenu(chatID, user)
		return
	}

	// Чат не привязан: либо идёт авторизация, либо её ещё не начали
	sess, err := db.GetBotSession(ctx, d.DB, chatID)
	if err != nil {
		d.Log.Errorw("чтение сессии", "err", err, "chat_id", chatID)
		return
	}
	if sess == nil {
		d.send(tgbotapi.NewMessage(chatID, "⚠️ Вы не авторизованы. Нажмите /start для входа."))
		return
	}
	switch sess.State {
	case db.BotStateAwaitingUsername:
		d.acceptUsername(ctx, chatID, sess, text)
	case db.BotStateAwaitingPassword:
		d.acceptPassword(ctx, chatID, sess, text)
	default:
		d.send(tgbotapi.NewMessage(chatID, "⚠️ Вы не авторизованы. Нажмите /start для входа."))
	}
}

func (d *Dispatcher) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	user, err := db.GetUserByChatID(ctx, d.DB, chatID)
	if err != nil && !isNotFound(err) {
		d.Log.Errorw("поиск пользователя по чату", "err", err, "chat_id", chatID)
		d.answer(cb.ID, "Внутренняя ошибка")
		return
	}
	if user == nil {
		d.answer(cb.ID, "")
		d.send(tgbotapi.NewMessage(chatID, "⚠️ Вы не авторизованы. Нажмите /start для входа."))
		return
	}
	if !user.IsActive {
		d.answer(cb.ID, "Доступ закрыт")
		d.send(tgbotapi.NewMessage(chatID, "🚫 Учетная запись отключена. Обратитесь к администратору."))
		return
	}

	parts := strings.Split(cb.Data, ":")
	msgID := cb.Message.MessageID

	switch parts[0] {
	case "menu":
		d.answer(cb.ID, "")
		d.editMainMenu(chatID, msgID, user)
	case "stats":
		d.answer(cb.ID, "")
		d.handleStats(ctx, chatID, msgID, user, parts)
	case "list":
		d.answer(cb.ID, "")
		d.handleList(ctx, chatID, msgID, user, parts)
	case "report":
		d.handleReportOpen(ctx, cb, user, parts)
	case "status":
		d.handleSetStatus(ctx, cb, user, parts)
	case "comment":
		d.handleCommentStart(ctx, cb, user, parts)
	case "schools":
		d.handleSchools(ctx, cb, user, parts)
	case "users":
		d.handleUsers(ctx, cb, user, parts)
	default:
		d.answer(cb.ID, "Неизвестное действие")
	}
}

func isNotFound(err error) bool {
	return err == db.ErrUserNotFound
}

func (d *Dispatcher) send(msg tgbotapi.Chattable) {
	if _, err := tg.Send(d.Bot, msg); err != nil {
		metrics.HandlerErrors.Inc()
		d.Log.Warnw("отправка в Telegram", "err", err)
	}
}

func (d *Dispatcher) edit(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)
	edit.ParseMode = tgbotapi.ModeHTML
	d.send(edit)
}

func (d *Dispatcher) answer(callbackID, text string) {
	if _, err := tg.Request(d.Bot, tgbotapi.NewCallback(callbackID, text)); err != nil {
		d.Log.Warnw("ответ на колбэк", "err", err)
	}
}

// denied — короткий всплывающий отказ без следа в чате.
func (d *Dispatcher) denied(cb *tgbotapi.CallbackQuery) {
	d.answer(cb.ID, "Нет доступа к этому обращению")
}
