package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anonmektep/portal/internal/auth"
	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

const welcomeText = `🤖 <b>Добро пожаловать в Аноним Мектеп!</b>

Бот присылает уведомления о новых обращениях и позволяет работать с ними прямо из чата.

Для начала работы необходимо авторизоваться.

Введите ваш <b>логин</b>:`

func (d *Dispatcher) startAuth(ctx context.Context, chatID int64) {
	// /start всегда начинает авторизацию заново, даже для привязанного чата
	if err := db.UnbindChatID(ctx, d.DB, chatID); err != nil {
		d.Log.Errorw("отвязка чата", "err", err, "chat_id", chatID)
		return
	}

	if err := db.SaveBotSession(ctx, d.DB, &db.BotSession{
		ChatID: chatID,
		State:  db.BotStateAwaitingUsername,
	}); err != nil {
		d.Log.Errorw("сохранение сессии", "err", err, "chat_id", chatID)
		return
	}
	msg := tgbotapi.NewMessage(chatID, welcomeText)
	msg.ParseMode = tgbotapi.ModeHTML
	d.send(msg)
}

func (d *Dispatcher) acceptUsername(ctx context.Context, chatID int64, sess *db.BotSession, username string) {
	if username == "" {
		d.send(tgbotapi.NewMessage(chatID, "Введите ваш логин:"))
		return
	}
	sess.Username = username
	sess.State = db.BotStateAwaitingPassword
	if err := db.SaveBotSession(ctx, d.DB, sess); err != nil {
		d.Log.Errorw("сохранение сессии", "err", err, "chat_id", chatID)
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Теперь введите ваш <b>пароль</b>:")
	msg.ParseMode = tgbotapi.ModeHTML
	d.send(msg)
}

func (d *Dispatcher) acceptPassword(ctx context.Context, chatID int64, sess *db.BotSession, password string) {
	user, err := auth.Authenticate(ctx, d.DB, sess.Username, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInactiveAccount):
		// Отказ одинаковый: не раскрываем, существует ли логин
		sess.State = db.BotStateAwaitingUsername
		sess.Username = ""
		if err := db.SaveBotSession(ctx, d.DB, sess); err != nil {
			d.Log.Errorw("сохранение сессии", "err", err, "chat_id", chatID)
			return
		}
		d.send(tgbotapi.NewMessage(chatID, "❌ Неверный логин или пароль. Попробуйте еще раз."))
		d.send(tgbotapi.NewMessage(chatID, "Введите ваш логин:"))
		return
	case err != nil:
		d.Log.Errorw("авторизация в боте", "err", err, "chat_id", chatID)
		d.send(tgbotapi.NewMessage(chatID, "Внутренняя ошибка. Попробуйте позже."))
		return
	}

	// Привязка чата: прежний владелец чата отвязывается
	if err := db.BindChatID(ctx, d.DB, user.ID, chatID); err != nil {
		d.Log.Errorw("привязка чата", "err", err, "user_id", user.ID, "chat_id", chatID)
		d.send(tgbotapi.NewMessage(chatID, "Внутренняя ошибка. Попробуйте позже."))
		return
	}
	if err := db.DeleteBotSession(ctx, d.DB, chatID); err != nil {
		d.Log.Warnw("удаление сессии", "err", err, "chat_id", chatID)
	}
	d.Log.Infow("вход через бота", "user_id", user.ID, "chat_id", chatID)
	d.sendMainMenu(chatID, user)
}

func (d *Dispatcher) logout(ctx context.Context, chatID int64) {
	if err := db.UnbindChatID(ctx, d.DB, chatID); err != nil {
		d.Log.Errorw("отвязка чата", "err", err, "chat_id", chatID)
		return
	}
	if err := db.DeleteBotSession(ctx, d.DB, chatID); err != nil {
		d.Log.Warnw("удаление сессии", "err", err, "chat_id", chatID)
	}
	d.send(tgbotapi.NewMessage(chatID, "Вы вышли. Уведомления больше приходить не будут. /start для входа."))
}

func mainMenuText(user *models.User) string {
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	text := fmt.Sprintf("👋 <b>Добро пожаловать, %s!</b>\n\n📋 <b>Ваша роль:</b> %s\n", name, user.Role.Label())
	if user.Role == models.Teacher {
		school := user.SchoolName
		if school == "" {
			school = "Не назначена"
		}
		text += fmt.Sprintf("🏫 <b>Школа:</b> %s\n", school)
	}
	return text + "\nВыберите действие:"
}

func (d *Dispatcher) sendMainMenu(chatID int64, user *models.User) {
	msg := tgbotapi.NewMessage(chatID, mainMenuText(user))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard(user)
	d.send(msg)
}

func (d *Dispatcher) editMainMenu(chatID int64, msgID int, user *models.User) {
	d.edit(chatID, msgID, mainMenuText(user), mainMenuKeyboard(user))
}
