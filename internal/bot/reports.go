package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
	"github.com/anonmektep/portal/internal/notify"
)

var listTitles = map[string]string{
	"new":         "📝 Новые обращения",
	"in_progress": "⏳ Обращения в работе",
	"resolved":    "✅ Решенные обращения",
	"general":     "🏢 Обращения в районный отдел",
}

// handleList — экран списка: list:{new|in_progress|resolved|general}:{page}.
func (d *Dispatcher) handleList(ctx context.Context, chatID int64, msgID int, user *models.User, parts []string) {
	if len(parts) < 2 {
		return
	}
	kind := parts[1]
	page := pageArg(parts, 2)

	title, known := listTitles[kind]
	if !known {
		return
	}

	f := db.ReportFilter{Page: page, PerPage: botPageSize}
	switch {
	case kind == "general":
		if !models.SeesAllSchools(user) {
			d.edit(chatID, msgID, "🚫 Нет доступа", tgbotapi.NewInlineKeyboardMarkup(backToMenuRow()))
			return
		}
		f.GeneralOnly = true
	default:
		status, _ := models.ParseStatus(kind)
		f.Status = status
		if !models.SeesAllSchools(user) {
			if user.SchoolID == nil {
				d.edit(chatID, msgID, "❌ Школа не назначена", tgbotapi.NewInlineKeyboardMarkup(backToMenuRow()))
				return
			}
			f.VisibleSchoolID = user.SchoolID
		}
	}

	reports, total, err := db.ListReports(ctx, d.DB, f)
	if err != nil {
		d.Log.Errorw("список обращений в боте", "err", err, "chat_id", chatID)
		return
	}

	if total == 0 {
		d.edit(chatID, msgID, title+"\n\nПока пусто.", tgbotapi.NewInlineKeyboardMarkup(backToMenuRow()))
		return
	}

	pages := totalPages(total, botPageSize)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d)\n", title, total)
	if pages > 1 {
		fmt.Fprintf(&sb, "Страница %d из %d\n", page, pages)
	}
	sb.WriteString("\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range reports {
		r := &reports[i]
		fmt.Fprintf(&sb, "• <b>#%d</b> — %s\n  %s\n  <i>%s</i>\n\n",
			r.ID, r.SchoolLabel(), notify.Truncate(r.Problem, 50), r.CreatedAt.Format("02.01.2006 15:04"))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn(fmt.Sprintf("📋 #%d", r.ID), fmt.Sprintf("report:%d", r.ID)),
		))
	}
	if pr := pagerRow("list:"+kind, page, pages); len(pr) > 0 {
		rows = append(rows, pr)
	}
	rows = append(rows, backToMenuRow())

	d.edit(chatID, msgID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// loadAccessible — обращение по id из callback data с проверкой доступа.
// nil без ошибки означает, что отказ уже отправлен.
func (d *Dispatcher) loadAccessible(ctx context.Context, cb *tgbotapi.CallbackQuery, user *models.User, id int64) *models.Report {
	if id == 0 {
		d.answer(cb.ID, "Обращение не найдено")
		return nil
	}
	report, err := db.GetReportByID(ctx, d.DB, id)
	if errors.Is(err, db.ErrReportNotFound) {
		d.answer(cb.ID, "Обращение не найдено")
		return nil
	}
	if err != nil {
		d.Log.Errorw("чтение обращения в боте", "err", err, "id", id)
		d.answer(cb.ID, "Внутренняя ошибка")
		return nil
	}
	if !models.CanViewReport(user, report) {
		d.denied(cb)
		return nil
	}
	return report
}

func reportCardText(r *models.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Обращение #%d</b>\n\n", r.ID)
	fmt.Fprintf(&sb, "🏫 <b>Школа:</b> %s\n", r.SchoolLabel())
	fmt.Fprintf(&sb, "📝 <b>Тип:</b> %s\n", r.ProblemType.Label())
	fmt.Fprintf(&sb, "📊 <b>Статус:</b> %s\n", r.Status.Label())
	fmt.Fprintf(&sb, "📅 <b>Дата:</b> %s\n\n", r.CreatedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&sb, "📄 <b>Описание:</b>\n%s\n", r.Problem)
	if r.Help != "" {
		fmt.Fprintf(&sb, "\n🆘 <b>Какая помощь нужна:</b>\n%s\n", r.Help)
	}
	if r.Contact != "" {
		fmt.Fprintf(&sb, "\n📞 <b>Контакт:</b> %s\n", r.Contact)
	}
	return sb.String()
}

func reportCardKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("⏳ В работу", fmt.Sprintf("status:%d:in_progress", id)),
			btn("✅ Решено", fmt.Sprintf("status:%d:resolved", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			btn("🚫 Спам", fmt.Sprintf("status:%d:spam", id)),
			btn("💬 Комментарий", fmt.Sprintf("comment:%d", id)),
		),
		backToMenuRow(),
	)
}

func (d *Dispatcher) handleReportOpen(ctx context.Context, cb *tgbotapi.CallbackQuery, user *models.User, parts []string) {
	report := d.loadAccessible(ctx, cb, user, idArg(parts, 1))
	if report == nil {
		return
	}
	d.answer(cb.ID, "")
	d.edit(cb.Message.Chat.ID, cb.Message.MessageID, reportCardText(report), reportCardKeyboard(report.ID))
}

// handleSetStatus — status:{id}:{status}, в том числе с кнопок уведомления.
func (d *Dispatcher) handleSetStatus(ctx context.Context, cb *tgbotapi.CallbackQuery, user *models.User, parts []string) {
	report := d.loadAccessible(ctx, cb, user, idArg(parts, 1))
	if report == nil {
		return
	}
	if len(parts) < 3 {
		d.answer(cb.ID, "Недопустимый статус")
		return
	}
	status, okSt := models.ParseStatus(parts[2])
	if !okSt {
		d.answer(cb.ID, "Недопустимый статус")
		return
	}
	if err := db.SetReportStatus(ctx, d.DB, report.ID, status); err != nil {
		d.Log.Errorw("смена статуса в боте", "err", err, "id", report.ID)
		d.answer(cb.ID, "Внутренняя ошибка")
		return
	}
	d.Log.Infow("статус изменен через бота", "id", report.ID, "status", status, "user_id", user.ID)
	d.answer(cb.ID, "Статус изменен: "+status.Label())

	report.Status = status
	d.edit(cb.Message.Chat.ID, cb.Message.MessageID, reportCardText(report), reportCardKeyboard(report.ID))
}

func (d *Dispatcher) handleCommentStart(ctx context.Context, cb *tgbotapi.CallbackQuery, user *models.User, parts []string) {
	report := d.loadAccessible(ctx, cb, user, idArg(parts, 1))
	if report == nil {
		return
	}
	if err := db.SaveBotSession(ctx, d.DB, &db.BotSession{
		ChatID:   cb.Message.Chat.ID,
		State:    db.BotStateAwaitingComment,
		ReportID: report.ID,
	}); err != nil {
		d.Log.Errorw("сохранение сессии", "err", err, "chat_id", cb.Message.Chat.ID)
		d.answer(cb.ID, "Внутренняя ошибка")
		return
	}
	d.answer(cb.ID, "Введите комментарий")
	msg := tgbotapi.NewMessage(cb.Message.Chat.ID,
		fmt.Sprintf("💬 <b>Комментарий к обращению #%d</b>\n\nВведите текст комментария:", report.ID))
	msg.ParseMode = tgbotapi.ModeHTML
	d.send(msg)
}

func (d *Dispatcher) saveComment(ctx context.Context, chatID int64, user *models.User, sess *db.BotSession, text string) {
	if text == "" {
		d.send(tgbotapi.NewMessage(chatID, "Комментарий не может быть пустым. Введите текст:"))
		return
	}
	report, err := db.GetReportByID(ctx, d.DB, sess.ReportID)
	if errors.Is(err, db.ErrReportNotFound) {
		_ = db.DeleteBotSession(ctx, d.DB, chatID)
		d.send(tgbotapi.NewMessage(chatID, "❌ Обращение уже удалено."))
		return
	}
	if err != nil {
		d.Log.Errorw("чтение обращения в боте", "err", err, "id", sess.ReportID)
		return
	}
	// Доступ мог измениться, пока сотрудник набирал текст
	if !models.CanMutateReport(user, report) {
		_ = db.DeleteBotSession(ctx, d.DB, chatID)
		d.send(tgbotapi.NewMessage(chatID, "🚫 Нет доступа к этому обращению."))
		return
	}
	if err := db.AddComment(ctx, d.DB, &models.InternalComment{
		ReportID: report.ID,
		AuthorID: &user.ID,
		Text:     text,
	}); err != nil {
		d.Log.Errorw("комментарий из бота", "err", err, "id", report.ID)
		d.send(tgbotapi.NewMessage(chatID, "❌ Не удалось сохранить комментарий."))
		return
	}
	if err := db.DeleteBotSession(ctx, d.DB, chatID); err != nil {
		d.Log.Warnw("удаление сессии", "err", err, "chat_id", chatID)
	}
	msg := tgbotapi.NewMessage(chatID, "✅ <b>Комментарий добавлен.</b>")
	msg.ParseMode = tgbotapi.ModeHTML
	d.send(msg)
}
