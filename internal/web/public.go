package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/metrics"
	"github.com/anonmektep/portal/internal/models"
)

// handleIndex — публичная статистика платформы.
func (s *Server) handleIndex(c *gin.Context) {
	stats, err := db.CountReports(c.Request.Context(), s.DB, nil)
	if err != nil {
		s.Log.Errorw("статистика главной", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_messages":       stats.Total,
		"new_messages":         stats.ByStatus[models.StatusNew],
		"in_progress_messages": stats.ByStatus[models.StatusInProgress],
		"resolved_messages":    stats.ByStatus[models.StatusResolved],
		"by_problem_type":      problemCounts(stats),
	})
}

func problemCounts(stats *db.ReportStats) gin.H {
	out := gin.H{}
	for _, p := range models.AllProblemTypes() {
		out[string(p)] = stats.ByProblem[p]
	}
	return out
}

// resolveSchool — школа по коду из URL; для зарезервированного general
// возвращает nil (обращение в районный отдел).
func (s *Server) resolveSchool(ctx context.Context, code string) (*models.School, bool, error) {
	if code == models.GeneralCode {
		return nil, true, nil
	}
	school, err := db.GetSchoolByCode(ctx, s.DB, code)
	if errors.Is(err, db.ErrSchoolNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return school, true, nil
}

func problemTypeChoices() []gin.H {
	out := make([]gin.H, 0, len(models.AllProblemTypes()))
	for _, p := range models.AllProblemTypes() {
		out = append(out, gin.H{"value": string(p), "label": p.Label()})
	}
	return out
}

// handleSendForm — GET /send/{code}?step=1|2: описание текущего шага анкеты.
func (s *Server) handleSendForm(c *gin.Context) {
	code := c.Param("code")
	school, found, err := s.resolveSchool(c.Request.Context(), code)
	if err != nil {
		s.Log.Errorw("поиск школы по коду", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "Школа не найдена")
		return
	}

	schoolName := "Районный отдел образования"
	if school != nil {
		schoolName = school.Name
	}

	step := c.DefaultQuery("step", "1")
	if step == "2" {
		token, _ := c.Cookie(intakeCookieName)
		problemType, err := parseIntakeToken(s.secret, token, code)
		if err != nil {
			// шаг 1 пропущен или сессия истекла
			c.Redirect(http.StatusFound, "/send/"+code+"?step=1")
			return
		}
		pt := models.ProblemType(problemType)
		c.JSON(http.StatusOK, gin.H{
			"step":                 2,
			"school":               schoolName,
			"is_general":           school == nil,
			"problem_type":         problemType,
			"problem_type_display": pt.Label(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":          1,
		"school":        schoolName,
		"is_general":    school == nil,
		"problem_types": problemTypeChoices(),
	})
}

// handleSendSubmit — POST /send/{code}?step=1|2: двухшаговая анкета.
// Шаг 1 складывает тип проблемы в подписанную cookie, шаг 2 после проверки
// reCAPTCHA создаёт обращение и запускает рассылку.
func (s *Server) handleSendSubmit(c *gin.Context) {
	code := c.Param("code")
	school, found, err := s.resolveSchool(c.Request.Context(), code)
	if err != nil {
		s.Log.Errorw("поиск школы по коду", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "Школа не найдена")
		return
	}

	switch c.DefaultQuery("step", "1") {
	case "2":
		s.submitStep2(c, code, school)
	default:
		s.submitStep1(c, code)
	}
}

func (s *Server) submitStep1(c *gin.Context, code string) {
	pt, okPT := models.ParseProblemType(c.PostForm("problem_type"))
	if !okPT {
		failFields(c, gin.H{"problem_type": "Выберите тип проблемы"})
		return
	}
	token, err := signIntakeToken(s.secret, code, string(pt), time.Now())
	if err != nil {
		s.Log.Errorw("подпись intake-токена", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	c.SetCookie(intakeCookieName, token, int(intakeTokenTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/send/"+code+"?step=2")
}

func (s *Server) submitStep2(c *gin.Context, code string, school *models.School) {
	token, _ := c.Cookie(intakeCookieName)
	problemType, err := parseIntakeToken(s.secret, token, code)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/send/"+code+"?step=1")
		return
	}

	problem := strings.TrimSpace(c.PostForm("problem"))
	help := strings.TrimSpace(c.PostForm("help"))
	contact := strings.TrimSpace(c.PostForm("contact"))

	fieldErrs := gin.H{}
	if problem == "" {
		fieldErrs["problem"] = "Опишите проблему"
	}
	if help == "" {
		fieldErrs["help"] = "Укажите, какая помощь нужна"
	}
	if len(fieldErrs) > 0 {
		failFields(c, fieldErrs)
		return
	}

	if !s.Captcha.Verify(c.Request.Context(), c.PostForm("recaptcha_token"), c.ClientIP()) {
		metrics.CaptchaRejected.Inc()
		// cookie не очищаем: повторная отправка с валидным токеном должна пройти
		s.Log.Infow("отказ проверки безопасности", "code", code, "ip", c.ClientIP())
		failFields(c, gin.H{"recaptcha": "Проверка безопасности не пройдена. Попробуйте еще раз."})
		return
	}

	report := &models.Report{
		Problem:     problem,
		Help:        help,
		Contact:     contact,
		ProblemType: models.ProblemType(problemType),
	}
	if school != nil {
		report.SchoolID = &school.ID
		report.SchoolName = school.Name
	}
	if err := db.CreateReport(c.Request.Context(), s.DB, report); err != nil {
		s.Log.Errorw("создание обращения", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	metrics.ReportsCreated.WithLabelValues(string(report.ProblemType)).Inc()

	c.SetCookie(intakeCookieName, "", -1, "/", "", false, true)

	// Рассылка не должна задерживать ответ и не может отменить создание.
	go func(r *models.Report) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Notifier.ReportCreated(ctx, r)
	}(report)

	c.Redirect(http.StatusSeeOther, "/message-sent")
}

func (s *Server) handleMessageSent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Ваше обращение отправлено. Спасибо, что не остались в стороне.",
	})
}
