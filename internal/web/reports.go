package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/export"
	"github.com/anonmektep/portal/internal/models"
)

// reportFilterFromQuery — общий разбор фильтров списка и выгрузки.
// Учителю область видимости навязывается независимо от параметров.
func reportFilterFromQuery(c *gin.Context, user *models.User) db.ReportFilter {
	f := db.ReportFilter{
		SchoolName: strings.TrimSpace(c.Query("school")),
	}
	if pt, okPT := models.ParseProblemType(c.Query("problem_type")); okPT {
		f.ProblemType = pt
	}
	if st, okSt := models.ParseStatus(c.Query("status")); okSt {
		f.Status = st
	}
	if !models.SeesAllSchools(user) {
		f.VisibleSchoolID = user.SchoolID
	} else if c.Query("general_only") == "1" {
		f.GeneralOnly = true
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		f.Page = page
	} else {
		f.Page = 1
	}
	return f
}

func (s *Server) handleReportList(c *gin.Context) {
	user := currentUser(c)
	if !models.SeesAllSchools(user) && user.SchoolID == nil {
		c.JSON(http.StatusOK, gin.H{"items": []gin.H{}, "total": 0, "page": 1, "pages": 0})
		return
	}

	f := reportFilterFromQuery(c, user)
	reports, total, err := db.ListReports(c.Request.Context(), s.DB, f)
	if err != nil {
		s.Log.Errorw("список обращений", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}

	items := make([]gin.H, 0, len(reports))
	for i := range reports {
		items = append(items, reportSummary(&reports[i]))
	}
	pages := (total + db.PageSize - 1) / db.PageSize
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  f.Page,
		"pages": pages,
	})
}

// handleReportExport — выгрузка текущей выборки в xlsx, без пагинации.
func (s *Server) handleReportExport(c *gin.Context) {
	user := currentUser(c)
	if !models.SeesAllSchools(user) && user.SchoolID == nil {
		fail(c, http.StatusForbidden, "Нет доступа")
		return
	}

	f := reportFilterFromQuery(c, user)
	f.Page = 1
	f.PerPage = 10000
	reports, _, err := db.ListReports(c.Request.Context(), s.DB, f)
	if err != nil {
		s.Log.Errorw("выгрузка обращений", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}

	buf, err := export.ReportsWorkbook(reports)
	if err != nil {
		s.Log.Errorw("сборка xlsx", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// loadVisibleReport — обращение по id из URL с проверкой доступа.
func (s *Server) loadVisibleReport(c *gin.Context, user *models.User) (*models.Report, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "Обращение не найдено")
		return nil, false
	}
	report, err := db.GetReportByID(c.Request.Context(), s.DB, id)
	if errors.Is(err, db.ErrReportNotFound) {
		fail(c, http.StatusNotFound, "Обращение не найдено")
		return nil, false
	}
	if err != nil {
		s.Log.Errorw("чтение обращения", "err", err, "id", id)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return nil, false
	}
	if !models.CanViewReport(user, report) {
		fail(c, http.StatusForbidden, "Нет доступа")
		return nil, false
	}
	return report, true
}

func (s *Server) handleReportDetail(c *gin.Context) {
	user := currentUser(c)
	report, found := s.loadVisibleReport(c, user)
	if !found {
		return
	}

	comments, err := db.ListComments(c.Request.Context(), s.DB, report.ID)
	if err != nil {
		s.Log.Errorw("комментарии обращения", "err", err, "id", report.ID)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	commentItems := make([]gin.H, 0, len(comments))
	for _, cm := range comments {
		commentItems = append(commentItems, gin.H{
			"author":     cm.AuthorName,
			"text":       cm.Text,
			"created_at": cm.CreatedAt,
		})
	}

	payload := reportSummary(report)
	payload["problem"] = report.Problem
	payload["help"] = report.Help
	payload["contact"] = report.Contact
	payload["comments"] = commentItems
	c.JSON(http.StatusOK, payload)
}

// handleReportUpdate — смена статуса и/или внутренний комментарий.
func (s *Server) handleReportUpdate(c *gin.Context) {
	user := currentUser(c)
	report, found := s.loadVisibleReport(c, user)
	if !found {
		return
	}
	if !models.CanMutateReport(user, report) {
		fail(c, http.StatusForbidden, "Нет доступа")
		return
	}

	ctx := c.Request.Context()
	changed := false

	if raw := c.PostForm("status"); raw != "" {
		status, okSt := models.ParseStatus(raw)
		if !okSt {
			failFields(c, gin.H{"status": "Недопустимый статус"})
			return
		}
		if err := db.SetReportStatus(ctx, s.DB, report.ID, status); err != nil {
			s.Log.Errorw("смена статуса", "err", err, "id", report.ID)
			fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
			return
		}
		changed = true
	}

	if text := strings.TrimSpace(c.PostForm("comment")); text != "" {
		comment := &models.InternalComment{
			ReportID: report.ID,
			AuthorID: &user.ID,
			Text:     text,
		}
		if err := db.AddComment(ctx, s.DB, comment); err != nil {
			s.Log.Errorw("добавление комментария", "err", err, "id", report.ID)
			fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
			return
		}
		changed = true
	}

	if !changed {
		failFields(c, gin.H{"__all__": "Нечего сохранять"})
		return
	}
	ok(c, "Сохранено", nil)
}
