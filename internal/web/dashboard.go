package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

// handleDashboard — сводка по доступным пользователю обращениям.
func (s *Server) handleDashboard(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	var scope *int64
	if !models.SeesAllSchools(user) {
		if user.SchoolID == nil {
			// учитель без школы ничего не видит
			c.JSON(http.StatusOK, gin.H{
				"role":       string(user.Role),
				"role_label": user.Role.Label(),
				"stats":      gin.H{"total": 0, "by_status": gin.H{}, "by_problem_type": gin.H{}},
				"recent":     []gin.H{},
			})
			return
		}
		scope = user.SchoolID
	}

	stats, err := db.CountReports(ctx, s.DB, scope)
	if err != nil {
		s.Log.Errorw("сводка обращений", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}

	payload := gin.H{
		"role":       string(user.Role),
		"role_label": user.Role.Label(),
		"stats":      statsPayload(stats),
	}

	if models.SeesAllSchools(user) {
		general, err := db.CountGeneralReports(ctx, s.DB)
		if err != nil {
			s.Log.Errorw("сводка районных обращений", "err", err)
			fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
			return
		}
		payload["general"] = statsPayload(general)
	}

	recent, _, err := db.ListReports(ctx, s.DB, db.ReportFilter{
		VisibleSchoolID: scope,
		Page:            1,
		PerPage:         5,
	})
	if err != nil {
		s.Log.Errorw("последние обращения", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	items := make([]gin.H, 0, len(recent))
	for i := range recent {
		items = append(items, reportSummary(&recent[i]))
	}
	payload["recent"] = items

	c.JSON(http.StatusOK, payload)
}

func statsPayload(stats *db.ReportStats) gin.H {
	byStatus := gin.H{}
	for _, st := range models.AllStatuses() {
		byStatus[string(st)] = stats.ByStatus[st]
	}
	return gin.H{
		"total":           stats.Total,
		"by_status":       byStatus,
		"by_problem_type": problemCounts(stats),
	}
}

func reportSummary(r *models.Report) gin.H {
	return gin.H{
		"id":                   r.ID,
		"school":               r.SchoolLabel(),
		"problem_type":         string(r.ProblemType),
		"problem_type_display": r.ProblemType.Label(),
		"status":               string(r.Status),
		"status_display":       r.Status.Label(),
		"created_at":           r.CreatedAt,
	}
}
