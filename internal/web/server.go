package web

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anonmektep/portal/internal/captcha"
	"github.com/anonmektep/portal/internal/config"
	"github.com/anonmektep/portal/internal/metrics"
	"github.com/anonmektep/portal/internal/notify"
)

// Server — публичная анкета и JSON-API кабинета персонала.
type Server struct {
	DB       *sql.DB
	Cfg      *config.Config
	Log      *zap.SugaredLogger
	Captcha  *captcha.Verifier
	Notifier *notify.Notifier

	secret []byte
}

func New(database *sql.DB, cfg *config.Config, log *zap.SugaredLogger, verifier *captcha.Verifier, notifier *notify.Notifier) *Server {
	return &Server{
		DB:       database,
		Cfg:      cfg,
		Log:      log,
		Captcha:  verifier,
		Notifier: notifier,
		secret:   []byte(cfg.SessionSecret),
	}
}

func (s *Server) Router() *gin.Engine {
	if strings.ToLower(s.Cfg.Env) == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Публичная часть
	r.GET("/", s.handleIndex)
	r.GET("/send/:code", s.handleSendForm)
	r.POST("/send/:code", s.handleSendSubmit)
	r.GET("/message-sent", s.handleMessageSent)

	// Кабинет персонала
	r.POST("/staff/login", s.handleLogin)
	staff := r.Group("/staff", s.requireStaff())
	{
		staff.POST("/logout", s.handleLogout)
		staff.GET("/dashboard", s.handleDashboard)
		staff.GET("/reports", s.handleReportList)
		staff.GET("/reports/export", s.handleReportExport)
		staff.GET("/reports/:id", s.handleReportDetail)
		staff.POST("/reports/:id", s.handleReportUpdate)

		staff.GET("/schools", s.handleSchoolList)
		staff.POST("/schools", s.handleSchoolCreate)
		staff.GET("/schools/:id", s.handleSchoolGet)
		staff.POST("/schools/:id", s.handleSchoolUpdate)
		staff.POST("/schools/:id/delete", s.handleSchoolDelete)

		staff.GET("/users", s.handleUserList)
		staff.POST("/users", s.handleUserCreate)
		staff.GET("/users/:id", s.handleUserGet)
		staff.POST("/users/:id", s.handleUserUpdate)
		staff.POST("/users/:id/delete", s.handleUserDelete)
	}

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.DB.PingContext(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "db not ok: %v", err)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	c.String(http.StatusOK, "ok")
}

// Единый формат ответов кабинета: {success, message|errors, ...}.
func ok(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func failFields(c *gin.Context, errors gin.H) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": errors})
}
