package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/auth"
)

// handleLogin — POST /staff/login. Одинаковый ответ при неизвестном логине
// и неверном пароле.
func (s *Server) handleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		failFields(c, gin.H{"__all__": "Укажите логин и пароль"})
		return
	}

	user, err := auth.Authenticate(c.Request.Context(), s.DB, username, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		failFields(c, gin.H{"__all__": "Неверный логин или пароль"})
		return
	case errors.Is(err, auth.ErrInactiveAccount):
		failFields(c, gin.H{"__all__": "Учетная запись отключена"})
		return
	case err != nil:
		s.Log.Errorw("авторизация", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}

	token, err := signStaffToken(s.secret, user.ID, time.Now())
	if err != nil {
		s.Log.Errorw("подпись staff-токена", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	c.SetCookie(staffCookieName, token, int(staffTokenTTL.Seconds()), "/", "", false, true)
	ok(c, "Добро пожаловать, "+user.FullName, gin.H{
		"role":       string(user.Role),
		"role_label": user.Role.Label(),
		"redirect":   "/staff/dashboard",
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(staffCookieName, "", -1, "/", "", false, true)
	ok(c, "Вы вышли из кабинета", gin.H{"redirect": "/"})
}
