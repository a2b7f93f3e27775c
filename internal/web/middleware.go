package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

const ctxUserKey = "staff_user"

// requireStaff проверяет подписанную cookie и поднимает пользователя из БД
// на каждый запрос: деактивация и смена роли действуют немедленно.
func (s *Server) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(staffCookieName)
		if err != nil || token == "" {
			fail(c, http.StatusUnauthorized, "Требуется вход")
			c.Abort()
			return
		}
		userID, err := parseStaffToken(s.secret, token)
		if err != nil {
			fail(c, http.StatusUnauthorized, "Сессия недействительна")
			c.Abort()
			return
		}
		u, err := db.GetUserByID(c.Request.Context(), s.DB, userID)
		if errors.Is(err, db.ErrUserNotFound) {
			fail(c, http.StatusUnauthorized, "Учётная запись не найдена")
			c.Abort()
			return
		}
		if err != nil {
			s.Log.Errorw("загрузка пользователя сессии", "err", err)
			fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
			c.Abort()
			return
		}
		if !u.Role.IsStaff() || !u.IsActive {
			fail(c, http.StatusForbidden, "Доступ закрыт")
			c.Abort()
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
