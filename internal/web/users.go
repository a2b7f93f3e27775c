package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/auth"
	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

func userPayload(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"full_name":  u.FullName,
		"role":       string(u.Role),
		"role_label": u.Role.Label(),
		"school_id":  u.SchoolID,
		"school":     u.SchoolName,
		"is_active":  u.IsActive,
		"has_chat":   u.TelegramChatID != nil,
		"created_at": u.CreatedAt,
	}
}

func (s *Server) requireUserManager(c *gin.Context) bool {
	if !models.CanManageUsers(currentUser(c)) {
		fail(c, http.StatusForbidden, "Нет доступа")
		return false
	}
	return true
}

func (s *Server) handleUserList(c *gin.Context) {
	if !s.requireUserManager(c) {
		return
	}
	users, err := db.ListUsers(c.Request.Context(), s.DB)
	if err != nil {
		s.Log.Errorw("список сотрудников", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userPayload(&users[i]))
	}
	roles := make([]gin.H, 0, 3)
	for _, r := range models.AssignableRoles(currentUser(c)) {
		roles = append(roles, gin.H{"value": string(r), "label": r.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "assignable_roles": roles})
}

// userForm — общая валидация формы сотрудника. Учитель обязан быть
// привязан к школе, иначе он не увидит ни одного обращения.
func (s *Server) userForm(c *gin.Context, actor *models.User) (*models.User, gin.H) {
	fieldErrs := gin.H{}

	username := strings.TrimSpace(c.PostForm("username"))
	if username == "" {
		fieldErrs["username"] = "Укажите логин"
	}
	fullName := strings.TrimSpace(c.PostForm("full_name"))

	role, okRole := models.ParseRole(c.PostForm("role"))
	switch {
	case !okRole:
		fieldErrs["role"] = "Недопустимая роль"
	case !models.CanAssignRole(actor, role):
		fieldErrs["role"] = "Вы не можете назначать эту роль"
	}

	var schoolID *int64
	if raw := strings.TrimSpace(c.PostForm("school_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldErrs["school_id"] = "Недопустимая школа"
		} else if _, err := db.GetSchoolByID(c.Request.Context(), s.DB, id); errors.Is(err, db.ErrSchoolNotFound) {
			fieldErrs["school_id"] = "Школа не найдена"
		} else if err != nil {
			s.Log.Errorw("проверка школы", "err", err, "id", id)
			fieldErrs["school_id"] = "Внутренняя ошибка"
		} else {
			schoolID = &id
		}
	}
	if okRole && role == models.Teacher && schoolID == nil {
		fieldErrs["school_id"] = "Учителю нужна школа"
	}

	return &models.User{
		Username: username,
		FullName: fullName,
		Role:     role,
		SchoolID: schoolID,
		IsActive: c.DefaultPostForm("is_active", "1") != "0",
	}, fieldErrs
}

func (s *Server) handleUserCreate(c *gin.Context) {
	if !s.requireUserManager(c) {
		return
	}
	actor := currentUser(c)

	user, fieldErrs := s.userForm(c, actor)
	password := c.PostForm("password")
	if password == "" {
		fieldErrs["password"] = "Укажите пароль"
	}
	if len(fieldErrs) > 0 {
		failFields(c, fieldErrs)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.Log.Errorw("хэширование пароля", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	user.PasswordHash = hash

	if err := db.CreateUser(c.Request.Context(), s.DB, user); err != nil {
		if isUniqueUsername(err) {
			failFields(c, gin.H{"username": "Логин уже занят"})
			return
		}
		s.Log.Errorw("создание сотрудника", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	ok(c, "Сотрудник добавлен", gin.H{"user": userPayload(user)})
}

func isUniqueUsername(err error) bool {
	return err != nil && strings.Contains(err.Error(), "users_username_key")
}

// loadManagedUser — сотрудник из URL с проверкой, что текущая роль
// вправе им распоряжаться.
func (s *Server) loadManagedUser(c *gin.Context, actor *models.User) (*models.User, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "Сотрудник не найден")
		return nil, false
	}
	user, err := db.GetUserByID(c.Request.Context(), s.DB, id)
	if errors.Is(err, db.ErrUserNotFound) {
		fail(c, http.StatusNotFound, "Сотрудник не найден")
		return nil, false
	}
	if err != nil {
		s.Log.Errorw("чтение сотрудника", "err", err, "id", id)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return nil, false
	}
	if !models.CanAssignRole(actor, user.Role) {
		fail(c, http.StatusForbidden, "Нет доступа")
		return nil, false
	}
	return user, true
}

func (s *Server) handleUserGet(c *gin.Context) {
	if !s.requireUserManager(c) {
		return
	}
	user, found := s.loadManagedUser(c, currentUser(c))
	if !found {
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}

func (s *Server) handleUserUpdate(c *gin.Context) {
	if !s.requireUserManager(c) {
		return
	}
	actor := currentUser(c)
	user, found := s.loadManagedUser(c, actor)
	if !found {
		return
	}

	form, fieldErrs := s.userForm(c, actor)
	if len(fieldErrs) > 0 {
		failFields(c, fieldErrs)
		return
	}

	user.Username = form.Username
	user.FullName = form.FullName
	user.Role = form.Role
	user.SchoolID = form.SchoolID
	user.IsActive = form.IsActive
	if err := db.UpdateUser(c.Request.Context(), s.DB, user); err != nil {
		if isUniqueUsername(err) {
			failFields(c, gin.H{"username": "Логин уже занят"})
			return
		}
		s.Log.Errorw("правка сотрудника", "err", err, "id", user.ID)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}

	if password := c.PostForm("password"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			s.Log.Errorw("хэширование пароля", "err", err)
			fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
			return
		}
		if err := db.SetUserPassword(c.Request.Context(), s.DB, user.ID, hash); err != nil {
			s.Log.Errorw("смена пароля", "err", err, "id", user.ID)
			fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
			return
		}
	}
	ok(c, "Изменения сохранены", nil)
}

func (s *Server) handleUserDelete(c *gin.Context) {
	if !s.requireUserManager(c) {
		return
	}
	actor := currentUser(c)
	user, found := s.loadManagedUser(c, actor)
	if !found {
		return
	}
	if user.ID == actor.ID {
		fail(c, http.StatusForbidden, "Нельзя удалить собственную учетную запись")
		return
	}
	if err := db.DeleteUser(c.Request.Context(), s.DB, user.ID); err != nil {
		s.Log.Errorw("удаление сотрудника", "err", err, "id", user.ID)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	ok(c, "Сотрудник удален", nil)
}
