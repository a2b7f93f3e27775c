package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

func schoolPayload(sc *models.School, baseURL string) gin.H {
	return gin.H{
		"id":          sc.ID,
		"name":        sc.Name,
		"address":     sc.Address,
		"unique_code": sc.UniqueCode,
		"report_url":  fmt.Sprintf("%s/send/%s", baseURL, sc.UniqueCode),
	}
}

// handleSchoolList доступен всему персоналу, изменения только администраторам.
func (s *Server) handleSchoolList(c *gin.Context) {
	schools, err := db.ListSchools(c.Request.Context(), s.DB)
	if err != nil {
		s.Log.Errorw("список школ", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	items := make([]gin.H, 0, len(schools))
	for i := range schools {
		items = append(items, schoolPayload(&schools[i], s.Cfg.BaseURL))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"general_url": fmt.Sprintf("%s/send/%s", s.Cfg.BaseURL, models.GeneralCode),
		"can_manage":  models.CanManageSchools(currentUser(c)),
	})
}

func (s *Server) requireSchoolManager(c *gin.Context) bool {
	if !models.CanManageSchools(currentUser(c)) {
		fail(c, http.StatusForbidden, "Нет доступа")
		return false
	}
	return true
}

func schoolForm(c *gin.Context) (name, address string, fieldErrs gin.H) {
	name = strings.TrimSpace(c.PostForm("name"))
	address = strings.TrimSpace(c.PostForm("address"))
	fieldErrs = gin.H{}
	if name == "" {
		fieldErrs["name"] = "Укажите название школы"
	}
	return name, address, fieldErrs
}

func (s *Server) handleSchoolCreate(c *gin.Context) {
	if !s.requireSchoolManager(c) {
		return
	}
	name, address, fieldErrs := schoolForm(c)
	if len(fieldErrs) > 0 {
		failFields(c, fieldErrs)
		return
	}
	school, err := db.CreateSchool(c.Request.Context(), s.DB, name, address)
	if err != nil {
		if isUniqueSchoolName(err) {
			failFields(c, gin.H{"name": "Школа с таким названием уже есть"})
			return
		}
		s.Log.Errorw("создание школы", "err", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	ok(c, "Школа добавлена", gin.H{"school": schoolPayload(school, s.Cfg.BaseURL)})
}

func isUniqueSchoolName(err error) bool {
	return err != nil && strings.Contains(err.Error(), "schools_name_key")
}

func (s *Server) loadSchool(c *gin.Context) (*models.School, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "Школа не найдена")
		return nil, false
	}
	school, err := db.GetSchoolByID(c.Request.Context(), s.DB, id)
	if errors.Is(err, db.ErrSchoolNotFound) {
		fail(c, http.StatusNotFound, "Школа не найдена")
		return nil, false
	}
	if err != nil {
		s.Log.Errorw("чтение школы", "err", err, "id", id)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return nil, false
	}
	return school, true
}

func (s *Server) handleSchoolGet(c *gin.Context) {
	school, found := s.loadSchool(c)
	if !found {
		return
	}
	stats, err := db.CountReports(c.Request.Context(), s.DB, &school.ID)
	if err != nil {
		s.Log.Errorw("статистика школы", "err", err, "id", school.ID)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	payload := schoolPayload(school, s.Cfg.BaseURL)
	payload["stats"] = statsPayload(stats)
	c.JSON(http.StatusOK, payload)
}

// Код школы при правке не меняется, иначе напечатанные QR и ссылки умрут.
func (s *Server) handleSchoolUpdate(c *gin.Context) {
	if !s.requireSchoolManager(c) {
		return
	}
	school, found := s.loadSchool(c)
	if !found {
		return
	}
	name, address, fieldErrs := schoolForm(c)
	if len(fieldErrs) > 0 {
		failFields(c, fieldErrs)
		return
	}
	if err := db.UpdateSchool(c.Request.Context(), s.DB, school.ID, name, address); err != nil {
		if isUniqueSchoolName(err) {
			failFields(c, gin.H{"name": "Школа с таким названием уже есть"})
			return
		}
		s.Log.Errorw("правка школы", "err", err, "id", school.ID)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	ok(c, "Изменения сохранены", nil)
}

func (s *Server) handleSchoolDelete(c *gin.Context) {
	if !s.requireSchoolManager(c) {
		return
	}
	school, found := s.loadSchool(c)
	if !found {
		return
	}
	teachers, reports, err := db.DeleteSchool(c.Request.Context(), s.DB, school.ID)
	if err != nil {
		s.Log.Errorw("удаление школы", "err", err, "id", school.ID)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}
	ok(c, "Школа удалена", gin.H{
		"detached_teachers": teachers,
		"detached_reports":  reports,
	})
}
