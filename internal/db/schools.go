package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/anonmektep/portal/internal/models"
)

var ErrSchoolNotFound = errors.New("school not found")

// newUniqueCode — 12 шестнадцатеричных символов из случайного UUID.
// Код не зависит от входных данных и не может совпасть с зарезервированным
// словом general.
func newUniqueCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// CreateSchool генерирует код на сервере; коллизия по unique-индексу
// статистически невероятна, но на всякий случай пробуем ещё раз.
func CreateSchool(ctx context.Context, database *sql.DB, name, address string) (*models.School, error) {
	for attempt := 0; attempt < 3; attempt++ {
		code := newUniqueCode()
		var id int64
		err := database.QueryRowContext(ctx, `
			INSERT INTO schools (name, address, unique_code)
			VALUES ($1, $2, $3)
			RETURNING id
		`, name, address, code).Scan(&id)
		if err != nil {
			if isUniqueViolation(err, "schools_unique_code_key") {
				continue
			}
			return nil, err
		}
		return &models.School{ID: id, Name: name, Address: address, UniqueCode: code}, nil
	}
	return nil, fmt.Errorf("unique code generation failed")
}

func isUniqueViolation(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), constraint)
}

func GetSchoolByID(ctx context.Context, database *sql.DB, id int64) (*models.School, error) {
	var s models.School
	err := database.QueryRowContext(ctx, `
		SELECT id, name, address, unique_code FROM schools WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Address, &s.UniqueCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSchoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func GetSchoolByCode(ctx context.Context, database *sql.DB, code string) (*models.School, error) {
	var s models.School
	err := database.QueryRowContext(ctx, `
		SELECT id, name, address, unique_code FROM schools WHERE unique_code = $1
	`, code).Scan(&s.ID, &s.Name, &s.Address, &s.UniqueCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSchoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func ListSchools(ctx context.Context, database *sql.DB) ([]models.School, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT id, name, address, unique_code FROM schools ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.School
	for rows.Next() {
		var s models.School
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.UniqueCode); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func UpdateSchool(ctx context.Context, database *sql.DB, id int64, name, address string) error {
	res, err := database.ExecContext(ctx, `
		UPDATE schools SET name = $1, address = $2 WHERE id = $3
	`, name, address, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSchoolNotFound
	}
	return nil
}

// DeleteSchool отвязывает учителей и обращения (ON DELETE SET NULL)
// и возвращает, сколько записей было привязано.
func DeleteSchool(ctx context.Context, database *sql.DB, id int64) (teachers, reports int64, err error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE school_id = $1`, id).Scan(&teachers); err != nil {
		return 0, 0, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM reports WHERE school_id = $1`, id).Scan(&reports); err != nil {
		return 0, 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return 0, 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, 0, ErrSchoolNotFound
	}
	return teachers, reports, tx.Commit()
}
