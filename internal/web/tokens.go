package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Подписанные cookie: сессия сотрудника и «черновик» публичной анкеты
// (выбранный на первом шаге тип проблемы). Серверного хранилища сессий нет.
const (
	staffCookieName  = "staff_token"
	intakeCookieName = "report_intake"

	staffTokenTTL  = 24 * time.Hour
	intakeTokenTTL = 30 * time.Minute
)

type staffClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

type intakeClaims struct {
	SchoolCode  string `json:"code"`
	ProblemType string `json:"pt"`
	jwt.RegisteredClaims
}

func signStaffToken(secret []byte, userID int64, now time.Time) (string, error) {
	claims := staffClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(staffTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseStaffToken(secret []byte, token string) (int64, error) {
	var claims staffClaims
	if err := parseToken(secret, token, &claims); err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, errors.New("empty subject")
	}
	return claims.UserID, nil
}

func signIntakeToken(secret []byte, code, problemType string, now time.Time) (string, error) {
	claims := intakeClaims{
		SchoolCode:  code,
		ProblemType: problemType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(intakeTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseIntakeToken возвращает сохранённый тип проблемы, только если токен
// выписан для того же кода школы.
func parseIntakeToken(secret []byte, token, code string) (string, error) {
	var claims intakeClaims
	if err := parseToken(secret, token, &claims); err != nil {
		return "", err
	}
	if claims.SchoolCode != code {
		return "", errors.New("token issued for another school")
	}
	return claims.ProblemType, nil
}

func parseToken(secret []byte, token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}
