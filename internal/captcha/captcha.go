package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier проверяет токен reCAPTCHA v3. Любая ошибка внешнего сервиса
// трактуется как непройденная проверка (fail closed).
type Verifier struct {
	Secret    string
	Threshold float64
	VerifyURL string // для тестов; пустой — боевой адрес
	Client    *http.Client
	Log       *zap.SugaredLogger
}

func New(secret string, threshold float64, log *zap.SugaredLogger) *Verifier {
	return &Verifier{
		Secret:    secret,
		Threshold: threshold,
		Client:    &http.Client{Timeout: 10 * time.Second},
		Log:       log,
	}
}

type verifyResponse struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
}

// Verify возвращает true, если проверка пройдена. Без секрета (dev-режим)
// проверка пропускается, как и в остальных окружениях без ключей.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if v.Secret == "" {
		return true
	}

	form := url.Values{}
	form.Set("secret", v.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	endpoint := v.VerifyURL
	if endpoint == "" {
		endpoint = defaultVerifyURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		if v.Log != nil {
			v.Log.Warnw("recaptcha request failed", "err", err)
		}
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if v.Log != nil {
			v.Log.Warnw("recaptcha bad response", "err", err)
		}
		return false
	}
	return result.Success && result.Score >= v.Threshold
}
