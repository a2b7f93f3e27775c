package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func stubVerifier(t *testing.T, handler http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Verifier{
		Secret:    "secret",
		Threshold: 0.5,
		VerifyURL: srv.URL,
		Client:    srv.Client(),
	}
}

func TestVerify(t *testing.T) {
	t.Run("passes_above_threshold", func(t *testing.T) {
		v := stubVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			if r.PostForm.Get("secret") != "secret" || r.PostForm.Get("response") != "tok" {
				t.Errorf("неожиданная форма: %v", r.PostForm)
			}
			_, _ = w.Write([]byte(`{"success": true, "score": 0.9}`))
		})
		if !v.Verify(context.Background(), "tok", "1.2.3.4") {
			t.Fatal("ожидали успешную проверку")
		}
	})

	t.Run("rejects_low_score", func(t *testing.T) {
		v := stubVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": true, "score": 0.1}`))
		})
		if v.Verify(context.Background(), "tok", "") {
			t.Fatal("score ниже порога должен отклоняться")
		}
	})

	t.Run("rejects_unsuccessful", func(t *testing.T) {
		v := stubVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "score": 0.9}`))
		})
		if v.Verify(context.Background(), "tok", "") {
			t.Fatal("success=false должен отклоняться")
		}
	})

	t.Run("fail_closed_on_error", func(t *testing.T) {
		v := stubVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		if v.Verify(context.Background(), "tok", "") {
			t.Fatal("ошибка сервиса должна трактоваться как отказ")
		}
	})

	t.Run("fail_closed_on_timeout", func(t *testing.T) {
		v := stubVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
			_, _ = w.Write([]byte(`{"success": true, "score": 0.9}`))
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()
		if v.Verify(ctx, "tok", "") {
			t.Fatal("таймаут должен трактоваться как отказ")
		}
	})

	t.Run("dev_mode_without_secret", func(t *testing.T) {
		v := &Verifier{Threshold: 0.5}
		if !v.Verify(context.Background(), "", "") {
			t.Fatal("без секрета проверка пропускается")
		}
	})
}
