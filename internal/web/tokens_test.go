package web

import (
	"testing"
	"time"
)

func TestStaffTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := signStaffToken(secret, 42, time.Now())
	if err != nil {
		t.Fatalf("подпись: %v", err)
	}
	uid, err := parseStaffToken(secret, token)
	if err != nil {
		t.Fatalf("разбор: %v", err)
	}
	if uid != 42 {
		t.Fatalf("uid: получили %d, ожидали 42", uid)
	}
}

func TestStaffTokenRejectsWrongSecret(t *testing.T) {
	token, err := signStaffToken([]byte("secret-a"), 1, time.Now())
	if err != nil {
		t.Fatalf("подпись: %v", err)
	}
	if _, err := parseStaffToken([]byte("secret-b"), token); err == nil {
		t.Fatal("токен с чужой подписью принят")
	}
}

func TestStaffTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := signStaffToken(secret, 1, time.Now().Add(-2*staffTokenTTL))
	if err != nil {
		t.Fatalf("подпись: %v", err)
	}
	if _, err := parseStaffToken(secret, token); err == nil {
		t.Fatal("просроченный токен принят")
	}
}

func TestIntakeTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := signIntakeToken(secret, "abc123", "bullying", time.Now())
	if err != nil {
		t.Fatalf("подпись: %v", err)
	}
	pt, err := parseIntakeToken(secret, token, "abc123")
	if err != nil {
		t.Fatalf("разбор: %v", err)
	}
	if pt != "bullying" {
		t.Fatalf("тип проблемы: получили %q", pt)
	}
}

func TestIntakeTokenBoundToCode(t *testing.T) {
	secret := []byte("test-secret")

	token, err := signIntakeToken(secret, "abc123", "bullying", time.Now())
	if err != nil {
		t.Fatalf("подпись: %v", err)
	}
	// токен первого шага нельзя переиспользовать для другой школы
	if _, err := parseIntakeToken(secret, token, "другой-код"); err == nil {
		t.Fatal("intake-токен принят для чужого кода")
	}
}

func TestIntakeTokenRejectsEmpty(t *testing.T) {
	if _, err := parseIntakeToken([]byte("test-secret"), "", "abc123"); err == nil {
		t.Fatal("пустой токен принят")
	}
}
