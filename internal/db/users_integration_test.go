//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/anonmektep/portal/internal/auth"
	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
	"github.com/anonmektep/portal/internal/testutil/testdb"
)

func mustUser(t *testing.T, ctx context.Context, database *sql.DB, username string, role models.Role, schoolID *int64) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("пароль-для-тестов")
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     username,
		Role:         role,
		SchoolID:     schoolID,
		IsActive:     true,
	}
	if err := db.CreateUser(ctx, database, u); err != nil {
		t.Fatal(err)
	}
	return u
}

func bind(t *testing.T, ctx context.Context, database *sql.DB, userID, chatID int64) {
	t.Helper()
	if err := db.BindChatID(ctx, database, userID, chatID); err != nil {
		t.Fatal(err)
	}
}

func TestUsers_ChatRebindLastWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	first := mustUser(t, ctx, h.DB, "ivanova", models.DistrictAdmin, nil)
	second := mustUser(t, ctx, h.DB, "petrova", models.DistrictAdmin, nil)

	const chat = int64(777)
	bind(t, ctx, h.DB, first.ID, chat)
	bind(t, ctx, h.DB, second.ID, chat)

	got, err := db.GetUserByChatID(ctx, h.DB, chat)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != second.ID {
		t.Fatalf("чат остался за %q, ожидали %q", got.Username, second.Username)
	}

	// у прежнего владельца привязки больше нет
	prev, err := db.GetUserByID(ctx, h.DB, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if prev.TelegramChatID != nil {
		t.Fatal("прежний владелец чата не отвязан")
	}
}

func TestUsers_NotifyTargets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	school := mustSchool(t, ctx, h.DB, "Школа №5")
	other := mustSchool(t, ctx, h.DB, "Школа №6")

	admin := mustUser(t, ctx, h.DB, "admin", models.SuperAdmin, nil)
	district := mustUser(t, ctx, h.DB, "rayon", models.DistrictAdmin, nil)
	ours := mustUser(t, ctx, h.DB, "наш-учитель", models.Teacher, &school.ID)
	foreign := mustUser(t, ctx, h.DB, "чужой-учитель", models.Teacher, &other.ID)
	unbound := mustUser(t, ctx, h.DB, "без-чата", models.Teacher, &school.ID)

	bind(t, ctx, h.DB, admin.ID, 1)
	bind(t, ctx, h.DB, district.ID, 2)
	bind(t, ctx, h.DB, ours.ID, 3)
	bind(t, ctx, h.DB, foreign.ID, 4)
	_ = unbound

	names := func(users []models.User) map[string]bool {
		m := make(map[string]bool, len(users))
		for _, u := range users {
			m[u.Username] = true
		}
		return m
	}

	t.Run("school_report", func(t *testing.T) {
		targets, err := db.NotifyTargets(ctx, h.DB, &school.ID)
		if err != nil {
			t.Fatal(err)
		}
		got := names(targets)
		for _, want := range []string{"admin", "rayon", "наш-учитель"} {
			if !got[want] {
				t.Errorf("нет получателя %q", want)
			}
		}
		if got["чужой-учитель"] {
			t.Error("учитель другой школы попал в рассылку")
		}
		if got["без-чата"] {
			t.Error("сотрудник без привязанного чата попал в рассылку")
		}
	})

	t.Run("general_report", func(t *testing.T) {
		targets, err := db.NotifyTargets(ctx, h.DB, nil)
		if err != nil {
			t.Fatal(err)
		}
		got := names(targets)
		if !got["admin"] || !got["rayon"] {
			t.Fatal("администраторы должны получать районные обращения")
		}
		if got["наш-учитель"] || got["чужой-учитель"] {
			t.Fatal("учителя не должны получать районные обращения")
		}
	})

	t.Run("inactive_excluded", func(t *testing.T) {
		district.IsActive = false
		if err := db.UpdateUser(ctx, h.DB, district); err != nil {
			t.Fatal(err)
		}
		targets, err := db.NotifyTargets(ctx, h.DB, nil)
		if err != nil {
			t.Fatal(err)
		}
		if names(targets)["rayon"] {
			t.Fatal("отключенный сотрудник попал в рассылку")
		}
	})
}

func TestUsers_AuthenticateAndSeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	created, err := db.SeedSuperAdmin(ctx, h.DB, "admin", "секретный-пароль")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("на пустой базе супер-админ должен создаваться")
	}

	// повторный запуск ничего не плодит
	again, err := db.SeedSuperAdmin(ctx, h.DB, "admin2", "другой")
	if err != nil {
		t.Fatal(err)
	}
	if again {
		t.Fatal("на непустой базе посев должен быть пропущен")
	}

	user, err := auth.Authenticate(ctx, h.DB, "admin", "секретный-пароль")
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != models.SuperAdmin {
		t.Fatalf("роль посеянного администратора: %q", user.Role)
	}
	if _, err := auth.Authenticate(ctx, h.DB, "admin", "неверный"); err != auth.ErrInvalidCredentials {
		t.Fatalf("неверный пароль: ожидали ErrInvalidCredentials, получили %v", err)
	}
	if _, err := auth.Authenticate(ctx, h.DB, "нет-такого", "пароль"); err != auth.ErrInvalidCredentials {
		t.Fatalf("неизвестный логин: ожидали тот же отказ, получили %v", err)
	}
}
