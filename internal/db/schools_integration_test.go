//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/testutil/testdb"
)

var codeShape = regexp.MustCompile(`^[0-9a-f]{12}$`)

func TestSchools_OpaqueCodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	first := mustSchool(t, ctx, h.DB, "Школа №1")
	second := mustSchool(t, ctx, h.DB, "Школа №2")

	if !codeShape.MatchString(first.UniqueCode) {
		t.Fatalf("форма кода: %q", first.UniqueCode)
	}
	if first.UniqueCode == second.UniqueCode {
		t.Fatal("коды школ совпали")
	}

	got, err := db.GetSchoolByCode(ctx, h.DB, first.UniqueCode)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID {
		t.Fatalf("поиск по коду вернул школу %d", got.ID)
	}
	if _, err := db.GetSchoolByCode(ctx, h.DB, "ffffffffffff"); err != db.ErrSchoolNotFound {
		t.Fatalf("несуществующий код: ожидали ErrSchoolNotFound, получили %v", err)
	}
}

func TestSchools_DeleteDetaches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	school := mustSchool(t, ctx, h.DB, "Закрываемая школа")
	teacher := mustUser(t, ctx, h.DB, "учитель", "teacher", &school.ID)
	report := mustReport(t, ctx, h.DB, &school.ID, "обращение закрываемой школы")

	teachers, reports, err := db.DeleteSchool(ctx, h.DB, school.ID)
	if err != nil {
		t.Fatal(err)
	}
	if teachers != 1 || reports != 1 {
		t.Fatalf("отвязано: учителей %d, обращений %d", teachers, reports)
	}

	// обращение живо, но стало районным
	got, err := db.GetReportByID(ctx, h.DB, report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SchoolID != nil {
		t.Fatal("обращение всё ещё ссылается на удалённую школу")
	}

	u, err := db.GetUserByID(ctx, h.DB, teacher.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.SchoolID != nil {
		t.Fatal("учитель всё ещё ссылается на удалённую школу")
	}
}

func TestBotSessions_SaveGetCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	sess := &db.BotSession{ChatID: 100, State: db.BotStateAwaitingPassword, Username: "ivanova"}
	if err := db.SaveBotSession(ctx, h.DB, sess); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetBotSession(ctx, h.DB, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.State != db.BotStateAwaitingPassword || got.Username != "ivanova" {
		t.Fatalf("сессия после чтения: %#v", got)
	}

	// апсерт перетирает состояние
	sess.State = db.BotStateAwaitingComment
	sess.ReportID = 5
	if err := db.SaveBotSession(ctx, h.DB, sess); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetBotSession(ctx, h.DB, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != db.BotStateAwaitingComment || got.ReportID != 5 {
		t.Fatalf("сессия после апсерта: %#v", got)
	}

	time.Sleep(50 * time.Millisecond)
	removed, err := db.CleanupBotSessions(ctx, h.DB, 0)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("чистка удалила %d сессий, ожидали 1", removed)
	}
	got, err = db.GetBotSession(ctx, h.DB, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("сессия пережила чистку")
	}
}
