//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
	"github.com/anonmektep/portal/internal/testutil/testdb"
)

func mustSchool(t *testing.T, ctx context.Context, database *sql.DB, name string) *models.School {
	t.Helper()
	school, err := db.CreateSchool(ctx, database, name, "")
	if err != nil {
		t.Fatal(err)
	}
	return school
}

func mustReport(t *testing.T, ctx context.Context, database *sql.DB, schoolID *int64, problem string) *models.Report {
	t.Helper()
	r := &models.Report{
		Problem:     problem,
		Help:        "поговорить с классом",
		ProblemType: models.ProblemBullying,
		SchoolID:    schoolID,
	}
	if err := db.CreateReport(ctx, database, r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestReports_VisibilityScope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	first := mustSchool(t, ctx, h.DB, "Школа №1")
	second := mustSchool(t, ctx, h.DB, "Школа №2")

	mustReport(t, ctx, h.DB, &first.ID, "обращение первой школы")
	mustReport(t, ctx, h.DB, &second.ID, "обращение второй школы")
	mustReport(t, ctx, h.DB, nil, "обращение в районный отдел")

	t.Run("scoped_to_school", func(t *testing.T) {
		got, total, err := db.ListReports(ctx, h.DB, db.ReportFilter{VisibleSchoolID: &first.ID, Page: 1})
		if err != nil {
			t.Fatal(err)
		}
		if total != 1 || len(got) != 1 {
			t.Fatalf("область первой школы: total=%d len=%d", total, len(got))
		}
		if got[0].Problem != "обращение первой школы" {
			t.Fatalf("чужое обращение в выборке: %q", got[0].Problem)
		}
	})

	t.Run("all_schools", func(t *testing.T) {
		_, total, err := db.ListReports(ctx, h.DB, db.ReportFilter{Page: 1})
		if err != nil {
			t.Fatal(err)
		}
		if total != 3 {
			t.Fatalf("полная выборка: total=%d, ожидали 3", total)
		}
	})

	t.Run("general_only", func(t *testing.T) {
		got, total, err := db.ListReports(ctx, h.DB, db.ReportFilter{GeneralOnly: true, Page: 1})
		if err != nil {
			t.Fatal(err)
		}
		if total != 1 || got[0].SchoolID != nil {
			t.Fatalf("районная выборка: total=%d", total)
		}
		if got[0].SchoolLabel() != "Районный отдел образования" {
			t.Fatalf("подпись районного обращения: %q", got[0].SchoolLabel())
		}
	})
}

func TestReports_CreateForcesNewStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	r := &models.Report{
		Problem:     "описание",
		Help:        "нужна помощь",
		ProblemType: models.ProblemOther,
		Status:      models.StatusResolved, // должен быть проигнорирован
	}
	if err := db.CreateReport(ctx, h.DB, r); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetReportByID(ctx, h.DB, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusNew {
		t.Fatalf("статус нового обращения: %q", got.Status)
	}
}

func TestReports_BadStatusLeavesRowUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	r := mustReport(t, ctx, h.DB, nil, "проверка статусов")

	if err := db.SetReportStatus(ctx, h.DB, r.ID, models.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if err := db.SetReportStatus(ctx, h.DB, r.ID, models.Status("бракованный")); !errors.Is(err, db.ErrBadStatus) {
		t.Fatalf("ожидали ErrBadStatus, получили %v", err)
	}

	got, err := db.GetReportByID(ctx, h.DB, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusInProgress {
		t.Fatalf("статус после отказа: %q, ожидали in_progress", got.Status)
	}
}

func TestReports_CommentsChronological(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	r := mustReport(t, ctx, h.DB, nil, "с комментариями")

	for _, text := range []string{"первый", "второй", "третий"} {
		if err := db.AddComment(ctx, h.DB, &models.InternalComment{ReportID: r.ID, Text: text}); err != nil {
			t.Fatal(err)
		}
	}
	comments, err := db.ListComments(ctx, h.DB, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 3 {
		t.Fatalf("комментариев %d, ожидали 3", len(comments))
	}
	for i, want := range []string{"первый", "второй", "третий"} {
		if comments[i].Text != want {
			t.Fatalf("порядок комментариев: позиция %d — %q", i, comments[i].Text)
		}
	}
}
