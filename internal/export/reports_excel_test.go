package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anonmektep/portal/internal/models"
)

func TestReportsWorkbook(t *testing.T) {
	schoolID := int64(1)
	reports := []models.Report{
		{
			ID: 1, Problem: "жалоба", Help: "помощь", ProblemType: models.ProblemBullying,
			Status: models.StatusNew, SchoolID: &schoolID, SchoolName: "Школа №1",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		},
		{
			ID: 2, Problem: "общее", Help: "совет", ProblemType: models.ProblemOther,
			Status: models.StatusResolved,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		},
	}

	buf, err := ReportsWorkbook(reports)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	rows, err := f.GetRows("Обращения")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("ожидали шапку и 2 строки, получили %d", len(rows))
	}
	if rows[1][1] != "Школа №1" {
		t.Errorf("школа в первой строке: %q", rows[1][1])
	}
	if rows[2][1] != "Районный отдел образования" {
		t.Errorf("общее обращение: %q", rows[2][1])
	}
	if rows[1][3] != "Новое" || rows[2][3] != "Решено" {
		t.Errorf("статусы должны выводиться метками: %q, %q", rows[1][3], rows[2][3])
	}
}

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA"}
	for n, want := range cases {
		if got := colName(n); got != want {
			t.Errorf("colName(%d) = %q, ожидали %q", n, got, want)
		}
	}
}
