package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/anonmektep/portal/internal/models"
)

func TestFormatReportAlert(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("school_report", func(t *testing.T) {
		schoolID := int64(7)
		r := &models.Report{
			ID:          42,
			Problem:     "Описание проблемы",
			ProblemType: models.ProblemBullying,
			SchoolID:    &schoolID,
			SchoolName:  "Школа №3",
			CreatedAt:   created,
		}
		text := FormatReportAlert(r)
		for _, want := range []string{"#42", "Школа №3", "Буллинг", "Описание проблемы", "14.03.2025 09:30"} {
			if !strings.Contains(text, want) {
				t.Errorf("в алерте нет %q:\n%s", want, text)
			}
		}
	})

	t.Run("general_report", func(t *testing.T) {
		r := &models.Report{ID: 1, ProblemType: models.ProblemOther, CreatedAt: created}
		text := FormatReportAlert(r)
		if !strings.Contains(text, "Районный отдел образования") {
			t.Errorf("общее обращение должно адресоваться районному отделу:\n%s", text)
		}
	})

	t.Run("long_problem_truncated", func(t *testing.T) {
		r := &models.Report{
			ID:          2,
			Problem:     strings.Repeat("я", 500),
			ProblemType: models.ProblemOther,
			CreatedAt:   created,
		}
		text := FormatReportAlert(r)
		// Считаем только сегмент описания: буква «я» встречается и в
		// служебных строках шаблона
		if want := Truncate(r.Problem, 200); !strings.Contains(text, want) {
			t.Errorf("описание должно обрезаться до 200 рун с многоточием:\n%s", text)
		}
		if strings.Contains(text, strings.Repeat("я", 201)) {
			t.Error("в алерт попало больше 200 рун описания")
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := Truncate("короткое", 200); got != "короткое" {
		t.Fatalf("короткая строка не должна меняться, получили %q", got)
	}
	long := strings.Repeat("ю", 201)
	got := Truncate(long, 200)
	if len([]rune(got)) != 203 {
		t.Fatalf("ожидали 200 рун плюс многоточие, получили %d", len([]rune(got)))
	}
}

func TestAlertKeyboard(t *testing.T) {
	mk := AlertKeyboard(5, "https://portal.example")
	if len(mk.InlineKeyboard) != 3 {
		t.Fatalf("ожидали 3 ряда кнопок, получили %d", len(mk.InlineKeyboard))
	}
	first := mk.InlineKeyboard[0]
	if *first[0].CallbackData != "status:5:in_progress" || *first[1].CallbackData != "status:5:resolved" {
		t.Errorf("callback-данные статусов: %v, %v", *first[0].CallbackData, *first[1].CallbackData)
	}
	if *mk.InlineKeyboard[1][0].CallbackData != "comment:5" {
		t.Errorf("callback комментария: %v", *mk.InlineKeyboard[1][0].CallbackData)
	}
	url := mk.InlineKeyboard[2][0].URL
	if url == nil || *url != "https://portal.example/staff/reports/5" {
		t.Errorf("ссылка на карточку: %v", url)
	}
}
