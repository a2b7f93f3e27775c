package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anonmektep/portal/internal/models"
)

const reportsSheet = "Обращения"

// ReportsWorkbook собирает реестр обращений в один лист: жирная шапка,
// автофильтр, эвристическая ширина колонок.
func ReportsWorkbook(reports []models.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"№", "Школа", "Тип проблемы", "Статус", "Описание", "Ожидаемая помощь", "Контакт", "Создано", "Обновлено"}
	for col, h := range header {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(reportsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	end := colName(len(header)) + "1"
	_ = f.SetCellStyle(reportsSheet, "A1", end, bold)
	_ = f.AutoFilter(reportsSheet, "A1:"+end, nil)

	for i, r := range reports {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.SchoolLabel(),
			r.ProblemType.Label(),
			r.Status.Label(),
			r.Problem,
			r.Help,
			r.Contact,
			r.CreatedAt.Format("02.01.2006 15:04"),
			r.UpdatedAt.Format("02.01.2006 15:04"),
		}
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", colName(c+1), i+2)
			if err := f.SetCellStr(reportsSheet, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// эвристическая ширина: по шапке и первым строкам
	for c := 1; c <= len(header); c++ {
		maxim := len([]rune(header[c-1]))
		for r := 0; r < minim(50, len(reports)); r++ {
			cell, _ := f.GetCellValue(reportsSheet, fmt.Sprintf("%s%d", colName(c), r+2))
			if l := len([]rune(cell)); l > maxim {
				maxim = l
			}
		}
		w := float64(maxim) * 1.1
		if w < 12 {
			w = 12
		}
		if w > 60 {
			w = 60
		}
		_ = f.SetColWidth(reportsSheet, colName(c), colName(c), w)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Filename — человекочитаемое имя файла выгрузки.
func Filename(now time.Time) string {
	return fmt.Sprintf("Реестр обращений — %s.xlsx", now.Format("02.01.2006"))
}

func colName(n int) string {
	// 1 -> A; 27 -> AA
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
