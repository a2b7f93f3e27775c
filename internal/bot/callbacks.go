package bot

import (
	"fmt"
	"strconv"
)

// Формат callback data — поля через двоеточие:
//
//	menu
//	stats:all | stats:school
//	list:{new|in_progress|resolved|general}:{page}
//	report:{id}
//	status:{id}:{status}
//	comment:{id}
//	schools:{page} | users:{page}

const botPageSize = 10

func callbackPage(prefix string, page int) string {
	return fmt.Sprintf("%s:%d", prefix, page)
}

// idArg разбирает числовой аргумент; ноль при мусоре в данных.
func idArg(parts []string, idx int) int64 {
	if idx >= len(parts) {
		return 0
	}
	id, err := strconv.ParseInt(parts[idx], 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func pageArg(parts []string, idx int) int {
	if idx >= len(parts) {
		return 1
	}
	page, err := strconv.Atoi(parts[idx])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func totalPages(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
