package models

import "time"

type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	FullName       string
	Role           Role
	SchoolID       *int64
	SchoolName     string
	TelegramChatID *int64
	IsActive       bool
	CreatedAt      time.Time
}

type School struct {
	ID      int64
	Name    string
	Address string
	// UniqueCode — неугадываемый код для публичной ссылки /send/{code}.
	// Генерируется сервером, никогда не выбирается пользователем.
	UniqueCode string
}

// GeneralCode — зарезервированный код для обращений в районный отдел
// без привязки к школе. Никогда не присваивается реальной школе.
const GeneralCode = "general"
