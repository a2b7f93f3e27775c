package app

import "sync"

// ChatLimiter сериализует обработку апдейтов внутри одного чата:
// два сообщения из разных чатов идут параллельно, из одного — по очереди,
// иначе шаги диалога авторизации могут перепутаться.
type ChatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*sync.Mutex
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byID: make(map[int64]*sync.Mutex)}
}

func (l *ChatLimiter) Do(chatID int64, fn func()) {
	l.mu.Lock()
	m, ok := l.byID[chatID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[chatID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	fn()
}
