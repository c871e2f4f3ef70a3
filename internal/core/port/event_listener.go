package port

import "context"

// EventListenerPort - входящий адаптер, который слушает внешний источник событий
type EventListenerPort interface {
	// Start блокируется до отмены контекста или фатальной ошибки
	Start(ctx context.Context) error
	Close() error
}
