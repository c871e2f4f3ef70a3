package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
)

// EventCatalog - имя SSE-события со снимком каталога
const EventCatalog = "catalog"

// ClientChannel - канал готовых SSE-сообщений одного подключения
type ClientChannel chan []byte

type snapshotWithContext struct {
	ctx     context.Context
	records []domain.CatalogRecord
}

// SSENotifier рассылает снимки объединенного каталога всем подписчикам
type SSENotifier struct {
	mu      sync.RWMutex
	clients map[ClientChannel]struct{}

	events chan snapshotWithContext
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	logger port.LoggerPort
}

var _ port.CatalogNotifierPort = (*SSENotifier)(nil)

// NewSSENotifier создает нотификатор и запускает диспетчер
func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients: make(map[ClientChannel]struct{}),
		events:  make(chan snapshotWithContext, 16),
		done:    make(chan struct{}),
		logger:  baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}

	n.wg.Add(1)
	go n.dispatcher()

	return n
}

func (n *SSENotifier) dispatcher() {
	defer n.wg.Done()
	n.logger.Debug("Notifier dispatcher started.", nil)

	for {
		select {
		case <-n.done:
			return
		case pkg := <-n.events:
			n.broadcast(pkg)
		}
	}
}

func (n *SSENotifier) broadcast(pkg snapshotWithContext) {
	eventLogger := contextkeys.LoggerFromContext(pkg.ctx).WithFields(port.Fields{
		"component":    "SSENotifier.dispatcher",
		"record_count": len(pkg.records),
	})

	message, err := FormatEvent(EventCatalog, pkg.records)
	if err != nil {
		eventLogger.Error("Failed to marshal catalog snapshot", err, nil)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.clients) == 0 {
		eventLogger.Debug("No active subscribers, snapshot dropped.", nil)
		return
	}

	for ch := range n.clients {
		select {
		case ch <- message:
		default:
			eventLogger.Warn("Client channel is full, skipping.", nil)
		}
	}
	eventLogger.Debug("Snapshot dispatched", port.Fields{"subscribers": len(n.clients)})
}

// Publish ставит снимок в очередь рассылки и не блокируется
func (n *SSENotifier) Publish(ctx context.Context, records []domain.CatalogRecord) {
	select {
	case <-n.done:
		return
	default:
	}

	select {
	case n.events <- snapshotWithContext{ctx: context.WithoutCancel(ctx), records: records}:
	default:
		contextkeys.LoggerFromContext(ctx).Warn("Notifier queue is full, snapshot dropped", port.Fields{"component": "SSENotifier"})
	}
}

// AddClient регистрирует новое SSE-подключение
func (n *SSENotifier) AddClient() ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, 8)
	n.clients[ch] = struct{}{}

	n.logger.Info("Client connected", port.Fields{"total_connections": len(n.clients)})
	return ch
}

// RemoveClient удаляет подключение после его закрытия
func (n *SSENotifier) RemoveClient(ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.clients[ch]; !ok {
		return
	}
	delete(n.clients, ch)
	n.logger.Info("Client disconnected", port.Fields{"remaining_connections": len(n.clients)})
}

// Close останавливает диспетчер; новые снимки больше не рассылаются
func (n *SSENotifier) Close() error {
	n.once.Do(func() { close(n.done) })
	n.wg.Wait()
	return nil
}

// FormatEvent собирает SSE-сообщение: event + data одной строкой JSON
func FormatEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)), nil
}
