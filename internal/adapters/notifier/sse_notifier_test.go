package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (n nopLogger) WithFields(port.Fields) port.LoggerPort { return n }

func TestSSENotifier_BroadcastsToAllClients(t *testing.T) {
	n := NewSSENotifier(nopLogger{})
	t.Cleanup(func() { _ = n.Close() })

	first := n.AddClient()
	second := n.AddClient()

	n.Publish(context.Background(), []domain.CatalogRecord{{ID: "p1", Kind: domain.KindProperty}})

	for _, ch := range []ClientChannel{first, second} {
		select {
		case msg := <-ch:
			text := string(msg)
			assert.True(t, strings.HasPrefix(text, "event: catalog\ndata: ["))
			assert.Contains(t, text, `"id":"p1"`)
			assert.True(t, strings.HasSuffix(text, "\n\n"))
		case <-time.After(time.Second):
			t.Fatal("snapshot was not delivered")
		}
	}
}

func TestSSENotifier_RemovedClientGetsNothing(t *testing.T) {
	n := NewSSENotifier(nopLogger{})
	t.Cleanup(func() { _ = n.Close() })

	gone := n.AddClient()
	n.RemoveClient(gone)
	n.RemoveClient(gone)

	stay := n.AddClient()
	n.Publish(context.Background(), nil)

	select {
	case <-stay:
	case <-time.After(time.Second):
		t.Fatal("snapshot was not delivered")
	}
	assert.Empty(t, gone)
}

func TestSSENotifier_PublishAfterCloseIsNoop(t *testing.T) {
	n := NewSSENotifier(nopLogger{})
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())

	n.Publish(context.Background(), []domain.CatalogRecord{{ID: "x"}})
}

func TestFormatEvent(t *testing.T) {
	msg, err := FormatEvent("connected", map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, "event: connected\ndata: {}\n\n", string(msg))
}
