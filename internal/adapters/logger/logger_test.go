package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapter_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"use_case": "ReconcileContracts"}).
		Error("write failed", errors.New("boom"), port.Fields{"remote_id": "r1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "write failed", entry["msg"])
	assert.Equal(t, "ReconcileContracts", entry["use_case"])
	assert.Equal(t, "r1", entry["remote_id"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSlogAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	assert.Zero(t, buf.Len())

	logger.Warn("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

type fakePoster struct {
	mu    sync.Mutex
	posts []map[string]any
	tags  []string
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	fields, _ := message.(port.Fields)
	f.posts = append(f.posts, fields)
	return nil
}

func (f *fakePoster) Close() error { return nil }

func TestFluentLoggerAdapter_FiltersAndMerges(t *testing.T) {
	poster := &fakePoster{}
	adapter, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	require.NoError(t, err)

	logger := adapter.WithFields(port.Fields{"component": "RentgerClient"})
	logger.Debug("dropped", nil)
	logger.Info("kept", port.Fields{"count": 3})
	logger.Error("failed", errors.New("timeout"), nil)

	require.Len(t, poster.posts, 2)
	assert.Equal(t, []string{"info", "error"}, poster.tags)
	assert.Equal(t, "RentgerClient", poster.posts[0]["component"])
	assert.Equal(t, 3, poster.posts[0]["count"])
	assert.Equal(t, "kept", poster.posts[0]["message"])
	assert.Equal(t, "timeout", poster.posts[1]["error"])
}

func TestFluentLoggerAdapter_NilClient(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLogger_FansOut(t *testing.T) {
	first, second := &fakePoster{}, &fakePoster{}
	a, _ := NewFluentLoggerAdapter(first, slog.LevelDebug)
	b, _ := NewFluentLoggerAdapter(second, slog.LevelDebug)

	multi, err := NewMultiloggerAdapter(a, b)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"run_id": "x"}).Warn("careful", nil)

	require.Len(t, first.posts, 1)
	require.Len(t, second.posts, 1)
	assert.Equal(t, "x", second.posts[0]["run_id"])

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}
