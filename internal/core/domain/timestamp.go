package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Timestamp - время создания записи каталога.
// В хранилище встречаются строки RFC3339, даты, unix-секунды и миллисекунды,
// объекты {seconds, nanoseconds}. Все прочее читается как нулевое время,
// которое при сортировке считается самым старым.
type Timestamp struct {
	Time time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// After сравнивает два времени; нулевое время раньше любого заданного
func (t Timestamp) After(o Timestamp) bool {
	return t.Time.After(o.Time)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parseTimestampValue(raw)
	return nil
}

// UnmarshalYAML - форма для goccy/go-yaml
func (t *Timestamp) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parseTimestampValue(raw)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestampValue(raw interface{}) time.Time {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			// смещение сохраняется: календарный день берется в зоне источника
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed
			}
		}
	case float64:
		return fromUnixNumber(v)
	case int:
		return fromUnixNumber(float64(v))
	case int64:
		return fromUnixNumber(float64(v))
	case uint64:
		return fromUnixNumber(float64(v))
	case map[string]interface{}:
		secs, ok := numberField(v, "seconds", "_seconds")
		if !ok {
			return time.Time{}
		}
		nanos, _ := numberField(v, "nanoseconds", "_nanoseconds")
		return time.Unix(int64(secs), int64(nanos)).UTC()
	}
	return time.Time{}
}

// значения больше 1e12 считаются миллисекундами
func fromUnixNumber(n float64) time.Time {
	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}
	}
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func numberField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case uint64:
			return float64(n), true
		}
	}
	return 0, false
}
