package effects

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlushRunsInOrderAndSwallowsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var ran []string
	var q Queue
	q.Add("first", func(context.Context) error { ran = append(ran, "first"); return nil })
	q.Add("broken", func(context.Context) error { ran = append(ran, "broken"); return errors.New("smtp down") })
	q.Add("panics", func(context.Context) error { panic("boom") })
	q.Add("last", func(context.Context) error { ran = append(ran, "last"); return nil })
	q.Add("nil", nil)
	assert.Equal(t, 4, q.Len())

	q.Flush(context.Background(), logger)

	assert.Equal(t, []string{"first", "broken", "last"}, ran)
	assert.Zero(t, q.Len())
	assert.Contains(t, buf.String(), "smtp down")
	assert.Contains(t, buf.String(), "effect=panics")
}

func TestDiscard(t *testing.T) {
	called := false
	var q Queue
	q.Add("never", func(context.Context) error { called = true; return nil })
	q.Discard()
	q.Flush(context.Background(), nil)
	assert.False(t, called)
}
