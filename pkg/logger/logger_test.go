package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	mu.Lock()
	prev := log
	log = zap.New(core)
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		log = prev
		mu.Unlock()
	})
	return logs
}

func TestWithContext_AddsCorrelationID(t *testing.T) {
	logs := observe(t)

	ctx := ContextWithCorrelationID(context.Background(), "abc-123")
	WithContext(ctx).Info("deposit accepted")
	WithContext(context.Background()).Info("no id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[0].ContextMap()["correlation_id"])
	assert.NotContains(t, entries[1].ContextMap(), "correlation_id")
}

func TestCorrelationIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(nil)) //nolint:staticcheck
}

func TestInit_Environments(t *testing.T) {
	mu.RLock()
	prev := log
	mu.RUnlock()
	t.Cleanup(func() {
		mu.Lock()
		log = prev
		mu.Unlock()
	})

	for _, env := range []string{"production", "development"} {
		require.NoError(t, Init(env, "fundraising"))
		assert.NotNil(t, Get())
	}
}
