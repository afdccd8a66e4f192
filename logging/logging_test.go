package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromFallsBackToRoot(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetRoot(zap.New(core))
	defer SetRoot(nil)

	From(context.Background()).Info("root")
	assert.Equal(t, 1, logs.Len())
}

func TestContextCarriesLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := Context(context.Background(), zap.New(core))

	logger, sub := SubFrom(ctx, "renderer")
	logger.Info("frame")
	From(sub).Info("again")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "renderer", entries[0].LoggerName)
	assert.Equal(t, "renderer", entries[1].LoggerName)
}

func TestFromWithFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := Context(context.Background(), zap.New(core))

	_, ctx = FromWithFields(ctx, zap.String("scene", "cube"))
	From(ctx).Info("loaded")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "cube", entries[0].ContextMap()["scene"])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
