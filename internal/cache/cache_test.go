package cache

import (
	"context"
	"testing"

	"pomodoro/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewConnectsAndCloses(t *testing.T) {
	mr := miniredis.RunT(t)
	lc := fxtest.NewLifecycle(t)

	client, err := New(Params{
		Lifecycle: lc,
		Configs:   config.Static(&config.Config{Redis: config.Redis{URL: "redis://" + mr.Addr() + "/0"}}),
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	lc.RequireStart()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", client.Get(context.Background(), "k").Val())
	lc.RequireStop()
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Configs:   config.Static(&config.Config{Redis: config.Redis{URL: "http://nope"}}),
		Logger:    zap.NewNop(),
	})
	assert.Error(t, err)
}
