package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreBackend = "memory"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.AccessTokenSecret = "access-secret"
	c.RefreshTokenSecret = "refresh-secret"
	c.LogLevel = "error"
	return c
}

func TestNewApp_UnknownBackend(t *testing.T) {
	c := memoryConfig()
	c.StoreBackend = "etcd"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestNewApp_BadTTL(t *testing.T) {
	c := memoryConfig()
	c.AccessTokenTTL = "abc"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrInvalidDuration)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrHTTP = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	select {
	case err := <-runAsync(app):
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after a server failure")
	}
}

func runAsync(app *App) <-chan error {
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	return done
}
