package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "text", &buf)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		kv    string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		assert.Contains(t, out, "level="+tc.level)
		assert.Contains(t, out, "msg="+tc.msg)
		assert.Contains(t, out, tc.kv)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "text", &buf)
	ctx := context.Background()

	log.Debug(ctx, "hidden-debug")
	log.Info(ctx, "hidden-info")
	log.Warn(ctx, "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden-debug")
	assert.NotContains(t, out, "hidden-info")
	assert.Contains(t, out, "shown")
}

func TestNew_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := New("", "", &buf)
	log.Info(context.Background(), "hello", "user_id", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "INFO", line["level"])
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "text", &buf)

	log2 := log.With("module", "tokens", "user_id", "u1")
	log2.Info(context.Background(), "rotated", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=rotated", "module=tokens", "user_id=u1", "k=v"} {
		assert.Contains(t, out, s)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	var log Logger = Nop{}
	ctx := context.TODO()

	log.Debug(ctx, "x")
	log.Info(ctx, "x")
	log.Warn(ctx, "x")
	log.Error(ctx, "x")
	assert.NotNil(t, log.With("a", 1))
}
