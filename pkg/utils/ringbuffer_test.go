package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeEntry(t *testing.T, ring *Ring, msg string) {
	t.Helper()
	err := ring.Write(zapcore.Entry{
		Time:    time.Now(),
		Level:   zapcore.InfoLevel,
		Message: msg,
	}, nil)
	require.NoError(t, err)
}

func TestRing_RecentNewestFirst(t *testing.T) {
	ring := NewRing(10, zapcore.InfoLevel)

	for i := 0; i < 3; i++ {
		writeEntry(t, ring, fmt.Sprintf("msg-%d", i))
	}

	entries := ring.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "msg-2", entries[0].Message)
	assert.Equal(t, "msg-1", entries[1].Message)
	assert.Equal(t, "msg-0", entries[2].Message)

	entries = ring.Recent(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "msg-2", entries[0].Message)
}

func TestRing_EvictsOldestWhenFull(t *testing.T) {
	ring := NewRing(3, zapcore.InfoLevel)

	for i := 0; i < 5; i++ {
		writeEntry(t, ring, fmt.Sprintf("msg-%d", i))
	}

	entries := ring.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "msg-4", entries[0].Message)
	assert.Equal(t, "msg-3", entries[1].Message)
	assert.Equal(t, "msg-2", entries[2].Message)
}

func TestRing_LevelFiltering(t *testing.T) {
	ring := NewRing(10, zapcore.WarnLevel)

	assert.False(t, ring.Enabled(zapcore.InfoLevel))
	assert.True(t, ring.Enabled(zapcore.ErrorLevel))

	// below-threshold entries are not checked in
	ce := ring.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil)
	assert.Nil(t, ce)
}

func TestRing_CapturesStructuredFields(t *testing.T) {
	ring := NewRing(10, zapcore.InfoLevel)
	logger := zap.New(ring)

	logger.Info("claim submitted", zap.Int64("id", 7), zap.String("lecturer", "A"))
	logger.With(zap.String("component", "server")).Warn("slow request")

	entries := ring.Recent(0)
	require.Len(t, entries, 2)

	assert.Equal(t, "slow request", entries[0].Message)
	assert.Equal(t, "warn", entries[0].Level)
	assert.Equal(t, "server", entries[0].Fields["component"])

	assert.Equal(t, "claim submitted", entries[1].Message)
	assert.Equal(t, int64(7), entries[1].Fields["id"])
	assert.Equal(t, "A", entries[1].Fields["lecturer"])
}
