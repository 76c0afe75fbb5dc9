package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerStatsPartialMergeKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	before, err := m.GetServerStats(ctx)
	require.NoError(t, err)

	uptime := int64(42)
	after, err := m.UpdateServerStats(ctx, ServerStatsUpdate{Uptime: &uptime})
	require.NoError(t, err)

	assert.Equal(t, int64(42), after.Uptime)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.CPUUsage, after.CPUUsage)
	assert.Equal(t, before.Memory, after.Memory)
	assert.Equal(t, before.TPS, after.TPS)
	assert.Equal(t, before.Players, after.Players)

	status := StatusOffline
	players := PlayerCounts{Online: 0, Max: 20}
	after, err = m.UpdateServerStats(ctx, ServerStatsUpdate{Status: &status, Players: &players})
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, after.Status)
	assert.Equal(t, int64(42), after.Uptime, "uptime survives unrelated merge")
}

func TestPlayerCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.CreatePlayer(ctx, "Steve", "eaglercraft", false)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 1, created.ID)
	assert.False(t, created.IsOp)

	found, err := m.GetPlayerByUsername(ctx, "Steve")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := m.GetPlayerByUsername(ctx, "Alex")
	require.NoError(t, err)
	assert.Nil(t, missing)

	isOp := true
	login := time.Now()
	updated, err := m.UpdatePlayer(ctx, created.ID, PlayerUpdate{IsOp: &isOp, LastLogin: &login})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsOp)
	assert.Equal(t, "eaglercraft", updated.LastIP, "untouched field survives")

	unknown, err := m.UpdatePlayer(ctx, 999, PlayerUpdate{IsOp: &isOp})
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestConfigDefaults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for key, want := range map[string]string{
		"gameMode":        "survival",
		"difficulty":      "normal",
		"maxPlayers":      "20",
		"pvp":             "true",
		"spawnProtection": "16",
	} {
		value, ok, err := m.GetConfig(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, want, value, key)
	}

	_, ok, err := m.GetConfig(ctx, "viewDistance")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.SetConfig(ctx, "difficulty", "hard")
	require.NoError(t, err)
	value, ok, err := m.GetConfig(ctx, "difficulty")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hard", value)
}

func TestLogRetentionCap(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < logRetention+50; i++ {
		_, err := m.CreateLog(ctx, "INFO", fmt.Sprintf("line %d", i))
		require.NoError(t, err)
	}

	logs, err := m.GetLogs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, logRetention)
	assert.Equal(t, fmt.Sprintf("line %d", logRetention+49), logs[0].Message, "newest first")

	limited, err := m.GetLogs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, limited, 10)
}

func TestWorldStatsSeededAndMerged(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ws, err := m.GetWorldStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.NotEmpty(t, ws.Seed)
	assert.Equal(t, 64, ws.SpawnY)

	chunks := 200
	updated, err := m.UpdateWorldStats(ctx, WorldStatsUpdate{LoadedChunks: &chunks})
	require.NoError(t, err)
	assert.Equal(t, 200, updated.LoadedChunks)
	assert.Equal(t, ws.Seed, updated.Seed, "seed untouched by partial merge")
}
