package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.ParamCacheSize)

	t.Setenv("ALPHAHITLER_WORKERS", "3")
	t.Setenv("ALPHAHITLER_CONDITION_ON_ACTUALS", "true")
	t.Setenv("ALPHAHITLER_MODEL_DIR", "../../model/tables")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.ConditionOnActuals)
	assert.Equal(t, "../../model/tables", cfg.ModelDir)

	t.Setenv("ALPHAHITLER_WORKERS", "many")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := Config{ModelDir: "../../model/tables", Workers: 2, ParamCacheSize: 64}
	opts := runOptions{gameFile: "../../testdata/seven_players.yaml", round: -1, top: 3}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, opts, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// Header, 7 players, blank line, title, 3 assignments.
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[1], "Alice"))
	assert.Contains(t, lines[9], "105 role assignments")
	assert.Contains(t, lines[10], "Hitler:")
}

func TestRun_MissingGame(t *testing.T) {
	cfg := Config{ParamCacheSize: 64}
	opts := runOptions{gameFile: "does-not-exist.yaml", round: -1}

	var out bytes.Buffer
	assert.Error(t, run(context.Background(), cfg, opts, &out))
	assert.Empty(t, out.String())
}
