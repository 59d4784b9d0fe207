package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Levels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Out: &buf, JSON: true}))
	log.Debug().Msg("hidden")
	log.Info().Str("repo", "o/r").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"repo":"o/r"`)

	buf.Reset()
	require.NoError(t, Init(Options{Out: &buf, JSON: true, Verbose: true}))
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestInit_ConsoleFormatWithoutTTY(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Out: &buf}))
	log.Info().Msg("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestInit_FileSink(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Out: &buf, Dir: dir, JSON: true}))
	log.Info().Msg("to file")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
