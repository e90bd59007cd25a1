package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesServiceAndComponent(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Service: "trackflow", Output: &buf})
	Component("tracking").Debug().Str("tracking_number", "CZ1").Msg("lookup")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "trackflow", line["service"])
	assert.Equal(t, "tracking", line["component"])
	assert.Equal(t, "CZ1", line["tracking_number"])
	assert.Equal(t, "debug", line["level"])
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	Get().Info().Msg("hello")

	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestInit_LevelFilters(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "warn", Output: &buf})
	Get().Info().Msg("dropped")
	assert.Empty(t, buf.String())

	Get().Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestGet_BeforeInitIsDisabled(t *testing.T) {
	Reset()
	assert.Equal(t, zerolog.Disabled, Get().GetLevel())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}
