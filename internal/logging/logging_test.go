package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/eachlabs/solace/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{input: "", want: zerolog.InfoLevel},
		{input: "debug", want: zerolog.DebugLevel},
		{input: " WARN ", want: zerolog.WarnLevel},
		{input: "trace", want: zerolog.TraceLevel},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Info().Str("session_id", "s1").Msg("chat: conversation cleared")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "chat: conversation cleared", line["message"])
	assert.Equal(t, "s1", line["session_id"])
	assert.Contains(t, line, "time")
}

func TestSetup_FileAndVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "solace.log")

	logger, closer, err := Setup(config.LoggingConfig{Level: "warn", File: path}, true)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	logger.Debug().Msg("visible because verbose")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible because verbose")
}

func TestSetup_NoFile(t *testing.T) {
	logger, closer, err := Setup(config.LoggingConfig{Level: "info"}, false)
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestSetup_BadLevel(t *testing.T) {
	_, _, err := Setup(config.LoggingConfig{Level: "chatty"}, false)
	require.Error(t, err)
}
