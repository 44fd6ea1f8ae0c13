package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	golog "github.com/ipfs/go-log/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classical-quiz/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want golog.LogLevel
	}{
		{in: "", want: golog.LevelInfo},
		{in: "debug", want: golog.LevelDebug},
		{in: "WARN", want: golog.LevelWarn},
		{in: "error", want: golog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, golog.ColorizedOutput, ParseFormat("color"))
	assert.Equal(t, golog.JSONOutput, ParseFormat("JSON"))
	assert.Equal(t, golog.PlaintextOutput, ParseFormat("plain"))
	assert.Equal(t, golog.PlaintextOutput, ParseFormat(""))
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quiz.log")
	t.Cleanup(func() {
		golog.SetupLogging(golog.Config{Format: golog.PlaintextOutput, Level: golog.LevelError, Stderr: true})
	})

	err := Setup(config.LogConfig{Level: "info", Format: "plain", File: path}, true)
	require.NoError(t, err)

	golog.Logger("logging-test").Infow("hello from test", "key", "value")

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "hello from test")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSetupRejectsBadLevel(t *testing.T) {
	err := Setup(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
