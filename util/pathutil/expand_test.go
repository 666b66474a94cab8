package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	t.Run("tilde prefix", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := Expand("~/pilot/sessions")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "pilot", "sessions"), got)
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("PILOT_TEST_DIR", "/opt/pilot")

		got, err := Expand("$PILOT_TEST_DIR/hooks")
		require.NoError(t, err)
		assert.Equal(t, "/opt/pilot/hooks", got)
	})

	t.Run("relative path becomes absolute", func(t *testing.T) {
		got, err := Expand("sessions")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}
