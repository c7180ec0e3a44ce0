package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceRestoresPreviousLogger(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	restore := Replace(zap.New(core))
	L().Info("walk_start")
	restore()

	require.Equal(t, 1, recorded.FilterMessage("walk_start").Len())
	require.Nil(t, logger)
	require.Panics(t, func() { L() })
}

func TestInitFileWritesJSONLines(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	logPath := filepath.Join(t.TempDir(), "syllabi.log")
	require.NoError(t, InitFile(true, logPath))
	L().Debug("locator_click", zap.String("selector", "a"))
	L().Info("walk_done", zap.Int("areas", 2))
	Sync()

	written, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(written), `"msg":"locator_click"`)
	require.Contains(t, string(written), `"areas":2`)
}

func TestInitKeepsExistingLogger(t *testing.T) {
	existing := zap.NewNop()
	restore := Replace(existing)
	defer restore()

	require.NoError(t, InitFile(false, filepath.Join(t.TempDir(), "unused.log")))
	require.Same(t, existing, L())
}
