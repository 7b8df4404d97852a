package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	require.NoError(t, level.Info(l).Log("msg", "hidden"))
	require.Empty(t, buf.String())

	require.NoError(t, level.Warn(l).Log("msg", "shown", "key", "a"))
	out := buf.String()
	require.Contains(t, out, "level=warn")
	require.Contains(t, out, "msg=shown")
	require.Contains(t, out, "key=a")
	require.Contains(t, out, "ts=")
	require.Contains(t, out, "caller=logger_test.go:")
}

func TestNew_DefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "bogus")

	require.NoError(t, level.Debug(l).Log("msg", "hidden"))
	require.Empty(t, buf.String())
	require.NoError(t, level.Info(l).Log("msg", "shown"))
	require.Contains(t, buf.String(), "level=info")
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kvcache.log")
	require.NoError(t, Init(path, "info"))
	t.Cleanup(func() { _ = Close() })

	Infof("started on %s", "127.0.0.1:0")
	Errorf("boom %d", 7)
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `msg="started on 127.0.0.1:0"`)
	require.Contains(t, string(data), `msg="boom 7"`)
	require.Contains(t, string(data), "level=error")
	require.Contains(t, string(data), "caller=logger_test.go:")
	require.NotContains(t, string(data), "caller=logger.go:")
}
