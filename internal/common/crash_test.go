package common

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	InstallCrashHandler(t.TempDir())

	path := WriteCrashFile("browser teardown panicked", GetStackTrace())
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	report := string(data)
	assert.Contains(t, report, "browser teardown panicked")
	assert.Contains(t, report, "all goroutines")
	assert.Contains(t, report, GetVersion())
	assert.True(t, strings.HasSuffix(path, ".log"))
}

func TestGetStackTrace(t *testing.T) {
	trace := GetStackTrace()
	assert.Contains(t, trace, "goroutine")
	assert.Contains(t, trace, "GetStackTrace")
}
