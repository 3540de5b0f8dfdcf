package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "info", config.Logging.Level)

	assert.Equal(t, "https://portal.skandia.com.co/om.rentabilidades.pl/oldmutual", config.Portal.URL)
	assert.NotEmpty(t, config.Portal.FactSheetURL)
	assert.Equal(t, 2*time.Second, config.Portal.RequestDelay.Std())
	assert.Equal(t, 10, config.Portal.MaxHoldings)
	assert.Equal(t, 20*1024*1024, config.Portal.MaxDocumentSize)

	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 90*time.Second, config.Browser.NavigationTimeout.Std())
	assert.Equal(t, 1920, config.Browser.WindowWidth)

	require.NotEmpty(t, config.Analysis.Models)
	assert.Equal(t, "gemini-2.5-flash", config.Analysis.Models[0])
	assert.Equal(t, "2m", config.Analysis.Timeout)
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadFromFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skandia.toml")

	content := `
environment = "production"

[server]
port = 9090

[portal]
request_delay = "5s"

[quotes]
[quotes.symbols]
"Acciones Globales" = ["VT", "ACWI"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9090, config.Server.Port)
	// Fields not present in the file keep their defaults
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 5*time.Second, config.Portal.RequestDelay.Std())
	assert.Equal(t, []string{"VT", "ACWI"}, config.Quotes.Symbols["Acciones Globales"])
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nport = 9000\nhost = \"0.0.0.0\"\n"), 0644))

	local := filepath.Join(dir, "local.toml")
	require.NoError(t, os.WriteFile(local, []byte("[server]\nport = 9001\n"), 0644))

	config, err := LoadFromFiles(base, local)
	require.NoError(t, err)

	assert.Equal(t, 9001, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/skandia.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFiles_InvalidToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, err := LoadFromFiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SKANDIA_ENV", "production")
	t.Setenv("SKANDIA_SERVER_PORT", "3000")
	t.Setenv("SKANDIA_SERVER_HOST", "0.0.0.0")
	t.Setenv("SKANDIA_LOG_LEVEL", "debug")
	t.Setenv("SKANDIA_PORTAL_REQUEST_DELAY", "7s")
	t.Setenv("SKANDIA_BROWSER_HEADLESS", "false")
	t.Setenv("SKANDIA_ANALYSIS_TIMEOUT", "90s")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 7*time.Second, config.Portal.RequestDelay.Std())
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, 90*time.Second, config.AnalysisTimeout())
}

func TestApplyEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("SKANDIA_SERVER_PORT", "not-a-number")
	t.Setenv("SKANDIA_PORTAL_REQUEST_DELAY", "soon")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 2*time.Second, config.Portal.RequestDelay.Std())
}

func TestDurationDecodesFromTomlString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "durations.toml")

	content := `
[portal]
results_timeout = "45s"
download_timeout = "1m30s"

[browser]
navigation_timeout = "2m"
settle_delay = "500ms"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, config.Portal.ResultsTimeout.Std())
	assert.Equal(t, 90*time.Second, config.Portal.DownloadTimeout.Std())
	assert.Equal(t, 2*time.Minute, config.Browser.NavigationTimeout.Std())
	assert.Equal(t, 500*time.Millisecond, config.Browser.SettleDelay.Std())
}

func TestDurationRejectsInvalidString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-duration.toml")
	require.NoError(t, os.WriteFile(path, []byte("[portal]\nrequest_delay = \"soon\"\n"), 0644))

	_, err := LoadFromFiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestShippedExampleConfigParses(t *testing.T) {
	config, err := LoadFromFiles(filepath.Join("..", "..", "skandia.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://portal.skandia.com.co/om.rentabilidades.pl/oldmutual", config.Portal.URL)
	assert.Equal(t, 2*time.Second, config.Portal.RequestDelay.Std())
	assert.NotEmpty(t, config.Analysis.Models)
	assert.NotEmpty(t, config.Quotes.Symbols)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 4000, "127.0.0.1")
	assert.Equal(t, 4000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)

	// Zero values leave the config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 4000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestAnalysisTimeout(t *testing.T) {
	config := NewDefaultConfig()
	assert.Equal(t, 2*time.Minute, config.AnalysisTimeout())

	config.Analysis.Timeout = "45s"
	assert.Equal(t, 45*time.Second, config.AnalysisTimeout())

	config.Analysis.Timeout = "garbage"
	assert.Equal(t, 2*time.Minute, config.AnalysisTimeout())

	config.Analysis.Timeout = "-1m"
	assert.Equal(t, 2*time.Minute, config.AnalysisTimeout())
}

func TestIsProduction(t *testing.T) {
	config := NewDefaultConfig()
	assert.False(t, config.IsProduction())

	for _, env := range []string{"production", "prod", "Production"} {
		config.Environment = env
		assert.True(t, config.IsProduction(), env)
	}

	config.Environment = "staging"
	assert.False(t, config.IsProduction())
}
