package feeders

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaderConfig struct {
	APIURL      string        `yaml:"apiUrl" toml:"apiUrl" json:"apiUrl" env:"API_URL"`
	Environment string        `yaml:"environment" toml:"environment" json:"environment" env:"ENVIRONMENT"`
	FetchDelay  time.Duration `yaml:"fetchDelay" toml:"fetchDelay" json:"fetchDelay" env:"FETCH_DELAY"`
	Retain      bool          `yaml:"retain" toml:"retain" json:"retain" env:"RETAIN"`
	Port        int           `yaml:"port" toml:"port" json:"port" env:"PORT"`
	Tags        []string      `yaml:"tags" toml:"tags" json:"tags" env:"TAGS"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestYamlFeeder_FeedKey(t *testing.T) {
	path := writeFile(t, "config.yaml", `
configloader:
  apiUrl: https://yaml.example.com
  fetchDelay: 250ms
  port: 8081
  tags: [a, b]
other:
  apiUrl: ignored
`)
	cfg := loaderConfig{Environment: "development"}
	require.NoError(t, NewYamlFeeder(path).FeedKey("configloader", &cfg))

	assert.Equal(t, "https://yaml.example.com", cfg.APIURL)
	assert.Equal(t, "development", cfg.Environment, "absent keys keep their prior value")
	assert.Equal(t, 250*time.Millisecond, cfg.FetchDelay)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)

	var missing loaderConfig
	require.NoError(t, NewYamlFeeder(path).FeedKey("nope", &missing))
	assert.Empty(t, missing.APIURL)
}

func TestYamlFeeder_MissingFile(t *testing.T) {
	var cfg loaderConfig
	err := NewYamlFeeder(filepath.Join(t.TempDir(), "absent.yaml")).FeedKey("configloader", &cfg)
	assert.ErrorIs(t, err, ErrFileRead)
}

func TestTomlFeeder_FeedKey(t *testing.T) {
	path := writeFile(t, "config.toml", `
[configloader]
apiUrl = "https://toml.example.com"
environment = "production"
fetchDelay = "2s"
retain = true
`)
	var cfg loaderConfig
	require.NoError(t, NewTomlFeeder(path).FeedKey("configloader", &cfg))

	assert.Equal(t, "https://toml.example.com", cfg.APIURL)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 2*time.Second, cfg.FetchDelay)
	assert.True(t, cfg.Retain)
}

func TestJSONFeeder_FeedKey(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "configloader": {
    "apiUrl": "https://json.example.com",
    "fetchDelay": "10ms",
    "port": 9000,
    "retain": true,
    "tags": ["x", "y"]
  }
}`)
	cfg := loaderConfig{Environment: "development"}
	require.NoError(t, NewJSONFeeder(path).FeedKey("configloader", &cfg))

	assert.Equal(t, "https://json.example.com", cfg.APIURL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10*time.Millisecond, cfg.FetchDelay)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Retain)
	assert.Equal(t, []string{"x", "y"}, cfg.Tags)
}

func TestJSONFeeder_Errors(t *testing.T) {
	path := writeFile(t, "bad.json", `{"configloader": {`)
	var cfg loaderConfig
	assert.ErrorIs(t, NewJSONFeeder(path).FeedKey("configloader", &cfg), ErrInvalidJSON)

	path = writeFile(t, "conv.json", `{"configloader": {"port": "eighty"}}`)
	assert.ErrorIs(t, NewJSONFeeder(path).FeedKey("configloader", &cfg), ErrTypeConversion)

	path = writeFile(t, "ok.json", `{"configloader": {}}`)
	assert.ErrorIs(t, NewJSONFeeder(path).FeedKey("configloader", cfg), ErrTargetNotStructPointer)
}

func TestEnvFeeder_FeedKey(t *testing.T) {
	t.Setenv("INITORDER_CONFIGLOADER_API_URL", "https://env.example.com")
	t.Setenv("INITORDER_CONFIGLOADER_FETCH_DELAY", "1.5s")
	t.Setenv("INITORDER_CONFIGLOADER_RETAIN", "true")
	t.Setenv("INITORDER_CONFIGLOADER_PORT", "7000")
	t.Setenv("INITORDER_CONFIGLOADER_TAGS", "one, two")

	cfg := loaderConfig{Environment: "development"}
	require.NoError(t, NewEnvFeeder("initorder").FeedKey("configloader", &cfg))

	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchDelay)
	assert.True(t, cfg.Retain)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, []string{"one", "two"}, cfg.Tags)
}

func TestEnvFeeder_BadValue(t *testing.T) {
	t.Setenv("INITORDER_CONFIGLOADER_FETCH_DELAY", "soon")
	var cfg loaderConfig
	err := NewEnvFeeder("INITORDER").FeedKey("configloader", &cfg)
	assert.ErrorIs(t, err, ErrTypeConversion)
}
