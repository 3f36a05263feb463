package cmd_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/cmd/initorder/cmd"
	"github.com/GoCodeAlone/initorder/feeders"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := cmd.NewRootCommand()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	rootCmd := cmd.NewRootCommand()
	assert.Equal(t, "initorder", rootCmd.Use)

	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "milestone log")
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "serve")
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, cmd.PrintVersion(), "initorder v")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "initorder v")
}

func TestConfigDescribe(t *testing.T) {
	out, err := execute(t, "config", "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "apiUrl")
	assert.Contains(t, out, "https://api.example.com")
	assert.Contains(t, out, "load_data_delay")
	assert.Contains(t, out, "retain_route_effects")
}

func TestConfigSample_RoundTrips(t *testing.T) {
	for _, format := range []string{"yaml", "toml", "json"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config."+format)
			_, err := execute(t, "config", "sample", "--format", format, "--output", path)
			require.NoError(t, err)

			var feeder initorder.Feeder
			switch format {
			case "yaml":
				feeder = feeders.NewYamlFeeder(path)
			case "toml":
				feeder = feeders.NewTomlFeeder(path)
			default:
				feeder = feeders.NewJSONFeeder(path)
			}

			var loader configloader.LoaderConfig
			require.NoError(t, feeder.FeedKey(configloader.ModuleName, &loader))
			assert.Equal(t, "https://api.example.com", loader.APIURL)
			assert.Equal(t, time.Second, loader.FetchDelay)

			var fx effects.Config
			require.NoError(t, feeder.FeedKey(effects.ModuleName, &fx))
			assert.Equal(t, 500*time.Millisecond, fx.LoadDataDelay)
			assert.Equal(t, []string{effects.AppEffectsName}, fx.RootEffects)
		})
	}
}

func TestConfigSample_UnknownFormat(t *testing.T) {
	_, err := execute(t, "config", "sample", "--format", "ini")
	assert.ErrorIs(t, err, initorder.ErrUnsupportedFormatType)
}

func writeDemoConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "configloader:\n  apiUrl: http://127.0.0.1:1\n  fetchDelay: 5ms\neffects:\n  load_data_delay: 5ms\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDemoCommand_PrintsTimeline(t *testing.T) {
	out, err := execute(t, "demo", "--config", writeDemoConfig(t), "--timeout", "10s")
	require.NoError(t, err)

	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, configloader.MilestoneSource)
	assert.Contains(t, out, string(lifecycle.EventTypeEffectInitialized))
	assert.Contains(t, out, effects.UserEffectsName)
	assert.Contains(t, out, effects.ProductEffectsName)
}

func TestDemoCommand_JSON(t *testing.T) {
	out, err := execute(t, "demo", "--config", writeDemoConfig(t), "--json")
	require.NoError(t, err)

	var events []lifecycle.Event
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.NotEmpty(t, events)

	complete, firstEffect := -1, -1
	for i, event := range events {
		if complete < 0 && event.Type == lifecycle.EventTypeInitializerComplete {
			complete = i
		}
		if firstEffect < 0 && event.Type == lifecycle.EventTypeEffectInitialized {
			firstEffect = i
		}
	}
	require.GreaterOrEqual(t, complete, 0)
	require.GreaterOrEqual(t, firstEffect, 0)
	assert.Less(t, complete, firstEffect)
}

func TestDemoCommand_BadConfigExtension(t *testing.T) {
	_, err := execute(t, "demo", "--config", "config.ini")
	assert.Error(t, err)
}
