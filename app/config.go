package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/feeders"
	"github.com/GoCodeAlone/initorder/modules/chimux"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/httpclient"
	"github.com/GoCodeAlone/initorder/modules/httpserver"
	"github.com/GoCodeAlone/initorder/modules/router"
)

// ErrUnknownConfigFormat is returned by FeedersFor for an unrecognised
// file extension.
var ErrUnknownConfigFormat = errors.New("unknown config file format")

// ConfigSections returns a zero config struct for every section the
// application registers, keyed by section name.
func ConfigSections() map[string]any {
	return map[string]any{
		configloader.ModuleName: &configloader.LoaderConfig{},
		httpclient.ModuleName:   &httpclient.Config{},
		effects.ModuleName:      &effects.Config{},
		router.ModuleName:       &router.Config{},
		chimux.ModuleName:       &chimux.ChiMuxConfig{},
		httpserver.ModuleName:   &httpserver.HTTPServerConfig{},
	}
}

// FeedersFor returns the feeders for an optional config file followed by
// the environment feeder, so environment variables win over the file.
func FeedersFor(path string) ([]initorder.Feeder, error) {
	var out []initorder.Feeder
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			out = append(out, feeders.NewYamlFeeder(path))
		case ".toml":
			out = append(out, feeders.NewTomlFeeder(path))
		case ".json":
			out = append(out, feeders.NewJSONFeeder(path))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
		}
	}
	return append(out, initorder.DefaultConfigFeeders()...), nil
}
