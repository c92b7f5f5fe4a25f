// Package config is responsible for finding and parsing the user
// configuration and merging it with the defaults. The configuration file
// is a TOML document, normally stored in the project's user path. Every
// value may also be set with an environment variable which takes
// precedence over the file.
//
// Note that missing Spotify or enhance credentials are not an error at
// this level. Handlers report them to the user per request so that the
// process never refuses to start because of an incomplete configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// ConfigName is the name of the configuration file inside the user path.
const ConfigName = "config.toml"

// Environment variables which override their corresponding file values.
const (
	EnvListen        = "COVERLIFT_LISTEN"
	EnvClientID      = "SPOTIFY_CLIENT_ID"
	EnvClientSecret  = "SPOTIFY_CLIENT_SECRET"
	EnvEnhanceAPIKey = "ENHANCE_API_KEY"
	EnvEnhanceURL    = "ENHANCE_ENDPOINT"
)

// Config represents everything which could be set in the configuration file.
type Config struct {
	Listen         string `toml:"listen"`
	LogFile        string `toml:"log_file"`
	Gzip           bool   `toml:"gzip"`
	ReadTimeout    int    `toml:"read_timeout"`
	WriteTimeout   int    `toml:"write_timeout"`
	MaxHeadersSize int    `toml:"max_header_bytes"`

	Spotify SpotifyConfig `toml:"spotify"`
	Enhance EnhanceConfig `toml:"enhance"`

	// UserAgent is used when talking to the MusicBrainz API for the
	// fallback artwork search. The kind people there require one so that
	// they can throttle and filter out misbehaving applications.
	UserAgent string `toml:"user_agent"`
}

// SpotifyConfig holds the credentials for the Spotify Web API
// client-credentials exchange.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// EnhanceConfig holds the access parameters for the third-party image
// enhancement service.
type EnhanceConfig struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
}

// Default returns the configuration with which the server starts before any
// user values are applied on top of it.
func Default() Config {
	return Config{
		Listen:         ":8080",
		ReadTimeout:    15,
		WriteTimeout:   1200,
		MaxHeadersSize: 1048576,
		Gzip:           true,
		UserAgent:      "Coverlift (github.com/coverlift/coverlift)",
	}
}

// FindAndParse loads the configuration file cfgPath from appfs on top of the
// defaults and then applies the environment overrides. A missing file is not
// an error, the defaults plus the environment are used in that case.
func FindAndParse(appfs afero.Fs, cfgPath string) (Config, error) {
	cfg := Default()

	fh, err := appfs.Open(cfgPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("opening configuration `%s`: %w", cfgPath, err)
	}
	if err == nil {
		defer fh.Close()

		dec := toml.NewDecoder(fh)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parsing configuration `%s`: %w", cfgPath, err)
		}
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// applyEnvironment overrides configuration values with their environment
// variable counterparts when those are set.
func (cfg *Config) applyEnvironment() {
	envOverrides := []struct {
		env string
		val *string
	}{
		{EnvListen, &cfg.Listen},
		{EnvClientID, &cfg.Spotify.ClientID},
		{EnvClientSecret, &cfg.Spotify.ClientSecret},
		{EnvEnhanceAPIKey, &cfg.Enhance.APIKey},
		{EnvEnhanceURL, &cfg.Enhance.Endpoint},
	}

	for _, override := range envOverrides {
		if v, ok := os.LookupEnv(override.env); ok {
			*override.val = v
		}
	}
}
