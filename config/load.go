// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the configuration
const (
	EnvLogLevel       = "EPONA_LOG_LEVEL"
	EnvLogFormat      = "EPONA_LOG_FORMAT"
	EnvGPUType        = "EPONA_GPU_TYPE"
	EnvAllowAnyGPU    = "EPONA_ALLOW_ANY_GPU"
	EnvSelectFirstGPU = "EPONA_SELECT_FIRST_GPU"
	EnvRequirePresent = "EPONA_REQUIRE_PRESENT"
	EnvValidation     = "EPONA_VALIDATION"
	EnvFPS            = "EPONA_FPS"
	EnvShaderDir      = "EPONA_SHADER_DIR"
	EnvAssets         = "EPONA_ASSETS"
)

// Load builds the configuration from the defaults, the YAML file at
// path and the environment. path may be empty. envFiles are loaded
// into the environment first, variables already set win over them.
func Load(path string, envFiles ...string) (Configuration, error) {
	cfg := Default()

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return cfg, errors.Wrap(err, "loading env files")
		}
		envy.Reload()
	}

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading %s", path)
		}
		if err := Decode(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if err := ApplyEnvironment(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode unmarshals YAML on top of the values already in cfg
func Decode(data []byte, cfg *Configuration) error {
	return yaml.Unmarshal(data, cfg)
}

// ApplyEnvironment overrides cfg with the EPONA_* variables
func ApplyEnvironment(cfg *Configuration) error {
	if v := envy.Get(EnvLogLevel, ""); v != "" {
		cfg.Log.Level = v
	}
	if v := envy.Get(EnvLogFormat, ""); v != "" {
		cfg.Log.Format = v
	}
	if v := envy.Get(EnvGPUType, ""); v != "" {
		cfg.Device.PreferredType = v
	}
	if v := envy.Get(EnvShaderDir, ""); v != "" {
		cfg.Renderer.ShaderDirectory = v
	}
	if v := envy.Get(EnvAssets, ""); v != "" {
		cfg.Assets.Archive = v
	}

	for _, b := range []struct {
		key string
		dst *bool
	}{
		{EnvAllowAnyGPU, &cfg.Device.AllowAnyType},
		{EnvSelectFirstGPU, &cfg.Device.SelectFirst},
		{EnvRequirePresent, &cfg.Device.RequirePresent},
		{EnvValidation, &cfg.Instance.Validation},
	} {
		v := strings.TrimSpace(envy.Get(b.key, ""))
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, b.key)
		}
		*b.dst = parsed
	}

	if v := envy.Get(EnvFPS, ""); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, EnvFPS)
		}
		cfg.Time.FramesPerSecond = fps
	}
	return nil
}
