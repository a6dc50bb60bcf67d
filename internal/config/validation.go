package config

import (
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/hrefrewrite/internal/discovery"
	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
)

// Validate checks a defaulted configuration and returns a classified config error
// describing the first problem found.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{
		v.validatePaths,
		v.validatePipeline,
		v.validateDocuments,
		v.validateIgnore,
		v.validateWatch,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validatePaths() error {
	src, err := filepath.Abs(cv.config.Source)
	if err != nil {
		return errors.ConfigError("invalid source directory").WithCause(err).WithContext("source", cv.config.Source).Build()
	}
	out, err := filepath.Abs(cv.config.Output.Directory)
	if err != nil {
		return errors.ConfigError("invalid output directory").WithCause(err).WithContext("output", cv.config.Output.Directory).Build()
	}
	if src == out {
		return errors.ConfigError("output directory must differ from source directory").
			WithContext("source", src).
			Build()
	}
	if rel, err := filepath.Rel(out, src); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.ConfigError("source directory must not be inside the output directory").
			WithContext("source", src).
			WithContext("output", out).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validatePipeline() error {
	if NormalizeMode(string(cv.config.Mode)) == "" {
		return errors.ConfigError("invalid mode").WithContext("mode", cv.config.Mode).Build()
	}
	if NormalizeCollisionPolicy(string(cv.config.Collisions)) == "" {
		return errors.ConfigError("invalid collision policy").WithContext("collisions", cv.config.Collisions).Build()
	}
	return nil
}

func (cv *configurationValidator) validateDocuments() error {
	for _, ext := range cv.config.Documents.Extensions {
		if ext == "" || strings.ContainsAny(ext, "/.") {
			return errors.ConfigError("invalid document extension").WithContext("extension", ext).Build()
		}
	}
	for _, name := range cv.config.Documents.IndexNames {
		if name == "" || strings.Contains(name, "/") {
			return errors.ConfigError("invalid index name").WithContext("index_name", name).Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateIgnore() error {
	if err := discovery.ValidatePatterns(cv.config.Ignore); err != nil {
		return errors.ConfigError("invalid ignore pattern").WithCause(err).Build()
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	d, err := time.ParseDuration(cv.config.Watch.Debounce)
	if err != nil {
		return errors.ConfigError("invalid watch debounce").WithCause(err).WithContext("debounce", cv.config.Watch.Debounce).Build()
	}
	if d < 0 {
		return errors.ConfigError("watch debounce must not be negative").WithContext("debounce", cv.config.Watch.Debounce).Build()
	}
	return nil
}
