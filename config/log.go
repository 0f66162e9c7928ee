// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger writing to stderr
func NewLogger(cfg LogConfiguration) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = os.Stderr

	if cfg.Level != "" {
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrap(err, "log.level")
		}
		log.SetLevel(level)
	}

	switch cfg.Format {
	case "", "text":
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, errors.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return log, nil
}
