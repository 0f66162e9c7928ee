// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/model"
	"github.com/devblok/epona/utility/kar"
	"github.com/devblok/epona/watersim"
)

// loadMeshes reads the world meshes from a memory mapped kar archive.
// Entries are matched to the world by file name: crate, block
// and water. Anything missing falls back to the built in meshes.
func loadMeshes(cfg config.AssetsConfiguration, log logrus.FieldLogger) (watersim.Meshes, error) {
	var meshes watersim.Meshes
	if cfg.Archive == "" {
		log.Info("No asset archive, using built in meshes")
		return meshes, nil
	}

	r, err := mmap.Open(cfg.Archive)
	if err != nil {
		return meshes, errors.Wrapf(err, "mapping %s", cfg.Archive)
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return meshes, errors.Wrap(err, cfg.Archive)
	}

	names := cfg.Meshes
	if len(names) == 0 {
		names = archive.Names()
	}

	for _, name := range names {
		var dst *model.Mesh
		switch stem(name) {
		case "crate":
			dst = &meshes.Crate
		case "block":
			dst = &meshes.Block
		case "water":
			dst = &meshes.Water
		default:
			log.WithField("mesh", name).Debug("Mesh not used by the world")
			continue
		}

		data, err := archive.ReadAll(name)
		if err != nil {
			return meshes, err
		}
		if *dst, err = model.Load(name, data); err != nil {
			return meshes, err
		}
		log.WithFields(logrus.Fields{
			"mesh":     name,
			"vertices": len(dst.Vertices),
			"indices":  len(dst.Indices),
		}).Info("Mesh loaded")
	}
	return meshes, nil
}

func stem(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}
