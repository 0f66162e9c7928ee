package model

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Load imports a mesh, the format is picked by the name's extension
func Load(name string, data []byte) (Mesh, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".dae":
		m, err := ImportCollada(data)
		return m, errors.Wrap(err, name)
	case ".obj":
		m, err := ImportObj(bytes.NewReader(data))
		return m, errors.Wrap(err, name)
	}
	return Mesh{}, errors.Errorf("%s: unsupported mesh format", name)
}
