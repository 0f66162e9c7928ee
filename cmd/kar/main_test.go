// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/epona/utility/kar"
)

func TestCompressExtractList(t *testing.T) {
	c := qt.New(t)
	log, _ := test.NewNullLogger()

	src := c.TempDir()
	files := map[string]string{
		"crate.obj":        "v 0 0 0\n",
		"meshes/water.dae": "<COLLADA/>",
		"readme.txt":       "pool assets",
	}
	for name, data := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		c.Assert(os.MkdirAll(filepath.Dir(path), 0755), qt.IsNil)
		c.Assert(ioutil.WriteFile(path, []byte(data), 0644), qt.IsNil)
	}

	archive := filepath.Join(c.TempDir(), "assets.kar")
	header := kar.Header{Author: "tester", DateCreated: 0, Version: 3}
	c.Assert(compressFiles(src, archive, header, log), qt.IsNil)
	c.Assert(compressFiles(src, archive, header, log), qt.ErrorMatches, ".* exists, will not overwrite")

	var listing bytes.Buffer
	c.Assert(listFiles(archive, &listing), qt.IsNil)
	c.Assert(listing.String(), qt.Contains, "author: tester, version: 3, created: 1970-01-01T00:00:00Z")
	c.Assert(listing.String(), qt.Contains, "meshes/water.dae")

	out := c.TempDir()
	c.Assert(extractFiles(archive, out, log), qt.IsNil)
	for name, data := range files {
		got, err := ioutil.ReadFile(filepath.Join(out, filepath.FromSlash(name)))
		c.Assert(err, qt.IsNil)
		c.Assert(string(got), qt.Equals, data)
	}
}

func TestExtractPath(t *testing.T) {
	c := qt.New(t)
	dir := filepath.FromSlash("/tmp/out")

	p, err := extractPath(dir, "meshes/crate.obj")
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, filepath.Join(dir, "meshes", "crate.obj"))

	for _, bad := range []string{"../escape", "a/../../escape", ".."} {
		_, err := extractPath(dir, bad)
		c.Assert(err, qt.ErrorMatches, "refusing to extract .*", qt.Commentf(bad))
	}
}
