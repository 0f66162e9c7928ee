// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command kar creates, extracts and lists kar archives.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"

	"github.com/devblok/epona/utility/kar"
)

var currentUserName = userName()

func userName() string {
	if u, err := user.Current(); err == nil && u.Name != "" {
		return u.Name
	}
	return "unknown"
}

var (
	author   = flag.String("author", currentUserName, "Set the author of the package when compressing")
	version  = flag.Int64("version", 1, "Archive version number to create it with")
	compress = flag.String("c", "", "Compress the given folder")
	dstFile  = flag.String("f", "out.kar", "Destination file")
	extract  = flag.String("x", "", "Extract the given archive")
	outDir   = flag.String("o", ".", "Directory to extract into")
	list     = flag.String("l", "", "List the contents of the given archive")
	silent   = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()

	log := logrus.New()
	if *silent {
		log.SetLevel(logrus.WarnLevel)
	}

	ops := 0
	for _, op := range []string{*compress, *extract, *list} {
		if op != "" {
			ops++
		}
	}
	if ops > 1 {
		log.Fatal("only one operation at a time")
	}

	var err error
	switch {
	case *compress != "":
		err = compressFiles(*compress, *dstFile, kar.Header{
			Author:      *author,
			DateCreated: time.Now().Unix(),
			Version:     *version,
		}, log)
	case *extract != "":
		err = extractFiles(*extract, *outDir, log)
	case *list != "":
		err = listFiles(*list, os.Stdout)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		log.WithError(err).Fatal("kar failed")
	}
}

// compressFiles archives every regular file under src, names are
// slash separated paths relative to src
func compressFiles(src, dst string, header kar.Header, log logrus.FieldLogger) error {
	if _, err := os.Stat(dst); err == nil {
		return errors.Errorf("%s exists, will not overwrite", dst)
	}

	var files []string
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walking %s", src)
	}

	builder, err := kar.NewBuilder(header)
	if err != nil {
		return err
	}
	defer builder.Close()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for _, path := range files {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(path, name string) {
			defer wg.Done()
			if err := addFile(builder, path, name); err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			log.WithField("file", name).Info("Compressed")
		}(path, filepath.ToSlash(rel))
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	n, err := builder.WriteTo(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return err
	}
	log.WithFields(logrus.Fields{
		"archive": dst,
		"files":   builder.Len(),
		"bytes":   n,
	}).Info("Archive written")
	return nil
}

func addFile(b *kar.Builder, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(name, f)
}

// extractFiles writes every file of the archive under dir
func extractFiles(archivePath, dir string, log logrus.FieldLogger) error {
	r, err := mmap.Open(archivePath)
	if err != nil {
		return errors.Wrapf(err, "mapping %s", archivePath)
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return errors.Wrap(err, archivePath)
	}

	for _, name := range archive.Names() {
		dst, err := extractPath(dir, name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}

		src, err := archive.Open(name)
		if err != nil {
			return err
		}
		out, err := os.Create(dst)
		if err != nil {
			return err
		}
		_, err = io.Copy(out, src)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, "extracting %s", name)
		}
		log.WithField("file", dst).Info("Extracted")
	}
	return nil
}

// extractPath keeps archived names from escaping dir
func extractPath(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("refusing to extract %q outside of %s", name, dir)
	}
	return filepath.Join(dir, clean), nil
}

func listFiles(archivePath string, w io.Writer) error {
	r, err := mmap.Open(archivePath)
	if err != nil {
		return errors.Wrapf(err, "mapping %s", archivePath)
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return errors.Wrap(err, archivePath)
	}

	h := archive.Header()
	fmt.Fprintf(w, "author: %s, version: %d, created: %s\n", h.Author, h.Version, time.Unix(h.DateCreated, 0).UTC().Format(time.RFC3339))
	for _, e := range h.Index {
		fmt.Fprintf(w, "%10d %10d %s\n", e.Size, e.CompressedSize, e.Name)
	}
	return nil
}
