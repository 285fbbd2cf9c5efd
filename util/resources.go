// util/resources.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Unfortunately, unlike io.ReadCloser, the zstd Decoder's Close() method
// doesn't return an error, so we need to make our own custom ReadCloser
// interface.
type ResourceReadCloser interface {
	io.Reader
	Close()
}

type fileReadCloser struct {
	*os.File
}

func (f fileReadCloser) Close() { f.File.Close() }

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Close() {
	z.Decoder.Close()
	z.f.Close()
}

// OpenResource opens the given data file; if it's zstd compressed (has a
// .zst extension), the returned reader handles decompression
// transparently.
func OpenResource(path string) (ResourceReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
		if err != nil {
			f.Close()
			return nil, err
		}
		return zstdReadCloser{Decoder: zr, f: f}, nil
	}

	return fileReadCloser{f}, nil
}

// ResourceExists returns true if the specified file exists.
func ResourceExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
