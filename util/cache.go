// util/cache.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"compress/flate"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// CacheDir returns the directory that cached objects live under. Tests
// replace it to keep their objects out of the user's cache.
var CacheDir = func() (string, error) {
	cd, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, "Drakula"), nil
}

func cachePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", errors.New(name + ": cache paths must be relative")
	}
	cd, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, name), nil
}

// CacheStoreObject saves obj under name in the cache directory as
// deflate-compressed msgpack. An existing object is only replaced once the
// new one has been written completely.
func CacheStoreObject(name string, obj any) error {
	path, err := cachePath(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	err = encodeCompressed(f, obj)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

func encodeCompressed(w io.Writer, obj any) error {
	fw, err := flate.NewWriter(w, flate.BestSpeed)
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(fw).Encode(obj); err != nil {
		return err
	}
	return fw.Close()
}

// CacheRetrieveObject decodes the object stored under name into obj and
// returns when it was stored, so that callers can check it against the
// data it was derived from.
func CacheRetrieveObject(name string, obj any) (time.Time, error) {
	path, err := cachePath(name)
	if err != nil {
		return time.Time{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	fr := flate.NewReader(f)
	defer fr.Close()
	if err := msgpack.NewDecoder(fr).Decode(obj); err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
