package configutil

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// layers returns the files that make up the config at path, from lowest to
// highest priority: "<name>.<ext>" then "<name>.local.<ext>".
func layers(path string) []string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return []string{path, base + ".local" + ext}
}

// readLayer returns false when the file does not exist or is empty.
func readLayer[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	return true, json5.Unmarshal(contents, out)
}

// ReadConfig reads the json5 config at path and merges its local override
// on top of it, non-zero fields of the override win. It returns
// os.ErrNotExist when neither file exists.
func ReadConfig[T any](path string) (T, error) {
	var out T
	found := false

	for _, layer := range layers(path) {
		var current T
		ok, err := readLayer(layer, &current)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		err = mergo.Merge(&out, current, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("read config layer", "file", layer)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for name in the working directory and each of its
// parents, the nearest directory containing it wins.
func ReadRecursively[T any](name string) (T, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return empty, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return empty, os.ErrNotExist
		}
		current = parent
	}
}
