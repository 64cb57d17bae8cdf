package build

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// stylesheetPath returns where processed stylesheet goes. "rel" is the
// source path relative to the processed directory (or just base name when
// single file was requested), source directory structure is kept unless
// noDirs is set.
func stylesheetPath(rel, dst string, noDirs bool) string {
	if noDirs {
		return filepath.Join(dst, filepath.Base(rel))
	}
	return filepath.Join(dst, rel)
}

// sheetRoot is the directory all sheets go to.
func sheetRoot(sheetDir, dst string) string {
	if filepath.IsAbs(sheetDir) {
		return filepath.Clean(sheetDir)
	}
	return filepath.Join(dst, sheetDir)
}

// sheetDirFor returns directory for sheets of a particular stylesheet.
func sheetDirFor(root, rel string, noDirs bool) string {
	if noDirs {
		return root
	}
	return filepath.Join(root, filepath.Dir(rel))
}

// sheetURL returns how stylesheet refers to the sheet file: either
// base url followed by path under sheet root or path relative to the
// stylesheet itself.
func sheetURL(file, root, stylesheet, baseURL string) (string, error) {
	if baseURL != "" {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(baseURL, "/") + "/" + escapePath(filepath.ToSlash(rel)), nil
	}
	rel, err := filepath.Rel(filepath.Dir(stylesheet), file)
	if err != nil {
		return "", fmt.Errorf("unable to reference sheet %s from %s: %w", file, stylesheet, err)
	}
	return escapePath(path.Clean(filepath.ToSlash(rel))), nil
}

// escapePath percent-escapes every segment of slash separated path, so
// result could be used as unquoted url(...) token.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// prepareOutput makes sure file could be written: directory exists and
// existing file is only replaced when allowed.
func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Debug("Overwriting existing file", zap.String("file", name))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// within reports whether path is dir or inside of it.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
