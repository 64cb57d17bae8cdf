package build

import (
	"cmp"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cssprite/css"
	"cssprite/utils/images"
)

// reference is a single background image usage found in a stylesheet.
type reference struct {
	rule      *css.Rule
	decl      int
	url       string // as written in the stylesheet
	path      string // absolute path of the image file
	group     string
	ratio     int
	important bool

	sheet *sheet // set when sheet is rendered
}

type groupKey struct {
	name  string
	ratio int
}

type group struct {
	key  groupKey
	refs []*reference
}

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// localImage returns file path part of url and group name from its
// fragment. Remote, inline and site absolute urls are not local.
func localImage(raw string) (path, fragment string, ok bool) {
	if raw == "" || schemePattern.MatchString(raw) || strings.HasPrefix(raw, "/") {
		return "", "", false
	}
	path, fragment, _ = strings.Cut(raw, "#")
	path, _, _ = strings.Cut(path, "?")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	if path == "" {
		return "", "", false
	}
	return path, fragment, true
}

// collect finds declarations to be replaced by sprites. Only
// "background-image" and "background" declarations having exactly one url
// are considered.
func collect(sheet *css.Stylesheet, dir string, retina, svg bool, exclude []*regexp.Regexp, log *zap.Logger) []*reference {
	var refs []*reference
	_ = sheet.Walk(func(r *css.Rule) error {
		for i, d := range r.Decls {
			if d.Property != "background" && d.Property != "background-image" {
				continue
			}
			raw, _, end, ok := css.ExtractURL(d.Value)
			if !ok {
				continue
			}
			if _, _, _, more := css.ExtractURL(d.Value[end:]); more {
				log.Debug("Skipping multiple backgrounds", zap.String("selector", r.Selector()))
				continue
			}
			if slices.ContainsFunc(exclude, func(re *regexp.Regexp) bool { return re.MatchString(raw) }) {
				log.Debug("Skipping excluded image", zap.String("url", raw))
				continue
			}
			rel, fragment, ok := localImage(raw)
			if !ok {
				log.Debug("Skipping non local image", zap.String("url", raw))
				continue
			}
			if !svg && strings.EqualFold(filepath.Ext(rel), ".svg") {
				log.Debug("Skipping svg image", zap.String("url", raw))
				continue
			}
			path := filepath.Join(dir, filepath.FromSlash(rel))
			if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
				log.Warn("Image not found, skipping", zap.String("url", raw), zap.String("path", path))
				continue
			}

			ref := &reference{
				rule:      r,
				decl:      i,
				url:       raw,
				path:      path,
				ratio:     1,
				important: d.Important,
			}
			if fragment != "" {
				ref.group = slug.Make(fragment)
			}
			if retina {
				ref.ratio = images.RetinaRatio(rel)
			}
			refs = append(refs, ref)
		}
		return nil
	})
	return refs
}

// groupRefs splits references by sheet they go to. Groups are ordered by
// name and ratio, references keep document order.
func groupRefs(refs []*reference) []*group {
	index := make(map[groupKey]*group)
	var groups []*group
	for _, r := range refs {
		k := groupKey{name: r.group, ratio: r.ratio}
		g, ok := index[k]
		if !ok {
			g = &group{key: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.refs = append(g.refs, r)
	}
	slices.SortFunc(groups, func(a, b *group) int {
		if c := cmp.Compare(a.key.name, b.key.name); c != 0 {
			return c
		}
		return cmp.Compare(a.key.ratio, b.key.ratio)
	})
	return groups
}
