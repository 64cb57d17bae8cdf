package build

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cssprite/cache"
	"cssprite/common"
	"cssprite/packer"
	"cssprite/utils/debug"
	"cssprite/utils/images"
)

// defaultJPEGQuality is used for jpeg sheets when there is nothing to learn
// quality from.
const defaultJPEGQuality = 90

// sheet is a produced sprite sheet.
type sheet struct {
	Group   string
	Ratio   int
	File    string
	URL     string
	Digest  string
	Layout  *packer.Layout
	Cached  bool
	Sources map[string]*images.Source
}

// load decodes all referenced images in parallel. Images which could not be
// loaded are reported and left out of the result, only cancellation is an
// error.
func (b *Builder) load(ctx context.Context, refs []*reference, log *zap.Logger) (map[string]*images.Source, error) {
	paths := make([]string, 0, len(refs))
	for _, r := range refs {
		paths = append(paths, r.path)
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	var (
		mu      sync.Mutex
		errs    error
		sources = make(map[string]*images.Source, len(paths))
		opts    = images.LoadOptions{SVG: b.cfg.SVG}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers())
	for _, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := images.Load(p, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", p, err))
				return nil
			}
			sources[p] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range multierr.Errors(errs) {
		log.Warn("Unable to load image, skipping", zap.Error(err))
	}
	return sources, nil
}

// quality picks jpeg quality: configured one or the best among jpeg
// sources so sheet does not look worse than its parts.
func (b *Builder) quality(srcs map[string]*images.Source) int {
	if b.cfg.Format != common.SheetFormatJpeg {
		return 0
	}
	if b.cfg.JPEGQuality > 0 {
		return b.cfg.JPEGQuality
	}
	q := 0
	for _, s := range srcs {
		q = max(q, s.Quality)
	}
	if q == 0 {
		return defaultJPEGQuality
	}
	return q
}

// render produces sheet for a group of references, reusing cached sheet
// when its inputs did not change.
func (b *Builder) render(g *group, sources map[string]*images.Source, name, dir string, log *zap.Logger) (*sheet, error) {
	srcs := make(map[string]*images.Source)
	items := make([]packer.Item, 0, len(g.refs))
	for _, r := range g.refs {
		if _, ok := srcs[r.path]; ok {
			continue
		}
		s := sources[r.path]
		srcs[r.path] = s
		items = append(items, packer.Item{Key: r.path, Width: s.Width, Height: s.Height})
	}

	quality := b.quality(srcs)
	parts := []string{b.cfg.Layout.String(), strconv.Itoa(b.cfg.Padding), b.cfg.Format.String(), strconv.Itoa(quality)}
	keys := make([]string, 0, len(srcs))
	for k := range srcs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		parts = append(parts, k, srcs[k].Hash)
	}
	digest := cache.Digest(parts...)

	base, err := SheetName(b.cfg.NameTemplate, Values{
		Name:   name,
		Group:  g.key.name,
		Ratio:  g.key.ratio,
		Hash:   digest[:10],
		Format: b.cfg.Format.String(),
	})
	if err != nil {
		return nil, err
	}
	sh := &sheet{
		Group:   g.key.name,
		Ratio:   g.key.ratio,
		File:    filepath.Join(dir, base+b.cfg.Format.Ext()),
		Digest:  digest,
		Sources: srcs,
	}
	log = log.With(zap.String("sheet", sh.File))

	entry, hit, err := b.store.Lookup(sh.File, digest)
	if err != nil {
		log.Warn("Build cache is not available", zap.Error(err))
	}
	if hit {
		sh.Layout = packer.Restore(b.cfg.Layout, b.cfg.Padding, entry.Width, entry.Height, entry.Placements)
		sh.Cached = true
		log.Debug("Sheet is up to date")
	} else {
		if err := b.compose(sh, items, quality, log); err != nil {
			return nil, err
		}
		if err := b.store.Store(&cache.Entry{
			Name:       sh.File,
			Digest:     digest,
			Width:      sh.Layout.Width,
			Height:     sh.Layout.Height,
			File:       sh.File,
			Placements: sh.Layout.Placements,
		}); err != nil {
			log.Warn("Unable to update build cache", zap.Error(err))
		}
	}
	for _, r := range g.refs {
		r.sheet = sh
	}
	return sh, nil
}

func (b *Builder) compose(sh *sheet, items []packer.Item, quality int, log *zap.Logger) error {
	layout, err := packer.Pack(items, b.cfg.Layout, b.cfg.Padding)
	if err != nil {
		return err
	}
	imgs := make(map[string]image.Image, len(sh.Sources))
	for k, s := range sh.Sources {
		imgs[k] = s.Image
	}
	canvas, err := packer.Compose(layout, imgs)
	if err != nil {
		return err
	}
	data, err := images.Encode(canvas, b.cfg.Format, quality)
	if err != nil {
		return err
	}
	if err := prepareOutput(sh.File, b.overwrite || b.Wrote(sh.File), log); err != nil {
		return err
	}
	if err := os.WriteFile(sh.File, data, 0644); err != nil {
		return fmt.Errorf("unable to write sheet: %w", err)
	}
	b.markWritten(sh.File)
	sh.Layout = layout
	log.Debug("Sheet written", zap.Int("width", layout.Width), zap.Int("height", layout.Height), zap.Int("images", len(items)))
	return nil
}

// report puts sheet and its layout into the debug report.
func (b *Builder) report(sh *sheet) {
	if b.rpt == nil {
		return
	}
	name := filepath.Base(sh.File)
	if err := b.rpt.StoreCopy("sheets/"+name, sh.File); err != nil {
		b.log.Debug("Unable to store sheet in the report", zap.Error(err))
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "sheet %s", name)
	tw.Pairs(1, "file", sh.File, "url", sh.URL, "group", sh.Group, "ratio", sh.Ratio, "cached", sh.Cached)
	tw.TextBlock(1, "digest", sh.Digest)
	sh.Layout.Dump(tw, 1)

	b.mu.Lock()
	n := b.dumps[name]
	b.dumps[name] = n + 1
	b.mu.Unlock()
	if n > 0 {
		name = fmt.Sprintf("%s.%d", name, n)
	}
	b.rpt.StoreData("layouts/"+name+".txt", []byte(tw.String()))
}
