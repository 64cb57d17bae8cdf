package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cssprite/cache"
	"cssprite/common"
	"cssprite/config"
	"cssprite/css"
	"cssprite/sprite"
	"cssprite/state"
)

// Builder turns stylesheets referencing individual images into stylesheets
// referencing sprite sheets.
type Builder struct {
	cfg       *config.SpritesConfig
	log       *zap.Logger
	rpt       *config.Report
	store     *cache.Store
	parser    *css.Parser
	exclude   []*regexp.Regexp
	buildID   uuid.UUID
	noDirs    bool
	overwrite bool

	mu      sync.Mutex
	written map[string]struct{}
	dumps   map[string]int
}

// Result describes a processed stylesheet.
type Result struct {
	Stylesheet string
	Manifest   string
	Sheets     []*sheet
	Replaced   int
}

// NewBuilder prepares builder using program environment. Store may be nil.
func NewBuilder(env *state.LocalEnv, store *cache.Store) (*Builder, error) {
	exclude, err := env.Cfg.Sprites.ExcludePatterns()
	if err != nil {
		return nil, err
	}
	return &Builder{
		cfg:       &env.Cfg.Sprites,
		log:       env.Log.Named("build"),
		rpt:       env.Rpt,
		store:     store,
		parser:    css.NewParser(env.Log),
		exclude:   exclude,
		buildID:   env.BuildID,
		noDirs:    env.NoDirs,
		overwrite: env.Overwrite,
		written:   make(map[string]struct{}),
		dumps:     make(map[string]int),
	}, nil
}

// Wrote reports whether file was produced by one of the builds.
func (b *Builder) Wrote(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.written[path]
	return ok
}

func (b *Builder) markWritten(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.written[path] = struct{}{}
}

// SheetRoot returns directory where sheets are put for destination dst.
func (b *Builder) SheetRoot(dst string) string {
	return sheetRoot(b.cfg.SheetDir, dst)
}

// Build processes single stylesheet. "src" is full path to the stylesheet,
// "rel" is its path relative to the processed directory (base name for
// single file) and "dst" is destination directory.
func (b *Builder) Build(ctx context.Context, src, rel, dst string) (*Result, error) {
	log := b.log.With(zap.String("stylesheet", rel))

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	if data, err = css.Decode(data); err != nil {
		return nil, err
	}
	ss := b.parser.Parse(data, rel)
	for _, w := range ss.Warnings {
		log.Warn("Stylesheet is malformed", zap.String("issue", w))
	}
	if cs := ss.Charset(); cs != "" && !css.IsUTF8(cs) {
		ss.SetCharset("UTF-8")
	}

	res := &Result{Stylesheet: stylesheetPath(rel, dst, b.noDirs)}
	if abs, err := filepath.Abs(src); err == nil && abs == res.Stylesheet {
		return nil, fmt.Errorf("output would replace source stylesheet: %s", src)
	}
	if err := prepareOutput(res.Stylesheet, b.overwrite, log); err != nil {
		return nil, err
	}
	// manifest is checked up front so refusal does not leave half of the output behind
	if b.cfg.Manifest != common.ManifestFormatNone {
		if err := prepareOutput(manifestPath(res.Stylesheet, b.cfg.Manifest), b.overwrite, log); err != nil {
			return nil, err
		}
	}

	refs := collect(ss, filepath.Dir(src), b.cfg.Retina, b.cfg.SVG, b.exclude, log)
	sources, err := b.load(ctx, refs, log)
	if err != nil {
		return nil, err
	}
	loaded := refs[:0]
	for _, r := range refs {
		if _, ok := sources[r.path]; ok {
			loaded = append(loaded, r)
		}
	}
	refs = loaded

	root := b.SheetRoot(dst)
	dir := sheetDirFor(root, rel, b.noDirs)
	name := slug.Make(strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel)))
	for _, g := range groupRefs(refs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, err := b.render(g, sources, name, dir, log)
		if err != nil {
			return nil, fmt.Errorf("unable to produce sheet: %w", err)
		}
		if sh.URL, err = sheetURL(sh.File, root, res.Stylesheet, b.cfg.BaseURL); err != nil {
			return nil, err
		}
		b.report(sh)
		res.Sheets = append(res.Sheets, sh)
	}

	res.Replaced = rewrite(refs)

	if err := b.writeStylesheet(ss, res.Stylesheet); err != nil {
		return nil, err
	}
	if res.Manifest, err = b.writeManifest(res, filepath.Dir(src)); err != nil {
		return nil, err
	}

	if err := b.rpt.StoreCopy("result-"+filepath.ToSlash(rel), res.Stylesheet); err != nil {
		log.Debug("Unable to store result in the report", zap.Error(err))
	}
	log.Info("Stylesheet processed",
		zap.String("to", res.Stylesheet), zap.Int("sheets", len(res.Sheets)), zap.Int("images", res.Replaced))
	return res, nil
}

// rewrite puts sprite declarations in place of original ones. References
// are handled from the last one so declaration indexes stay valid.
func rewrite(refs []*reference) int {
	count := 0
	for i := len(refs) - 1; i >= 0; i-- {
		r := refs[i]
		if r.sheet == nil {
			continue
		}
		p, ok := r.sheet.Layout.Find(r.path)
		if !ok {
			continue
		}
		geom := sprite.Compute(
			sprite.Sheet{Width: r.sheet.Layout.Width, Height: r.sheet.Layout.Height, URL: r.sheet.URL},
			sprite.Reference{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height},
		)
		list := geom.List()
		decls := make([]css.Declaration, 0, len(list))
		for _, d := range list {
			decls = append(decls, css.Declaration{Property: d.Property, Value: d.Value, Important: r.important})
		}

		orig := r.rule.Decls[r.decl]
		rest := ""
		if orig.Property == "background" {
			if _, start, end, ok := css.ExtractURL(orig.Value); ok {
				rest = strings.Join(strings.Fields(orig.Value[:start]+" "+orig.Value[end:]), " ")
			}
		}
		if rest == "" {
			r.rule.Replace(r.decl, decls...)
		} else {
			r.rule.Decls[r.decl].Value = rest
			r.rule.InsertAfter(r.decl, decls...)
		}
		count++
	}
	return count
}

func (b *Builder) writeStylesheet(ss *css.Stylesheet, name string) error {
	buf := new(bytes.Buffer)
	var err error
	if b.cfg.Minify {
		_, err = ss.WriteCompact(buf)
	} else {
		_, err = ss.WriteTo(buf)
	}
	if err != nil {
		return fmt.Errorf("unable to serialize stylesheet: %w", err)
	}
	if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	b.markWritten(name)
	return nil
}
