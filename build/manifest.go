package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"cssprite/common"
)

type manifestImage struct {
	Source string `json:"source" yaml:"source"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

type manifestSheet struct {
	File   string          `json:"file" yaml:"file"`
	URL    string          `json:"url" yaml:"url"`
	Group  string          `json:"group,omitempty" yaml:"group,omitempty"`
	Ratio  int             `json:"ratio" yaml:"ratio"`
	Width  int             `json:"width" yaml:"width"`
	Height int             `json:"height" yaml:"height"`
	Images []manifestImage `json:"images" yaml:"images"`
}

type manifest struct {
	BuildID    string          `json:"build_id" yaml:"build_id"`
	Stylesheet string          `json:"stylesheet" yaml:"stylesheet"`
	Sheets     []manifestSheet `json:"sheets" yaml:"sheets"`
}

// manifestPath returns manifest name next to the output stylesheet.
func manifestPath(stylesheet string, format common.ManifestFormat) string {
	return strings.TrimSuffix(stylesheet, filepath.Ext(stylesheet)) + format.Ext()
}

// writeManifest stores sheets description when requested. Paths are slash
// separated: sheet files relative to the manifest and images relative to
// the source stylesheet.
func (b *Builder) writeManifest(res *Result, srcDir string) (string, error) {
	if b.cfg.Manifest == common.ManifestFormatNone {
		return "", nil
	}
	name := manifestPath(res.Stylesheet, b.cfg.Manifest)

	m := manifest{
		BuildID:    b.buildID.String(),
		Stylesheet: filepath.Base(res.Stylesheet),
		Sheets:     make([]manifestSheet, 0, len(res.Sheets)),
	}
	for _, sh := range res.Sheets {
		file, err := filepath.Rel(filepath.Dir(name), sh.File)
		if err != nil {
			return "", err
		}
		ms := manifestSheet{
			File:   filepath.ToSlash(file),
			URL:    sh.URL,
			Group:  sh.Group,
			Ratio:  sh.Ratio,
			Width:  sh.Layout.Width,
			Height: sh.Layout.Height,
			Images: make([]manifestImage, 0, len(sh.Layout.Placements)),
		}
		for _, p := range sh.Layout.Placements {
			source := p.Key
			if rel, err := filepath.Rel(srcDir, p.Key); err == nil {
				source = rel
			}
			ms.Images = append(ms.Images, manifestImage{
				Source: filepath.ToSlash(source),
				X:      p.X,
				Y:      p.Y,
				Width:  p.Width,
				Height: p.Height,
			})
		}
		m.Sheets = append(m.Sheets, ms)
	}

	var (
		data []byte
		err  error
	)
	switch b.cfg.Manifest {
	case common.ManifestFormatJson:
		data, err = json.MarshalIndent(m, "", "  ")
	case common.ManifestFormatYaml:
		data, err = yaml.Marshal(m)
	default:
		err = fmt.Errorf("unsupported manifest format %s", b.cfg.Manifest)
	}
	if err != nil {
		return "", fmt.Errorf("unable to prepare manifest: %w", err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return "", fmt.Errorf("unable to write manifest: %w", err)
	}
	b.markWritten(name)
	return name, nil
}
