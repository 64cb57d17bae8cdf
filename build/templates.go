package build

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"cssprite/config"
)

// Values is a struct that holds variables we make available for sheet name
// template expansion.
type Values struct {
	Context string
	Name    string // stylesheet base name
	Group   string // group from url fragment, may be empty
	Ratio   int    // retina ratio, 1 for regular images
	Hash    string // short digest of sheet inputs
	Format  string
}

// SheetName expands name template. Result is cleaned to be usable as a file
// name.
func SheetName(field string, v Values) (string, error) {
	name := config.NameTemplateFieldName
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	v.Context = string(name)
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, v); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", name, err)
	}

	res := strings.TrimSpace(buf.String())
	if res == "" {
		return "", fmt.Errorf("template field %s expanded to empty name", name)
	}
	return config.CleanFileName(strings.ReplaceAll(res, "/", "_")), nil
}
