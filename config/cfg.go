package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"cssprite/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	SpritesConfig struct {
		SheetDir     string                `yaml:"sheet_dir" validate:"required"`
		NameTemplate string                `yaml:"name_template" validate:"required"`
		BaseURL      string                `yaml:"base_url"`
		Layout       common.Layout         `yaml:"layout" validate:"gte=0"`
		Padding      int                   `yaml:"padding" validate:"gte=0,lte=1024"`
		Retina       bool                  `yaml:"retina"`
		Format       common.SheetFormat    `yaml:"format" validate:"gte=0"`
		JPEGQuality  int                   `yaml:"jpeg_quality" validate:"omitempty,min=40,max=100"`
		SVG          bool                  `yaml:"svg"`
		Exclude      []string              `yaml:"exclude" validate:"dive,required"`
		Concurrency  int                   `yaml:"concurrency" validate:"gte=0"`
		Manifest     common.ManifestFormat `yaml:"manifest" validate:"gte=0"`
		Minify       bool                  `yaml:"minify"`
		CachePath    string                `yaml:"cache,omitempty" validate:"omitempty,filepath"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Sprites   SpritesConfig  `yaml:"sprites"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	NameTemplateFieldName TemplateFieldName = "name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(NameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !process {
		return cfg, nil
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}
	if _, err := cfg.Sprites.ExcludePatterns(); err != nil {
		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}
	if len(cfg.Sprites.CachePath) > 0 {
		cfg.Sprites.CachePath = filepath.Clean(cfg.Sprites.CachePath)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// ExcludePatterns compiles configured exclusion expressions.
func (conf *SpritesConfig) ExcludePatterns() ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(conf.Exclude))
	for _, expr := range conf.Exclude {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", expr, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// Workers returns number of concurrent workers to use, 0 means one per CPU.
func (conf *SpritesConfig) Workers() int {
	if conf.Concurrency <= 0 {
		return runtime.NumCPU()
	}
	return conf.Concurrency
}
