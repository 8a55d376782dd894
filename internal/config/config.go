// SPDX-License-Identifier: Apache-2.0

// Package config loads the display configuration file.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"

	"github.com/gemaraproj/evidence-locator/internal/display"
)

//go:embed schema.cue
var schemaSource string

// Config is the on-disk display configuration.
type Config struct {
	TitleField            string                    `yaml:"title_field"`
	BodyField             string                    `yaml:"body_field"`
	UsePassages           *bool                     `yaml:"use_passages"`
	PassageLength         *int                      `yaml:"passage_length"`
	ResultLinkField       string                    `yaml:"result_link_field"`
	DangerouslyRenderHTML bool                      `yaml:"dangerously_render_html"`
	EmptyResultText       string                    `yaml:"empty_result_text"`
	ShowTablesOnly        bool                      `yaml:"show_tables_only"`
	ComponentSettings     display.ComponentSettings `yaml:"component_settings"`
}

// Load reads and validates the configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML (or JSON) configuration against the schema and
// decodes it. Empty input yields the zero Config.
func Parse(data []byte) (Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Config{}, nil
	}
	if err := validate(data); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func validate(data []byte) error {
	asJSON, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to convert config to JSON: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	value := ctx.CompileBytes(asJSON, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to compile config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Options converts the file settings to render options.
func (c Config) Options() display.Options {
	return display.Options{
		TitleField:            c.TitleField,
		BodyField:             c.BodyField,
		UsePassages:           c.UsePassages,
		PassageLength:         c.PassageLength,
		ResultLinkField:       c.ResultLinkField,
		DangerouslyRenderHTML: c.DangerouslyRenderHTML,
		EmptyResultText:       c.EmptyResultText,
		TablesOnly:            c.ShowTablesOnly,
	}
}

// Settings resolves the display settings described by the file.
func (c Config) Settings() display.Settings {
	return display.SelectSettings(c.Options(), c.ComponentSettings)
}
