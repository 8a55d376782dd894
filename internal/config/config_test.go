// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/evidence-locator/internal/config"
	"github.com/gemaraproj/evidence-locator/internal/display"
)

const sampleConfig = `title_field: myTitle
body_field: highlight.text[0]
use_passages: false
passage_length: 5000
result_link_field: url.value
empty_result_text: Nothing here
component_settings:
  fields_shown:
    title:
      field: settings_title
    body:
      field: text
      use_passage: true
  results_per_page: 10
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "myTitle", cfg.TitleField)
	assert.Equal(t, "highlight.text[0]", cfg.BodyField)
	require.NotNil(t, cfg.UsePassages)
	assert.False(t, *cfg.UsePassages)
	require.NotNil(t, cfg.PassageLength)
	assert.Equal(t, 2000, display.PassageLength(cfg.PassageLength))
	assert.Equal(t, "settings_title", cfg.ComponentSettings.FieldsShown.Title.Field)
	assert.Equal(t, 10, cfg.ComponentSettings.ResultsPerPage)

	s := cfg.Settings()
	assert.Equal(t, "myTitle", s.TitleField, "explicit option wins over component settings")
	assert.False(t, *s.UsePassages)
	assert.Equal(t, "url.value", s.LinkField)
	assert.Equal(t, "Nothing here", s.EmptyText)
}

func TestParse_ComponentDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte("component_settings:\n  fields_shown:\n    title:\n      field: settings_title\n"))
	require.NoError(t, err)
	s := cfg.Settings()
	assert.Equal(t, "settings_title", s.TitleField)
	assert.Nil(t, s.UsePassages)
	assert.Equal(t, display.DefaultEmptyResultText, s.EmptyText)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, config.Config{}, cfg)
}

func TestParse_JSON(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"title_field": "name", "use_passages": true}`))
	require.NoError(t, err)
	assert.Equal(t, "name", cfg.TitleField)
	assert.True(t, *cfg.UsePassages)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "title_feild: myTitle\n"},
		{name: "wrong type", content: "use_passages: sometimes\n"},
		{name: "non positive page size", content: "component_settings:\n  results_per_page: 0\n"},
		{name: "malformed yaml", content: "title_field: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "display.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myTitle", cfg.TitleField)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
