package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed explorer.yaml
var defaultExplorerYAML []byte

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ExplorerConfig holds the tunables of the layout and rendering engine
type ExplorerConfig struct {
	Layout      LayoutConfig     `yaml:"layout"`
	Transitions TransitionConfig `yaml:"transitions"`
	Viewport    ViewportConfig   `yaml:"viewport"`
	Minimap     MinimapConfig    `yaml:"minimap"`
	Theme       ThemeConfig      `yaml:"theme"`
}

// LayoutConfig drives label-width-aware sibling separation
type LayoutConfig struct {
	PerCharWidth float64 `yaml:"per_char_width"`
	BasePadding  float64 `yaml:"base_padding"`
	SiblingGap   float64 `yaml:"sibling_gap"`
	LevelSpacing float64 `yaml:"level_spacing"`
}

// TransitionConfig holds animation durations in milliseconds
type TransitionConfig struct {
	EnterMS    int `yaml:"enter_ms"`
	UpdateMS   int `yaml:"update_ms"`
	ExitMS     int `yaml:"exit_ms"`
	RecenterMS int `yaml:"recenter_ms"`
}

func (t TransitionConfig) Enter() time.Duration    { return time.Duration(t.EnterMS) * time.Millisecond }
func (t TransitionConfig) Update() time.Duration   { return time.Duration(t.UpdateMS) * time.Millisecond }
func (t TransitionConfig) Exit() time.Duration     { return time.Duration(t.ExitMS) * time.Millisecond }
func (t TransitionConfig) Recenter() time.Duration { return time.Duration(t.RecenterMS) * time.Millisecond }

// ViewportConfig holds the initial placement and wheel zoom rate
type ViewportConfig struct {
	InitialOffsetX   float64 `yaml:"initial_offset_x"`
	WheelSensitivity float64 `yaml:"wheel_sensitivity"`
}

// MinimapConfig sizes the overview and decides when it is shown
type MinimapConfig struct {
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	Padding           float64 `yaml:"padding"`
	MinViewportWidth  float64 `yaml:"min_viewport_width"`
	MinViewportHeight float64 `yaml:"min_viewport_height"`
	DotRadius         float64 `yaml:"dot_radius"`
	DotHitRadius      float64 `yaml:"dot_hit_radius"`
}

// ThemeConfig holds node colors
type ThemeConfig struct {
	Fill        FillColors   `yaml:"fill"`
	Stroke      StrokeColors `yaml:"stroke"`
	StrokeWidth StrokeWidths `yaml:"stroke_width"`
	Minimap     MinimapColor `yaml:"minimap"`
}

type FillColors struct {
	Pinned   string `yaml:"pinned"`
	Included string `yaml:"included"`
	Excluded string `yaml:"excluded"`
	Folder   string `yaml:"folder"`
	Document string `yaml:"document"`
}

type StrokeColors struct {
	Focused  string `yaml:"focused"`
	Selected string `yaml:"selected"`
	Default  string `yaml:"default"`
}

type StrokeWidths struct {
	Focused  float64 `yaml:"focused"`
	Selected float64 `yaml:"selected"`
	Default  float64 `yaml:"default"`
}

type MinimapColor struct {
	Selected string `yaml:"selected"`
	Folder   string `yaml:"folder"`
	Document string `yaml:"document"`
}

// DefaultExplorerConfig returns the embedded defaults
func DefaultExplorerConfig() *ExplorerConfig {
	var cfg ExplorerConfig
	if err := yaml.Unmarshal(defaultExplorerYAML, &cfg); err != nil {
		// The embedded file is part of the binary; failing here is a build defect
		panic(fmt.Sprintf("embedded explorer.yaml: %v", err))
	}
	return &cfg
}

// LoadExplorerConfig overlays the YAML file at path (if any) on top of the defaults
func LoadExplorerConfig(path string) (*ExplorerConfig, error) {
	cfg := DefaultExplorerConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read explorer config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse explorer config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid explorer config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section
func (c *ExplorerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Layout),
		validation.Field(&c.Transitions),
		validation.Field(&c.Viewport),
		validation.Field(&c.Minimap),
		validation.Field(&c.Theme),
	)
}

func (l LayoutConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.PerCharWidth, validation.Required, validation.Min(0.0)),
		validation.Field(&l.BasePadding, validation.Min(0.0)),
		validation.Field(&l.SiblingGap, validation.Min(0.0)),
		validation.Field(&l.LevelSpacing, validation.Required, validation.Min(0.0)),
	)
}

func (t TransitionConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.EnterMS, validation.Min(0)),
		validation.Field(&t.UpdateMS, validation.Min(0)),
		validation.Field(&t.ExitMS, validation.Min(0)),
		validation.Field(&t.RecenterMS, validation.Min(0)),
	)
}

func (v ViewportConfig) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.WheelSensitivity, validation.Required, validation.Min(0.0)),
	)
}

func (m MinimapConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Width, validation.Required, validation.Min(0.0)),
		validation.Field(&m.Height, validation.Required, validation.Min(0.0)),
		validation.Field(&m.Padding, validation.Min(0.0), validation.Max(m.Width/2), validation.Max(m.Height/2)),
		validation.Field(&m.DotHitRadius, validation.Min(0.0)),
	)
}

func (t ThemeConfig) Validate() error {
	color := []validation.Rule{validation.Required, validation.Match(hexColor).Error("must be a #rrggbb color")}
	return validation.Errors{
		"fill.pinned":      validation.Validate(t.Fill.Pinned, color...),
		"fill.included":    validation.Validate(t.Fill.Included, color...),
		"fill.excluded":    validation.Validate(t.Fill.Excluded, color...),
		"fill.folder":      validation.Validate(t.Fill.Folder, color...),
		"fill.document":    validation.Validate(t.Fill.Document, color...),
		"stroke.focused":   validation.Validate(t.Stroke.Focused, color...),
		"stroke.selected":  validation.Validate(t.Stroke.Selected, color...),
		"stroke.default":   validation.Validate(t.Stroke.Default, color...),
		"minimap.selected": validation.Validate(t.Minimap.Selected, color...),
		"minimap.folder":   validation.Validate(t.Minimap.Folder, color...),
		"minimap.document": validation.Validate(t.Minimap.Document, color...),
	}.Filter()
}
