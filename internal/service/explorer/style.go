package explorer

import (
	"cartograph/internal/config"
	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

// Styler resolves node colors from kind, context flag and selection
type Styler struct {
	theme config.ThemeConfig
}

func NewStyler(theme config.ThemeConfig) Styler {
	return Styler{theme: theme}
}

// Fill applies pinned > included > excluded > folder > document
func (s Styler) Fill(kind docsystem.NodeKind, flag models.ContextFlag) string {
	switch flag {
	case models.ContextPinned:
		return s.theme.Fill.Pinned
	case models.ContextIncluded:
		return s.theme.Fill.Included
	case models.ContextExcluded:
		return s.theme.Fill.Excluded
	}
	if kind == docsystem.NodeKindFolder {
		return s.theme.Fill.Folder
	}
	return s.theme.Fill.Document
}

// Stroke applies focused > selected > default
func (s Styler) Stroke(selected, focused bool) (string, float64) {
	switch {
	case focused:
		return s.theme.Stroke.Focused, s.theme.StrokeWidth.Focused
	case selected:
		return s.theme.Stroke.Selected, s.theme.StrokeWidth.Selected
	default:
		return s.theme.Stroke.Default, s.theme.StrokeWidth.Default
	}
}

// MinimapFill colors overview dots: selected > folder > document
func (s Styler) MinimapFill(kind docsystem.NodeKind, selected bool) string {
	switch {
	case selected:
		return s.theme.Minimap.Selected
	case kind == docsystem.NodeKindFolder:
		return s.theme.Minimap.Folder
	default:
		return s.theme.Minimap.Document
	}
}
