// Package render turns sampled render passes into static documents.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"text/template"

	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

const (
	NodeRadius  = 6.0
	LabelOffset = 10.0
	LinkColor   = "#cbd5e1"
	Background  = "#ffffff"
)

// SVGRenderer draws one render pass as a standalone SVG document
type SVGRenderer struct {
	tmpl *template.Template
}

// NewSVGRenderer parses the document template once
func NewSVGRenderer() *SVGRenderer {
	funcs := template.FuncMap{
		"num":    formatNum,
		"labelX": labelX,
		"anchor": anchor,
		"opaque": func(o float64) bool { return o >= 1 },
		"radius": func() string { return formatNum(NodeRadius) },
	}
	return &SVGRenderer{tmpl: template.Must(template.New("svg").Funcs(funcs).Parse(svgTemplate))}
}

type svgData struct {
	Pass       models.RenderPass
	Background string
	LinkColor  string
	// Minimap placement in screen coordinates (bottom-right corner)
	MinimapX, MinimapY float64
}

// Render writes pass to w. An empty pass produces an empty canvas.
func (r *SVGRenderer) Render(w io.Writer, pass models.RenderPass) error {
	data := svgData{Pass: pass, Background: Background, LinkColor: LinkColor}
	if mm := pass.Minimap; mm != nil {
		data.MinimapX = pass.Viewport.Width - mm.Width - 10
		data.MinimapY = pass.Viewport.Height - mm.Height - 10
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// RenderBytes is Render into a buffer
func (r *SVGRenderer) RenderBytes(pass models.RenderPass) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, pass); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Folders label to the left of the dot, documents to the right
func labelX(kind docsystem.NodeKind) string {
	if kind == docsystem.NodeKindFolder {
		return formatNum(-LabelOffset)
	}
	return formatNum(LabelOffset)
}

func anchor(kind docsystem.NodeKind) string {
	if kind == docsystem.NodeKindFolder {
		return "end"
	}
	return "start"
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Pass.Viewport.Width}}" height="{{num .Pass.Viewport.Height}}" viewBox="0 0 {{num .Pass.Viewport.Width}} {{num .Pass.Viewport.Height}}">
<rect width="100%" height="100%" fill="{{.Background}}"/>
{{- if not .Pass.Empty}}
<g class="content" transform="translate({{num .Pass.Transform.TranslateX}},{{num .Pass.Transform.TranslateY}}) scale({{num .Pass.Transform.Scale}})">
<g class="links" fill="none" stroke="{{.LinkColor}}" stroke-width="1.5">
{{- range .Pass.Links}}
<path data-id="{{html .ID}}" d="{{.Path}}"{{if not (opaque .Opacity)}} opacity="{{num .Opacity}}"{{end}}/>
{{- end}}
</g>
<g class="nodes" font-family="sans-serif" font-size="12">
{{- range .Pass.Nodes}}
<g class="node {{.Kind}}" data-id="{{html .ID}}" transform="translate({{num .X}},{{num .Y}})"{{if not (opaque .Opacity)}} opacity="{{num .Opacity}}"{{end}}>
<circle r="{{radius}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}"/>
<text x="{{labelX .Kind}}" dy="0.32em" text-anchor="{{anchor .Kind}}">{{html .Name}}{{if .HiddenCount}} ({{.HiddenCount}}){{end}}</text>
</g>
{{- end}}
</g>
</g>
{{- with .Pass.Minimap}}
<g class="minimap" transform="translate({{num $.MinimapX}},{{num $.MinimapY}})">
<rect width="{{num .Width}}" height="{{num .Height}}" fill="#f8fafc" stroke="#94a3b8"/>
{{- range .Dots}}
<circle cx="{{num .X}}" cy="{{num .Y}}" r="2" fill="{{.Fill}}"/>
{{- end}}
<rect class="viewport" x="{{num .Viewport.X}}" y="{{num .Viewport.Y}}" width="{{num .Viewport.Width}}" height="{{num .Viewport.Height}}" fill="none" stroke="#1d4ed8"/>
</g>
{{- end}}
{{- end}}
</svg>
`
