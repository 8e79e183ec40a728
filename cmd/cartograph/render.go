package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/explorer"
	"cartograph/internal/render"
	fileRepo "cartograph/internal/repository/file"
	serviceExplorer "cartograph/internal/service/explorer"
)

// settleAfter is far enough past any configured transition for every element to be settled
const settleAfter = time.Hour

type renderOptions struct {
	file       string
	configPath string
	out        string
	format     string
	level      int
	all        bool
	width      float64
	height     float64
	selected   []string
	focus      string
	included   []string
	pinned     []string
	excluded   []string
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Lay out a node file and write the settled frame as JSON, SVG or a text outline",
		Example: "  cartograph render --file data/demo.yaml --level 2 --format svg --out demo.svg\n" +
			"  cartograph render -f data/demo.yaml --select doc-1 --pin doc-2",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Node file (.yaml, .yml or .json)")
	f.StringVar(&opts.configPath, "config", "", "Explorer config override (YAML)")
	f.StringVarP(&opts.out, "out", "o", "", "Output path (default stdout)")
	f.StringVar(&opts.format, "format", "json", "Output format: json, svg or text")
	f.IntVarP(&opts.level, "level", "l", 1, "Expand folders down to this depth")
	f.BoolVar(&opts.all, "all", false, "Expand every folder")
	f.Float64Var(&opts.width, "width", 1280, "Viewport width in pixels")
	f.Float64Var(&opts.height, "height", 800, "Viewport height in pixels")
	f.StringSliceVar(&opts.selected, "select", nil, "Node IDs to select")
	f.StringVar(&opts.focus, "focus", "", "Node ID to focus (defaults to the last selected)")
	f.StringSliceVar(&opts.included, "include", nil, "Node IDs flagged as included in context")
	f.StringSliceVar(&opts.pinned, "pin", nil, "Node IDs flagged as pinned in context")
	f.StringSliceVar(&opts.excluded, "exclude", nil, "Node IDs flagged as excluded from context")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runRender(stdout io.Writer, opts renderOptions) error {
	switch opts.format {
	case "json", "svg", "text":
	default:
		return fmt.Errorf("unknown format %q (want json, svg or text)", opts.format)
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("viewport must be positive, got %gx%g", opts.width, opts.height)
	}

	coll, err := fileRepo.LoadFile(opts.file)
	if err != nil {
		return err
	}
	explorerCfg, err := loadExplorerConfig(opts.configPath)
	if err != nil {
		return err
	}

	pass := settledPass(coll, explorerCfg, opts)

	w := stdout
	if opts.out != "" {
		out, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		w = out
	}

	switch opts.format {
	case "svg":
		return render.NewSVGRenderer().Render(w, pass)
	case "text":
		return render.NewOutlineRenderer().Render(w, pass)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pass)
}

// settledPass wires an engine to throwaway collaborators, applies the requested
// state and samples once every transition has finished.
func settledPass(coll *fileRepo.Collection, cfg *config.ExplorerConfig, opts renderOptions) models.RenderPass {
	logger := cliLogger()
	size := models.Size{Width: opts.width, Height: opts.height}
	tree := serviceExplorer.NewTreeStore()
	ctxStore := serviceExplorer.NewContextStore()

	engine := serviceExplorer.NewEngine(cfg, size, serviceExplorer.Callbacks{}, logger)
	engine.Load(coll.Nodes)
	h := engine.Hierarchy()
	logger.Debug("hierarchy built",
		"nodes", h.Stats.Nodes,
		"orphans", h.Stats.Orphans,
		"duplicates", h.Stats.Duplicates,
		"cycles_broken", h.Stats.CyclesBroken,
	)

	if opts.all {
		tree.SetExpanded(h.ExpandAll())
	} else {
		tree.SetExpanded(h.ExpandToLevel(opts.level))
	}
	for _, id := range opts.selected {
		tree.Select(id, true)
		tree.Focus(id)
	}
	if opts.focus != "" {
		tree.Focus(opts.focus)
	}
	for _, id := range opts.included {
		ctxStore.Set(id, models.ContextIncluded)
	}
	for _, id := range opts.pinned {
		ctxStore.Set(id, models.ContextPinned)
	}
	for _, id := range opts.excluded {
		ctxStore.Set(id, models.ContextExcluded)
	}
	tree.Prune(h)

	now := time.Now()
	engine.Render(serviceExplorer.Snapshot{
		Nodes:     coll.Nodes,
		Expanded:  tree.Expanded(),
		Selection: tree.Selection(),
		Context:   ctxStore.Sets(),
		Viewport:  size,
	}, now)
	return engine.Sample(now.Add(settleAfter))
}
