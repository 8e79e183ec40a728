package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "cartograph/internal/domain/models/explorer"
	fileRepo "cartograph/internal/repository/file"
)

const demoNodes = `
owner: 00000000-0000-0000-0000-0000000000aa
nodes:
  - {id: root, name: Research, kind: folder, path: Research}
  - {id: sub, name: Papers, kind: folder, path: Research/Papers, parent_id: root}
  - {id: d1, name: intro.md, kind: document, path: Research/intro.md, parent_id: root}
  - {id: d2, name: deep.md, kind: document, path: Research/Papers/deep.md, parent_id: sub}
`

func writeDemo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(demoNodes), 0o644))
	return path
}

func baseRenderOptions(file string) renderOptions {
	return renderOptions{file: file, format: "json", level: 1, width: 1000, height: 600}
}

func TestRunRender_JSONLevelOne(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRender(&out, baseRenderOptions(writeDemo(t, "demo.yaml"))))

	var pass models.RenderPass
	require.NoError(t, json.Unmarshal(out.Bytes(), &pass))

	ids := make([]string, 0, len(pass.Nodes))
	for _, n := range pass.Nodes {
		ids = append(ids, n.ID)
		assert.Equal(t, models.PhaseSettled, n.Phase)
		assert.InDelta(t, 1.0, n.Opacity, 1e-9)
	}
	assert.ElementsMatch(t, []string{"root", "sub", "d1"}, ids, "sub stays collapsed at level 1")
	assert.False(t, pass.Animating)
	assert.NotNil(t, pass.Minimap)
}

func TestRunRender_AllWithContextFlags(t *testing.T) {
	opts := baseRenderOptions(writeDemo(t, "demo.yaml"))
	opts.all = true
	opts.pinned = []string{"d2"}
	opts.selected = []string{"d1"}

	var out bytes.Buffer
	require.NoError(t, runRender(&out, opts))

	var pass models.RenderPass
	require.NoError(t, json.Unmarshal(out.Bytes(), &pass))
	require.Len(t, pass.Nodes, 4)
	for _, n := range pass.Nodes {
		switch n.ID {
		case "d2":
			assert.Equal(t, models.ContextPinned, n.Flag)
		case "d1":
			assert.True(t, n.Selected)
			assert.True(t, n.Focused)
		}
	}
}

func TestRunRender_SVGToFile(t *testing.T) {
	opts := baseRenderOptions(writeDemo(t, "demo.yaml"))
	opts.format = "svg"
	opts.out = filepath.Join(t.TempDir(), "out.svg")

	var stdout bytes.Buffer
	require.NoError(t, runRender(&stdout, opts))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(opts.out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg ")
	assert.Contains(t, string(data), "Research")
}

func TestRunRender_TextOutline(t *testing.T) {
	opts := baseRenderOptions(writeDemo(t, "demo.yaml"))
	opts.format = "text"

	var out bytes.Buffer
	require.NoError(t, runRender(&out, opts))
	assert.Equal(t, "Research/\n├── Papers/ (+1)\n└── intro.md\n", out.String())
}

func TestRunRender_RejectsBadInput(t *testing.T) {
	opts := baseRenderOptions(writeDemo(t, "demo.yaml"))
	opts.format = "png"
	assert.Error(t, runRender(&bytes.Buffer{}, opts))

	opts = baseRenderOptions(writeDemo(t, "demo.yaml"))
	opts.width = 0
	assert.Error(t, runRender(&bytes.Buffer{}, opts))

	opts = baseRenderOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, runRender(&bytes.Buffer{}, opts))
}

func TestResolveProject(t *testing.T) {
	const projectID = "3f0c2a4e-7b1d-4c8e-9a55-0f6d2b7e1c90"
	path := writeDemo(t, projectID+".yaml")
	coll, err := fileRepo.LoadFile(path)
	require.NoError(t, err)

	p, err := resolveProject(seedOptions{file: path}, coll, "00000000-0000-0000-0000-000000000001")
	require.NoError(t, err)
	assert.Equal(t, projectID, p.ID)
	assert.Equal(t, "00000000-0000-0000-0000-0000000000aa", p.UserID, "file owner wins over the dev user")
	assert.Equal(t, projectID, p.Name)

	p, err = resolveProject(seedOptions{file: path, owner: "00000000-0000-0000-0000-0000000000bb", name: "Research"}, coll, "")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-0000000000bb", p.UserID)
	assert.Equal(t, "Research", p.Name)

	_, err = resolveProject(seedOptions{file: writeDemo(t, "demo.yaml")}, coll, "")
	assert.ErrorContains(t, err, "not a UUID")
}

func TestWriteCollection_ReadsBackAsNodeFile(t *testing.T) {
	coll, err := fileRepo.LoadFile(writeDemo(t, "demo.yaml"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeCollection(&out, "00000000-0000-0000-0000-0000000000cc", coll.Nodes))

	back, err := fileRepo.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-0000000000cc", back.Owner)
	require.Len(t, back.Nodes, len(coll.Nodes))
	assert.Equal(t, "sub", *back.Nodes[3].ParentID)
}
