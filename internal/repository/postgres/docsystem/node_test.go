package docsystem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "cartograph/internal/domain/models/docsystem"
)

func strPtr(s string) *string { return &s }

func TestToNodes_FoldersBeforeChildrenWithPaths(t *testing.T) {
	updated := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	folders := []models.FolderRow{
		{ID: "f-villains", ParentID: strPtr("f-chars"), Name: "Villains", UpdatedAt: updated},
		{ID: "f-chars", Name: "Characters", UpdatedAt: updated},
		{ID: "f-world", Name: "World"},
	}
	docs := []models.DocumentRow{
		{ID: "d-shadow", FolderID: strPtr("f-villains"), Name: "The Shadow", Preview: "A figure", ByteSize: 8, Tags: []string{"npc"}},
		{ID: "d-notes", Name: "Quick Notes"},
	}

	nodes := toNodes(folders, docs)
	require.Len(t, nodes, 5)

	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"f-chars", "f-world", "f-villains", "d-shadow", "d-notes"}, ids)

	assert.Equal(t, "Characters/Villains", nodes[2].Path)
	assert.Equal(t, models.NodeKindFolder, nodes[2].Kind)
	assert.Equal(t, updated, nodes[2].Metadata.LastModified)

	shadow := nodes[3]
	assert.Equal(t, "Characters/Villains/The Shadow", shadow.Path)
	assert.Equal(t, models.NodeKindDocument, shadow.Kind)
	require.NotNil(t, shadow.Content)
	assert.Equal(t, "A figure", shadow.Content.Preview)
	assert.Equal(t, []string{"npc"}, shadow.Metadata.Tags)

	notes := nodes[4]
	assert.Equal(t, "Quick Notes", notes.Path)
	assert.Nil(t, notes.Content)
	assert.Nil(t, notes.ParentID)
	assert.Equal(t, []string{}, notes.Metadata.Tags)
}

func TestToNodes_CyclicFoldersStillEmitted(t *testing.T) {
	folders := []models.FolderRow{
		{ID: "a", ParentID: strPtr("b"), Name: "A"},
		{ID: "b", ParentID: strPtr("a"), Name: "B"},
	}

	nodes := toNodes(folders, nil)
	require.Len(t, nodes, 2)
	assert.Equal(t, "B/A", nodes[0].Path)
	assert.Equal(t, "A/B", nodes[1].Path)
}

func TestToNodes_DocumentInMissingFolderKeepsParent(t *testing.T) {
	docs := []models.DocumentRow{{ID: "d", FolderID: strPtr("gone"), Name: "Loose"}}

	nodes := toNodes(nil, docs)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Loose", nodes[0].Path)
	require.NotNil(t, nodes[0].ParentID)
	assert.Equal(t, "gone", *nodes[0].ParentID)
}

func TestStorageID(t *testing.T) {
	const project = "2b0c2a52-8f0e-4d59-9a3e-5f7c1e9a0b11"
	existing := "9d6b2f7e-3c1a-4e55-8f00-1a2b3c4d5e6f"

	assert.Equal(t, existing, StorageID(project, existing))
	assert.Equal(t, StorageID(project, "chapters"), StorageID(project, "chapters"))
	assert.NotEqual(t, StorageID(project, "chapters"), StorageID("other", "chapters"))
}

func TestPlanRows(t *testing.T) {
	const project = "p"
	nodes := []models.DocumentNode{
		{ID: "child", Name: "Child", Kind: models.NodeKindFolder, ParentID: strPtr("parent")},
		{ID: "parent", Name: "Parent", Kind: models.NodeKindFolder},
		{ID: "loop-a", Name: "Loop A", Kind: models.NodeKindFolder, ParentID: strPtr("loop-b")},
		{ID: "loop-b", Name: "Loop B", Kind: models.NodeKindFolder, ParentID: strPtr("loop-a")},
		{ID: "doc", Name: "Doc", Kind: models.NodeKindDocument, ParentID: strPtr("child"), Content: &models.DocumentContent{Preview: "hello"}},
		{ID: "under-doc", Name: "Under Doc", Kind: models.NodeKindDocument, ParentID: strPtr("doc")},
		{ID: "doc", Name: "Duplicate", Kind: models.NodeKindDocument},
	}

	folders, docs := planRows(project, nodes)

	require.Len(t, folders, 4)
	position := make(map[string]int)
	for i, f := range folders {
		position[f.Name] = i
	}
	assert.Less(t, position["Parent"], position["Child"])
	require.NotNil(t, folders[position["Child"]].ParentID)
	assert.Equal(t, StorageID(project, "parent"), *folders[position["Child"]].ParentID)

	// exactly one folder of the cycle is detached
	detached := 0
	for _, name := range []string{"Loop A", "Loop B"} {
		if folders[position[name]].ParentID == nil {
			detached++
		}
	}
	assert.Equal(t, 1, detached)

	require.Len(t, docs, 2)
	assert.Equal(t, "Doc", docs[0].Name)
	assert.Equal(t, "hello", docs[0].Preview)
	assert.Equal(t, "markdown", docs[0].DocumentType)
	require.NotNil(t, docs[0].FolderID)
	assert.Equal(t, StorageID(project, "child"), *docs[0].FolderID)

	// parent is a document, so it lands at the top level
	assert.Nil(t, docs[1].FolderID)
}
