package docsystem

import (
	"slices"
	"time"
)

// NodeKind distinguishes containers from leaf documents
type NodeKind string

const (
	NodeKindFolder   NodeKind = "folder"
	NodeKindDocument NodeKind = "document"
)

// DocumentNode is one entry of a project's document collection as seen by the explorer.
// Folders and documents share this shape; ParentID references another node's ID.
type DocumentNode struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Kind     NodeKind         `json:"kind" yaml:"kind"`
	Path     string           `json:"path" yaml:"path"`
	ParentID *string          `json:"parent_id,omitempty" yaml:"parent_id,omitempty"` // nil = top level
	Metadata DocumentMetadata `json:"metadata" yaml:"metadata"`
	Content  *DocumentContent `json:"content,omitempty" yaml:"content,omitempty"`
}

// DocumentMetadata holds the descriptive fields shown alongside a node
type DocumentMetadata struct {
	ByteSize       int64     `json:"byte_size" yaml:"byte_size"`
	LastModified   time.Time `json:"last_modified" yaml:"last_modified"`
	DocumentType   string    `json:"document_type" yaml:"document_type"`
	Tags           []string  `json:"tags" yaml:"tags"`
	UsageCount     int       `json:"usage_count" yaml:"usage_count"`
	RelevanceScore *float64  `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
}

// DocumentContent carries the optional content excerpt
type DocumentContent struct {
	Preview string `json:"preview" yaml:"preview"`
}

// IsFolder reports whether the node can hold children in the explorer
func (n *DocumentNode) IsFolder() bool {
	return n.Kind == NodeKindFolder
}

// HasTag reports whether tag is in the metadata tag set
func (m DocumentMetadata) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}
