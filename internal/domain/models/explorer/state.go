package explorer

// ContextFlag marks how a node participates in the prompt context
type ContextFlag string

const (
	ContextNeutral  ContextFlag = "neutral"
	ContextIncluded ContextFlag = "included"
	ContextPinned   ContextFlag = "pinned"
	ContextExcluded ContextFlag = "excluded"
)

// Next returns the flag one step along neutral -> included -> pinned -> excluded.
// Excluded is terminal.
func (f ContextFlag) Next() ContextFlag {
	switch f {
	case ContextNeutral, "":
		return ContextIncluded
	case ContextIncluded:
		return ContextPinned
	default:
		return ContextExcluded
	}
}

// ExpansionState is the set of expanded folder IDs; absent means collapsed
type ExpansionState = IDSet

// SelectionState holds the selected IDs and the most recently interacted-with node
type SelectionState struct {
	Selected IDSet  `json:"selected"`
	Focused  string `json:"focused,omitempty"`
}

// ContextSets holds the per-flag ID sets owned by the context collaborator
type ContextSets struct {
	Included IDSet `json:"included"`
	Pinned   IDSet `json:"pinned"`
	Excluded IDSet `json:"excluded"`
}

// FlagOf resolves the effective flag for id (pinned > included > excluded)
func (c ContextSets) FlagOf(id string) ContextFlag {
	switch {
	case c.Pinned.Has(id):
		return ContextPinned
	case c.Included.Has(id):
		return ContextIncluded
	case c.Excluded.Has(id):
		return ContextExcluded
	default:
		return ContextNeutral
	}
}
