package config

const (
	// MaxViewportDimension bounds the width/height a client may report.
	// Larger values are almost certainly unit mistakes (device pixels vs CSS pixels).
	MaxViewportDimension = 16384

	// MaxExpandLevel bounds expand_to_level requests.
	// Deeper than this is equivalent to expand_all for any realistic project.
	MaxExpandLevel = 64

	// MaxOpenViews caps the number of in-memory explorer views per server.
	// Each view holds a full hierarchy, so this bounds memory.
	MaxOpenViews = 1000

	// MaxNodeIDLength is the maximum length of a node ID accepted in a request path.
	MaxNodeIDLength = 255
)
