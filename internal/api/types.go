package api

// LoadRequest asks the server to fetch metadata from a URL or file path.
// Posting raw XML to /api/load skips this envelope entirely.
type LoadRequest struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

// LoadResponse summarizes a successful metadata load.
type LoadResponse struct {
	Version          string `json:"version"`
	EntityCount      int    `json:"entityCount"`
	ComplexTypeCount int    `json:"complexTypeCount"`
	EnumTypeCount    int    `json:"enumTypeCount"`
}

// EntitySummary is one row of an entity listing.
type EntitySummary struct {
	Name            string `json:"name"`
	Namespace       string `json:"namespace"`
	FullName        string `json:"fullName"`
	PropertyCount   int    `json:"propertyCount"`
	NavigationCount int    `json:"navigationCount"`
	MatchHint       string `json:"matchHint,omitempty"`
}

// EntityListResponse groups filtered entities by namespace.
type EntityListResponse struct {
	Query      string                     `json:"query"`
	Total      int                        `json:"total"`
	Namespaces []string                   `json:"namespaces"`
	Groups     map[string][]EntitySummary `json:"groups"`
}

// SelectRequest names an entity to select.
type SelectRequest struct {
	Entity string `json:"entity"`
}

// ToggleRequest names a diagram node to expand or collapse.
type ToggleRequest struct {
	Node string `json:"node"`
}

// NavigateRequest drives breadcrumb navigation through nested complex types.
// Action is one of "into", "back", or "index".
type NavigateRequest struct {
	Action   string `json:"action"`
	Property string `json:"property,omitempty"`
	Type     string `json:"type,omitempty"`
	Index    int    `json:"index,omitempty"`
}
