package shopware

// Filter is one condition inside a search criteria body.
type Filter struct {
	Type  string      `json:"type"`
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// EqualsFilter matches a field exactly.
func EqualsFilter(field string, value interface{}) Filter {
	return Filter{Type: "equals", Field: field, Value: value}
}

// Criteria is the body of a POST /api/search/{entity} request. The API
// accepts both the per-entity "includes" projection and the flat "include"
// list; zero values are left out of the payload.
type Criteria struct {
	Limit    int                 `json:"limit,omitempty"`
	Page     int                 `json:"page,omitempty"`
	Filter   []Filter            `json:"filter,omitempty"`
	Includes map[string][]string `json:"includes,omitempty"`
	Include  []string            `json:"include,omitempty"`
}

// SearchPath returns the generic search endpoint for an entity.
func SearchPath(entity string) string {
	return "/api/search/" + entity
}
