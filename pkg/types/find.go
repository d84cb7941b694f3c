package types

// FindCriteria restricts an element search. Zero-valued string fields
// are ignored; EnabledOnly defaults to true via DefaultFindCriteria.
type FindCriteria struct {
	Text           string `json:"text,omitempty"`
	ResourceID     string `json:"resource_id,omitempty"`
	ClassName      string `json:"class_name,omitempty"`
	ContentDesc    string `json:"content_desc,omitempty"`
	ClickableOnly  bool   `json:"clickable_only,omitempty"`
	EnabledOnly    bool   `json:"enabled_only,omitempty"`
	ScrollableOnly bool   `json:"scrollable_only,omitempty"`
	// ExactMatch switches text comparisons from case-insensitive
	// substring to case-sensitive equality.
	ExactMatch bool `json:"exact_match,omitempty"`
}

// DefaultFindCriteria returns criteria with the usual defaults
func DefaultFindCriteria() FindCriteria {
	return FindCriteria{EnabledOnly: true}
}

// Empty reports whether no matching field is set
func (c FindCriteria) Empty() bool {
	return c.Text == "" && c.ResourceID == "" && c.ClassName == "" && c.ContentDesc == ""
}
