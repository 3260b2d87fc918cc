package domain

// TagColor is the display color for a tag.
type TagColor string

const (
	// TagColorRed renders the tag with the red accent.
	TagColorRed TagColor = "red"
	// TagColorBlue renders the tag with the blue accent.
	TagColorBlue TagColor = "blue"
	// TagColorGreen renders the tag with the green accent.
	TagColorGreen TagColor = "green"
	// TagColorYellow renders the tag with the yellow accent.
	TagColorYellow TagColor = "yellow"
	// TagColorDefault renders the tag with the neutral accent.
	TagColorDefault TagColor = "default"
)

// ValidTagColor reports whether c is one of the supported colors.
func ValidTagColor(c TagColor) bool {
	switch c {
	case TagColorRed, TagColorBlue, TagColorGreen, TagColorYellow, TagColorDefault:
		return true
	}
	return false
}

// Tag is a user-owned label for categorizing ideas.
// Tags are scoped to their owner; duplicate names per owner are permitted.
type Tag struct {
	Syncable
	OwnerID string   `json:"owner_id"`
	Name    string   `json:"name"`
	Color   TagColor `json:"color"`
}
