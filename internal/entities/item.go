package entities

import (
	"errors"
	"fmt"
	"time"
)

// Label identifies one logical paginated list sharing the sync mechanism.
type Label string

const (
	LabelPersons   Label = "persons"
	LabelStarships Label = "starships"
	LabelPlanets   Label = "planets"
)

// AllLabels lists every label in display order.
var AllLabels = []Label{LabelPersons, LabelStarships, LabelPlanets}

var ErrUnknownLabel = errors.New("unknown list label")

// ParseLabel validates a label coming from a URL, flag or config value.
func ParseLabel(s string) (Label, error) {
	for _, l := range AllLabels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

func (l Label) String() string {
	return string(l)
}

// ListItem is a cached entity (person, starship or planet) in one list. Rows
// are keyed by (label, id): remote ids are only unique within one kind.
// CreatedAt is an insertion-order surrogate, not a wall clock value; it is the
// only ordering key of the local window.
type ListItem struct {
	Label      Label  `gorm:"primaryKey;size:32;index:idx_list_items_label_created,priority:1" json:"label"`
	ID         string `gorm:"primaryKey;size:128" json:"id"`
	Name       string `gorm:"size:255" json:"name"`
	FilmCount  int    `json:"film_count"`
	IsFavorite bool   `gorm:"not null;default:false" json:"is_favorite"`
	Cursor     string `gorm:"size:255" json:"cursor"`
	CreatedAt  int64  `gorm:"autoCreateTime:false;not null;index:idx_list_items_label_created,priority:2" json:"created_at"`
}

func (ListItem) TableName() string {
	return "list_items"
}

// Bookmark records how far a list has been paged. A nil NextKey means no
// further pages are known.
type Bookmark struct {
	Label     Label     `gorm:"primaryKey;size:32" json:"label"`
	NextKey   *string   `gorm:"size:255" json:"next_key"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bookmark) TableName() string {
	return "remote_keys"
}

// HasNext reports whether the bookmark points at another page.
func (b *Bookmark) HasNext() bool {
	return b != nil && b.NextKey != nil && *b.NextKey != ""
}
