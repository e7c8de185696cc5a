package announcement

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vitrine/core"
)

// Announcement is a site-wide notice published by administrators on the
// landing page.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewAnnouncement contains information needed to publish an announcement.
type NewAnnouncement struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,max=5000"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return validate.Struct(na)
}

// QueryFilter narrows announcement listings.
type QueryFilter struct {
	Search string `query:"q"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies the filter in memory; repositories may use it directly or
// translate it to SQL.
func (qf *QueryFilter) Match(a Announcement) bool {
	if qf.Search == "" {
		return true
	}
	q := strings.ToLower(qf.Search)
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Content), q)
}
