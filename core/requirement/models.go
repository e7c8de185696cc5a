package requirement

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vitrine/core"
)

// Type classifies what a requirement asks for.
type Type string

const (
	TypeProject     Type = "project"
	TypeTutor       Type = "tutor"
	TypeResearch    Type = "research"
	TypeCompetition Type = "competition"
	TypeOther       Type = "other"
)

var Types = []Type{TypeProject, TypeTutor, TypeResearch, TypeCompetition, TypeOther}

func (t Type) IsValid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Urgency of a requirement.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	}
	return false
}

// Status is the fulfilment state of a requirement.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Applicant records a member's application to a requirement.
type Applicant struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Message   string    `json:"message,omitempty"`
	AppliedAt time.Time `json:"applied_at"` // UTC
}

// Requirement is a collaboration request a student or teacher publishes on the
// requirements board: project partners, tutoring, research assistance and the
// like. Contact details are member-only, so the whole board sits behind
// authentication.
type Requirement struct {
	ID            string      `json:"id"`
	PublisherID   string      `json:"publisher_id"`
	PublisherName string      `json:"publisher_name"`
	Title         string      `json:"title"`
	Type          Type        `json:"type"`
	Description   string      `json:"description"`
	Contact       string      `json:"contact"`
	Budget        string      `json:"budget,omitempty"`
	Urgency       Urgency     `json:"urgency"`
	Status        Status      `json:"status"`
	Applicants    []Applicant `json:"applicants"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
}

func (r *Requirement) IsPublishedBy(userID string) bool {
	return userID != "" && r.PublisherID == userID
}

func (r *Requirement) HasApplicant(userID string) bool {
	for _, a := range r.Applicants {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// NewRequirement contains information needed to publish a requirement.
type NewRequirement struct {
	Title       string `json:"title" validate:"required,max=50"`
	Type        string `json:"type" validate:"required,reqtype"`
	Description string `json:"description" validate:"required,min=20,max=2000"`
	Contact     string `json:"contact" validate:"required,max=200"`
	Budget      string `json:"budget" validate:"omitempty,max=100"`
	Urgency     string `json:"urgency" validate:"omitempty,requrgency"`
}

func (nr *NewRequirement) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Type = core.CleanString(nr.Type, true /* lower */)
	nr.Description = core.CleanString(nr.Description)
	nr.Contact = core.CleanString(nr.Contact)
	nr.Budget = core.CleanString(nr.Budget)
	nr.Urgency = core.CleanString(nr.Urgency, true /* lower */)
	return validate.Struct(nr)
}

// QueryFilter narrows requirement listings; fields compose with AND.
type QueryFilter struct {
	Search string `query:"q"`
	Type   string `query:"type"`
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Type == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Match applies the filter in memory; repositories may use it directly or
// translate it to SQL.
func (qf *QueryFilter) Match(r Requirement) bool {
	if qf.Type != "" && string(r.Type) != qf.Type {
		return false
	}
	if qf.Status != "" && string(r.Status) != qf.Status {
		return false
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) &&
			!strings.Contains(strings.ToLower(r.PublisherName), q) {
			return false
		}
	}
	return true
}
