package achievement

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vitrine/core"
)

// Status is the lifecycle state of an achievement submission.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further review transition applies to this status.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Category of student work shown on the platform.
type Category string

const (
	CategoryThesis      Category = "thesis"
	CategoryProject     Category = "project"
	CategoryCompetition Category = "competition"
	CategoryPatent      Category = "patent"
	CategoryPaper       Category = "paper"
	CategoryCoursework  Category = "coursework"
)

var Categories = []Category{
	CategoryThesis, CategoryProject, CategoryCompetition,
	CategoryPatent, CategoryPaper, CategoryCoursework,
}

func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Level at which the achievement was awarded or produced.
type Level string

const (
	LevelSchool        Level = "school"
	LevelCity          Level = "city"
	LevelProvince      Level = "province"
	LevelNational      Level = "national"
	LevelInternational Level = "international"
)

var Levels = []Level{LevelSchool, LevelCity, LevelProvince, LevelNational, LevelInternational}

func (l Level) IsValid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// PriceKind classifies a price descriptor.
type PriceKind string

const (
	PriceFixed      PriceKind = "fixed"
	PriceRange      PriceKind = "range"
	PriceNegotiable PriceKind = "negotiable"
)

var (
	fixedPriceRegex = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	rangePriceRegex = regexp.MustCompile(`^\d+(\.\d{1,2})?\s*-\s*\d+(\.\d{1,2})?$`)
)

// Price is a parsed price descriptor: a fixed amount, a "lo-hi" range or the
// literal "negotiable".
type Price struct {
	Kind PriceKind `json:"kind"`
	Raw  string    `json:"raw"`
}

// ParsePrice validates and normalizes a raw price descriptor.
func ParsePrice(s string) (Price, bool) {
	s = core.CleanString(s)
	switch {
	case strings.EqualFold(s, string(PriceNegotiable)):
		return Price{Kind: PriceNegotiable, Raw: string(PriceNegotiable)}, true
	case fixedPriceRegex.MatchString(s):
		return Price{Kind: PriceFixed, Raw: s}, true
	case rangePriceRegex.MatchString(s):
		return Price{Kind: PriceRange, Raw: s}, true
	}
	return Price{}, false
}

// Attachment is stored metadata of an uploaded asset; the binary lives behind
// the URL, outside this service.
type Attachment struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,uri"`
}

// Recommendation is a teacher-assigned tier attached only to approved achievements.
type Recommendation struct {
	Level   int    `json:"level" validate:"required,min=1,max=3"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

type Achievement struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	OwnerName      string          `json:"owner_name"`
	Title          string          `json:"title"`
	Category       Category        `json:"category"`
	Level          Level           `json:"level"`
	Description    string          `json:"description"`
	Participants   []string        `json:"participants"`
	Instructor     string          `json:"instructor,omitempty"`
	Price          Price           `json:"price"`
	Keywords       []string        `json:"keywords"`
	Images         []Attachment    `json:"images"`
	Videos         []Attachment    `json:"videos,omitempty"`
	Files          []Attachment    `json:"files,omitempty"`
	CompletedOn    time.Time       `json:"completed_on"`
	Status         Status          `json:"status"`
	RejectReason   string          `json:"reject_reason,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	ResubmissionOf string          `json:"resubmission_of,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC
}

// IsOwnedBy reports whether the given user id owns this achievement.
func (a *Achievement) IsOwnedBy(userID string) bool {
	return a.OwnerID == userID
}

// ReviewDecision is an immutable audit record appended on each effective status
// transition.
type ReviewDecision struct {
	ID            string    `json:"id"`
	AchievementID string    `json:"achievement_id"`
	ReviewerID    string    `json:"reviewer_id"`
	ReviewerName  string    `json:"reviewer_name"`
	Outcome       Status    `json:"outcome"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewAchievement contains information needed to submit an achievement.
type NewAchievement struct {
	Title        string       `json:"title" validate:"required,min=5,max=100"`
	Category     Category     `json:"category" validate:"required,achcategory"`
	Level        Level        `json:"level" validate:"required,achlevel"`
	Description  string       `json:"description" validate:"required,min=30,max=2000"`
	Participants []string     `json:"participants" validate:"omitempty,dive,required"`
	Instructor   string       `json:"instructor" validate:"omitempty,max=100"`
	Price        string       `json:"price" validate:"required,pricedesc"`
	Keywords     []string     `json:"keywords" validate:"required,min=1,dive,required"`
	Images       []Attachment `json:"images" validate:"required,min=1,dive"`
	Videos       []Attachment `json:"videos" validate:"omitempty,dive"`
	Files        []Attachment `json:"files" validate:"omitempty,dive"`
	CompletedOn  time.Time    `json:"completed_on" validate:"required"`
}

func (na *NewAchievement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Instructor = core.CleanString(na.Instructor)
	na.Price = core.CleanString(na.Price)
	for i, kw := range na.Keywords {
		na.Keywords[i] = core.CleanString(kw)
	}
	for i, p := range na.Participants {
		na.Participants[i] = core.CleanString(p)
	}
	return validate.Struct(na)
}

// UpdateAchievement defines what may be changed on a pending achievement by its
// owner, or on any achievement by an admin.
type UpdateAchievement struct {
	Title        string       `json:"title" validate:"omitempty,min=5,max=100"`
	Category     Category     `json:"category" validate:"omitempty,achcategory"`
	Level        Level        `json:"level" validate:"omitempty,achlevel"`
	Description  string       `json:"description" validate:"omitempty,min=30,max=2000"`
	Participants []string     `json:"participants" validate:"omitempty,dive,required"`
	Instructor   *string      `json:"instructor" validate:"omitempty,max=100"`
	Price        string       `json:"price" validate:"omitempty,pricedesc"`
	Keywords     []string     `json:"keywords" validate:"omitempty,min=1,dive,required"`
	Images       []Attachment `json:"images" validate:"omitempty,min=1,dive"`
	Videos       []Attachment `json:"videos" validate:"omitempty,dive"`
	Files        []Attachment `json:"files" validate:"omitempty,dive"`
	CompletedOn  time.Time    `json:"completed_on"`
}

func (ua *UpdateAchievement) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	ua.Price = core.CleanString(ua.Price)
	for i, kw := range ua.Keywords {
		ua.Keywords[i] = core.CleanString(kw)
	}
	return validate.Struct(ua)
}

// QueryFilter narrows achievement listings. All set fields compose with AND;
// Search does a case-insensitive substring match on title, owner name and
// keywords.
type QueryFilter struct {
	Search            string   `query:"q"`
	Status            Status   `query:"status"`
	Category          Category `query:"category"`
	Level             Level    `query:"level"`
	OwnerID           string   `query:"owner_id"`
	RecommendedOnly   bool     `query:"recommended"`
	MinRecommendLevel int      `query:"min_recommend_level"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Category == "" && qf.Level == "" &&
		qf.OwnerID == "" && !qf.RecommendedOnly && qf.MinRecommendLevel == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies the filter in memory; repositories may use it directly or
// translate it to SQL.
func (qf *QueryFilter) Match(a Achievement) bool {
	if qf.Status != "" && a.Status != qf.Status {
		return false
	}
	if qf.Category != "" && a.Category != qf.Category {
		return false
	}
	if qf.Level != "" && a.Level != qf.Level {
		return false
	}
	if qf.OwnerID != "" && a.OwnerID != qf.OwnerID {
		return false
	}
	if qf.RecommendedOnly && a.Recommendation == nil {
		return false
	}
	if qf.MinRecommendLevel > 0 && (a.Recommendation == nil || a.Recommendation.Level < qf.MinRecommendLevel) {
		return false
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(a.Title), q) &&
			!strings.Contains(strings.ToLower(a.OwnerName), q) &&
			!keywordsMatch(a.Keywords, q) {
			return false
		}
	}
	return true
}

func keywordsMatch(keywords []string, q string) bool {
	for _, kw := range keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}
