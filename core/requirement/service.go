package requirement

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/user"
)

var (
	ErrNotFound       = errors.New("requirement not found")
	ErrForbidden      = errors.New("permission denied")
	ErrInvalidState   = errors.New("action not allowed in the requirement's current state")
	ErrAlreadyApplied = errors.New("already applied to this requirement")
)

type (
	Repository interface {
		CreateRequirement(ctx context.Context, r Requirement) (Requirement, error)
		GetRequirementByID(ctx context.Context, id string) (Requirement, error)
		// QueryRequirements applies AND operation on available QueryFilter
		// fields and returns results newest first.
		QueryRequirements(ctx context.Context, filter *QueryFilter) ([]Requirement, error)
		UpdateRequirement(ctx context.Context, r Requirement) (Requirement, error)
		DeleteRequirementsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, nr NewRequirement) (Requirement, error)
		Get(ctx context.Context, actor user.User, id string) (Requirement, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Requirement, error)
		Apply(ctx context.Context, actor user.User, id, message string) (Requirement, error)
		SetStatus(ctx context.Context, actor user.User, id string, status Status) (Requirement, error)
		Delete(ctx context.Context, actor user.User, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// The board carries members' contact details, so visitors stay out entirely.

func (svc *service) Create(ctx context.Context, actor user.User, nr NewRequirement) (Requirement, error) {
	if actor.IsVisitor() {
		return Requirement{}, ErrForbidden
	}
	urgency := Urgency(nr.Urgency)
	if urgency == "" {
		urgency = UrgencyNormal
	}
	now := time.Now().UTC()
	r := Requirement{
		PublisherID:   actor.ID,
		PublisherName: actor.Name,
		Title:         nr.Title,
		Type:          Type(nr.Type),
		Description:   nr.Description,
		Contact:       nr.Contact,
		Budget:        nr.Budget,
		Urgency:       urgency,
		Status:        StatusPending,
		Applicants:    []Applicant{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateRequirement(ctx, r)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Requirement, error) {
	if actor.IsVisitor() {
		return Requirement{}, ErrForbidden
	}
	return svc.repo.GetRequirementByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Requirement, error) {
	if actor.IsVisitor() {
		return nil, ErrForbidden
	}
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	return svc.repo.QueryRequirements(ctx, filter)
}

func (svc *service) Apply(ctx context.Context, actor user.User, id, message string) (Requirement, error) {
	if actor.IsVisitor() {
		return Requirement{}, ErrForbidden
	}
	r, err := svc.repo.GetRequirementByID(ctx, id)
	if err != nil {
		return Requirement{}, err
	}
	if r.IsPublishedBy(actor.ID) {
		return Requirement{}, ErrForbidden
	}
	if r.Status != StatusPending {
		return Requirement{}, ErrInvalidState
	}
	if r.HasApplicant(actor.ID) {
		return Requirement{}, ErrAlreadyApplied
	}

	r.Applicants = append(r.Applicants, Applicant{
		UserID:    actor.ID,
		Name:      actor.Name,
		Message:   core.CleanString(message),
		AppliedAt: time.Now().UTC(),
	})
	r.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRequirement(ctx, r)
}

func (svc *service) SetStatus(ctx context.Context, actor user.User, id string, status Status) (Requirement, error) {
	if !status.IsValid() {
		return Requirement{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid requirement status"})
	}
	r, err := svc.repo.GetRequirementByID(ctx, id)
	if err != nil {
		return Requirement{}, err
	}
	if !r.IsPublishedBy(actor.ID) && !actor.IsAdmin() {
		return Requirement{}, ErrForbidden
	}
	if r.Status == status {
		return r, nil
	}

	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRequirement(ctx, r)
}

func (svc *service) Delete(ctx context.Context, actor user.User, ids ...string) error {
	if actor.IsVisitor() {
		return ErrForbidden
	}
	if !actor.IsAdmin() {
		for _, id := range ids {
			r, err := svc.repo.GetRequirementByID(ctx, id)
			if err != nil {
				return err
			}
			if !r.IsPublishedBy(actor.ID) {
				return ErrForbidden
			}
		}
	}
	return svc.repo.DeleteRequirementsByID(ctx, ids...)
}
