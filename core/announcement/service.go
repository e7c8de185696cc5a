package announcement

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core/user"
)

var (
	ErrNotFound  = errors.New("announcement not found")
	ErrForbidden = errors.New("permission denied")
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncements returns results newest first.
		QueryAnnouncements(ctx context.Context, filter *QueryFilter) ([]Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error)
		Get(ctx context.Context, id string) (Announcement, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Announcement, error)
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

func (svc *service) Create(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error) {
	if !actor.IsAdmin() {
		return Announcement{}, ErrForbidden
	}
	a := Announcement{
		Title:     na.Title,
		Content:   na.Content,
		Author:    actor.Name,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateAnnouncement(ctx, a)
}

func (svc *service) Get(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncementByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Announcement, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	return svc.repo.QueryAnnouncements(ctx, filter)
}

func (svc *service) Delete(ctx context.Context, actor user.User, ids ...string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return svc.repo.DeleteAnnouncementsByID(ctx, ids...)
}
