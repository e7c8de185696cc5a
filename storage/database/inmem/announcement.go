package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/vitrine/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.NewString()
	repo.db.table[a.ID] = &a
	repo.db.order = append(repo.db.order, a.ID)
	return a, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, filter *announcement.QueryFilter) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// newest first
	res := make([]announcement.Announcement, 0, len(repo.db.order))
	for i := len(repo.db.order) - 1; i >= 0; i-- {
		a, ok := repo.db.table[repo.db.order[i]]
		if !ok {
			continue
		}
		if filter == nil || filter.Match(*a) {
			res = append(res, *a)
		}
	}
	return res, nil
}

func (repo *announcementRepository) DeleteAnnouncementsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
