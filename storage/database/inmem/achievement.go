package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/vitrine/core/achievement"
)

type achievementRepository struct {
	db *achievementTable
}

var _ achievement.Repository = (*achievementRepository)(nil)

func NewAchievementRepository(db *DB) achievement.Repository {
	return &achievementRepository{db: db.achievement}
}

func (repo *achievementRepository) CreateAchievement(_ context.Context, a achievement.Achievement) (achievement.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.NewString()
	repo.db.table[a.ID] = &a
	repo.db.order = append(repo.db.order, a.ID)
	return a, nil
}

func (repo *achievementRepository) GetAchievementByID(_ context.Context, id string) (achievement.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return achievement.Achievement{}, achievement.ErrNotFound
}

func (repo *achievementRepository) QueryAchievements(_ context.Context, filter *achievement.QueryFilter) ([]achievement.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]achievement.Achievement, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		a, ok := repo.db.table[id]
		if !ok {
			continue
		}
		if filter == nil || filter.Match(*a) {
			res = append(res, *a)
		}
	}
	return res, nil
}

func (repo *achievementRepository) UpdateAchievement(_ context.Context, a achievement.Achievement) (achievement.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[a.ID]
	if !ok {
		return achievement.Achievement{}, achievement.ErrNotFound
	}
	if orig.Version != a.Version {
		return achievement.Achievement{}, achievement.ErrConflict
	}
	a.Version++
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *achievementRepository) CompareAndSetStatus(
	_ context.Context,
	id string,
	version int,
	status achievement.Status,
	reason string,
	decision *achievement.ReviewDecision,
) (achievement.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return achievement.Achievement{}, achievement.ErrNotFound
	}
	if a.Version != version {
		return achievement.Achievement{}, achievement.ErrConflict
	}
	a.Status = status
	a.RejectReason = reason
	a.Version++
	a.UpdatedAt = time.Now().UTC()
	if decision != nil {
		d := *decision
		d.ID = uuid.NewString()
		repo.db.decs[id] = append(repo.db.decs[id], d)
	}
	return *a, nil
}

func (repo *achievementRepository) CompareAndSetRecommendation(
	_ context.Context,
	id string,
	version int,
	rec *achievement.Recommendation,
) (achievement.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return achievement.Achievement{}, achievement.ErrNotFound
	}
	if a.Version != version {
		return achievement.Achievement{}, achievement.ErrConflict
	}
	a.Recommendation = rec
	a.Version++
	a.UpdatedAt = time.Now().UTC()
	return *a, nil
}

func (repo *achievementRepository) DeleteAchievementsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.decs, id)
	}
	return nil
}

func (repo *achievementRepository) QueryDecisionsByAchievementID(_ context.Context, achievementID string) ([]achievement.ReviewDecision, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	decs := repo.db.decs[achievementID]
	res := make([]achievement.ReviewDecision, len(decs))
	copy(res, decs)
	return res, nil
}
