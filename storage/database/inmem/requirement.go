package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/vitrine/core/requirement"
)

type requirementRepository struct {
	db *requirementTable
}

var _ requirement.Repository = (*requirementRepository)(nil)

func NewRequirementRepository(db *DB) requirement.Repository {
	return &requirementRepository{db: db.requirement}
}

func (repo *requirementRepository) CreateRequirement(_ context.Context, r requirement.Requirement) (requirement.Requirement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = uuid.NewString()
	repo.db.table[r.ID] = &r
	repo.db.order = append(repo.db.order, r.ID)
	return r, nil
}

func (repo *requirementRepository) GetRequirementByID(_ context.Context, id string) (requirement.Requirement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return *r, nil
	}
	return requirement.Requirement{}, requirement.ErrNotFound
}

func (repo *requirementRepository) QueryRequirements(_ context.Context, filter *requirement.QueryFilter) ([]requirement.Requirement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// newest first
	res := make([]requirement.Requirement, 0, len(repo.db.order))
	for i := len(repo.db.order) - 1; i >= 0; i-- {
		r, ok := repo.db.table[repo.db.order[i]]
		if !ok {
			continue
		}
		if filter == nil || filter.Match(*r) {
			res = append(res, *r)
		}
	}
	return res, nil
}

func (repo *requirementRepository) UpdateRequirement(_ context.Context, r requirement.Requirement) (requirement.Requirement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[r.ID]; !ok {
		return requirement.Requirement{}, requirement.ErrNotFound
	}
	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *requirementRepository) DeleteRequirementsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
