package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/requirement"
)

const requirementCols = `
id, publisher_id, publisher_name, title, type, description, contact, budget, urgency,
status, applicants, created_at, updated_at`

type requirementRow struct {
	ID            string    `db:"id"`
	PublisherID   string    `db:"publisher_id"`
	PublisherName string    `db:"publisher_name"`
	Title         string    `db:"title"`
	Type          string    `db:"type"`
	Description   string    `db:"description"`
	Contact       string    `db:"contact"`
	Budget        string    `db:"budget"`
	Urgency       string    `db:"urgency"`
	Status        string    `db:"status"`
	Applicants    []byte    `db:"applicants"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row requirementRow) toRequirement() (requirement.Requirement, error) {
	r := requirement.Requirement{
		ID:            row.ID,
		PublisherID:   row.PublisherID,
		PublisherName: row.PublisherName,
		Title:         row.Title,
		Type:          requirement.Type(row.Type),
		Description:   row.Description,
		Contact:       row.Contact,
		Budget:        row.Budget,
		Urgency:       requirement.Urgency(row.Urgency),
		Status:        requirement.Status(row.Status),
		Applicants:    []requirement.Applicant{},
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if len(row.Applicants) > 0 {
		if err := json.Unmarshal(row.Applicants, &r.Applicants); err != nil {
			return requirement.Requirement{}, errors.Wrap(err, "decoding applicants")
		}
	}
	return r, nil
}

func marshalApplicants(as []requirement.Applicant) ([]byte, error) {
	if as == nil {
		as = []requirement.Applicant{}
	}
	return json.Marshal(as)
}

type requirementRepository struct {
	db core.DBExecutor
}

var _ requirement.Repository = (*requirementRepository)(nil)

func NewRequirementRepository(db core.DBExecutor) requirement.Repository {
	return &requirementRepository{db: db}
}

func (repo *requirementRepository) CreateRequirement(ctx context.Context, r requirement.Requirement) (requirement.Requirement, error) {
	applicants, err := marshalApplicants(r.Applicants)
	if err != nil {
		return requirement.Requirement{}, errors.Wrap(err, "encoding applicants")
	}

	q := `
INSERT INTO requirement (publisher_id, publisher_name, title, type, description, contact, budget, urgency, status, applicants, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + requirementCols

	var row requirementRow
	err = repo.db.GetContext(ctx, &row, q,
		r.PublisherID, r.PublisherName, r.Title, string(r.Type), r.Description, r.Contact,
		r.Budget, string(r.Urgency), string(r.Status), applicants, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return requirement.Requirement{}, errors.Wrap(err, "creating requirement")
	}
	return row.toRequirement()
}

func (repo *requirementRepository) GetRequirementByID(ctx context.Context, id string) (requirement.Requirement, error) {
	q := "SELECT " + requirementCols + " FROM requirement WHERE id = $1"

	var row requirementRow
	err := repo.db.GetContext(ctx, &row, q, id)
	switch {
	case err == sql.ErrNoRows:
		return requirement.Requirement{}, requirement.ErrNotFound
	case err != nil:
		return requirement.Requirement{}, errors.Wrap(err, "getting requirement")
	}
	return row.toRequirement()
}

func (repo *requirementRepository) QueryRequirements(ctx context.Context, filter *requirement.QueryFilter) ([]requirement.Requirement, error) {
	q := "SELECT " + requirementCols + " FROM requirement"
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.Type != "" {
			conds = append(conds, "type = "+arg(filter.Type))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(filter.Status))
		}
		if filter.Search != "" {
			p := arg("%" + strings.TrimSpace(filter.Search) + "%")
			conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+" OR publisher_name ILIKE "+p+")")
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var rows []requirementRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying requirements")
	}
	res := make([]requirement.Requirement, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRequirement()
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

func (repo *requirementRepository) UpdateRequirement(ctx context.Context, r requirement.Requirement) (requirement.Requirement, error) {
	applicants, err := marshalApplicants(r.Applicants)
	if err != nil {
		return requirement.Requirement{}, errors.Wrap(err, "encoding applicants")
	}

	q := `
UPDATE requirement SET status = $1, applicants = $2, updated_at = $3
WHERE id = $4
RETURNING ` + requirementCols

	var row requirementRow
	err = repo.db.GetContext(ctx, &row, q, string(r.Status), applicants, r.UpdatedAt, r.ID)
	switch {
	case err == sql.ErrNoRows:
		return requirement.Requirement{}, requirement.ErrNotFound
	case err != nil:
		return requirement.Requirement{}, errors.Wrap(err, "updating requirement")
	}
	return row.toRequirement()
}

func (repo *requirementRepository) DeleteRequirementsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM requirement WHERE id = ANY($1)", pq.StringArray(ids)); err != nil {
		return errors.Wrap(err, "deleting requirements")
	}
	return nil
}
