package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/achievement"
)

const achievementCols = `
id, owner_id, owner_name, title, category, level, description, participants, instructor,
price_kind, price_raw, keywords, images, videos, files, completed_on, status, reject_reason,
recommendation, resubmission_of, version, created_at, updated_at`

type achievementRow struct {
	ID             string         `db:"id"`
	OwnerID        string         `db:"owner_id"`
	OwnerName      string         `db:"owner_name"`
	Title          string         `db:"title"`
	Category       string         `db:"category"`
	Level          string         `db:"level"`
	Description    string         `db:"description"`
	Participants   pq.StringArray `db:"participants"`
	Instructor     string         `db:"instructor"`
	PriceKind      string         `db:"price_kind"`
	PriceRaw       string         `db:"price_raw"`
	Keywords       pq.StringArray `db:"keywords"`
	Images         []byte         `db:"images"`
	Videos         []byte         `db:"videos"`
	Files          []byte         `db:"files"`
	CompletedOn    sql.NullTime   `db:"completed_on"`
	Status         string         `db:"status"`
	RejectReason   string         `db:"reject_reason"`
	Recommendation []byte         `db:"recommendation"`
	ResubmissionOf sql.NullString `db:"resubmission_of"`
	Version        int            `db:"version"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r achievementRow) toAchievement() (achievement.Achievement, error) {
	a := achievement.Achievement{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		OwnerName:    r.OwnerName,
		Title:        r.Title,
		Category:     achievement.Category(r.Category),
		Level:        achievement.Level(r.Level),
		Description:  r.Description,
		Participants: r.Participants,
		Instructor:   r.Instructor,
		Price:        achievement.Price{Kind: achievement.PriceKind(r.PriceKind), Raw: r.PriceRaw},
		Keywords:     r.Keywords,
		Status:       achievement.Status(r.Status),
		RejectReason: r.RejectReason,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.CompletedOn.Valid {
		a.CompletedOn = r.CompletedOn.Time
	}
	if r.ResubmissionOf.Valid {
		a.ResubmissionOf = r.ResubmissionOf.String
	}
	for _, col := range []struct {
		raw  []byte
		dest *[]achievement.Attachment
	}{
		{r.Images, &a.Images},
		{r.Videos, &a.Videos},
		{r.Files, &a.Files},
	} {
		if len(col.raw) > 0 {
			if err := json.Unmarshal(col.raw, col.dest); err != nil {
				return achievement.Achievement{}, errors.Wrap(err, "decoding attachments")
			}
		}
	}
	if len(r.Recommendation) > 0 {
		var rec achievement.Recommendation
		if err := json.Unmarshal(r.Recommendation, &rec); err != nil {
			return achievement.Achievement{}, errors.Wrap(err, "decoding recommendation")
		}
		a.Recommendation = &rec
	}
	return a, nil
}

func marshalAttachments(ats []achievement.Attachment) ([]byte, error) {
	if ats == nil {
		ats = []achievement.Attachment{}
	}
	return json.Marshal(ats)
}

type achievementRepository struct {
	db *sqlx.DB
}

var _ achievement.Repository = (*achievementRepository)(nil)

func NewAchievementRepository(db *sqlx.DB) achievement.Repository {
	return &achievementRepository{db: db}
}

func (repo *achievementRepository) begin(ctx context.Context) (core.DBTransactor, error) {
	return repo.db.BeginTxx(ctx, nil)
}

func (repo *achievementRepository) CreateAchievement(ctx context.Context, a achievement.Achievement) (achievement.Achievement, error) {
	images, err := marshalAttachments(a.Images)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "encoding images")
	}
	videos, err := marshalAttachments(a.Videos)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "encoding videos")
	}
	files, err := marshalAttachments(a.Files)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "encoding files")
	}

	var completedOn sql.NullTime
	if !a.CompletedOn.IsZero() {
		completedOn = sql.NullTime{Time: a.CompletedOn, Valid: true}
	}
	var resubmissionOf sql.NullString
	if a.ResubmissionOf != "" {
		resubmissionOf = sql.NullString{String: a.ResubmissionOf, Valid: true}
	}

	q := fmt.Sprintf(`
INSERT INTO achievement (
    owner_id, owner_name, title, category, level, description, participants, instructor,
    price_kind, price_raw, keywords, images, videos, files, completed_on, status, reject_reason,
    resubmission_of, version, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING %s`, achievementCols)

	var row achievementRow
	err = repo.db.GetContext(ctx, &row, q,
		a.OwnerID, a.OwnerName, a.Title, string(a.Category), string(a.Level), a.Description,
		pq.StringArray(a.Participants), a.Instructor, string(a.Price.Kind), a.Price.Raw,
		pq.StringArray(a.Keywords), images, videos, files, completedOn, string(a.Status),
		a.RejectReason, resubmissionOf, a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "creating achievement")
	}
	return row.toAchievement()
}

func (repo *achievementRepository) GetAchievementByID(ctx context.Context, id string) (achievement.Achievement, error) {
	q := fmt.Sprintf("SELECT %s FROM achievement WHERE id = $1", achievementCols)

	var row achievementRow
	err := repo.db.GetContext(ctx, &row, q, id)
	switch {
	case err == sql.ErrNoRows:
		return achievement.Achievement{}, achievement.ErrNotFound
	case err != nil:
		return achievement.Achievement{}, errors.Wrap(err, "getting achievement")
	}
	return row.toAchievement()
}

func (repo *achievementRepository) QueryAchievements(ctx context.Context, filter *achievement.QueryFilter) ([]achievement.Achievement, error) {
	q := fmt.Sprintf("SELECT %s FROM achievement", achievementCols)
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(string(filter.Status)))
		}
		if filter.Category != "" {
			conds = append(conds, "category = "+arg(string(filter.Category)))
		}
		if filter.Level != "" {
			conds = append(conds, "level = "+arg(string(filter.Level)))
		}
		if filter.OwnerID != "" {
			conds = append(conds, "owner_id = "+arg(filter.OwnerID))
		}
		if filter.RecommendedOnly {
			conds = append(conds, "recommendation IS NOT NULL")
		}
		if filter.MinRecommendLevel > 0 {
			conds = append(conds, "(recommendation->>'level')::int >= "+arg(filter.MinRecommendLevel))
		}
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf(
				"(title ILIKE %[1]s OR owner_name ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE %[1]s))", p))
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	// submission order
	q += " ORDER BY created_at ASC, id ASC"

	var rows []achievementRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	res := make([]achievement.Achievement, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAchievement()
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

func (repo *achievementRepository) UpdateAchievement(ctx context.Context, a achievement.Achievement) (achievement.Achievement, error) {
	images, err := marshalAttachments(a.Images)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "encoding images")
	}
	videos, err := marshalAttachments(a.Videos)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "encoding videos")
	}
	files, err := marshalAttachments(a.Files)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "encoding files")
	}
	var completedOn sql.NullTime
	if !a.CompletedOn.IsZero() {
		completedOn = sql.NullTime{Time: a.CompletedOn, Valid: true}
	}

	q := fmt.Sprintf(`
UPDATE achievement SET
    title = $1, category = $2, level = $3, description = $4, participants = $5, instructor = $6,
    price_kind = $7, price_raw = $8, keywords = $9, images = $10, videos = $11, files = $12,
    completed_on = $13, updated_at = $14, version = version + 1
WHERE id = $15 AND version = $16
RETURNING %s`, achievementCols)

	var row achievementRow
	err = repo.db.GetContext(ctx, &row, q,
		a.Title, string(a.Category), string(a.Level), a.Description, pq.StringArray(a.Participants),
		a.Instructor, string(a.Price.Kind), a.Price.Raw, pq.StringArray(a.Keywords),
		images, videos, files, completedOn, a.UpdatedAt, a.ID, a.Version,
	)
	switch {
	case err == sql.ErrNoRows:
		return achievement.Achievement{}, repo.conflictOrNotFound(ctx, a.ID)
	case err != nil:
		return achievement.Achievement{}, errors.Wrap(err, "updating achievement")
	}
	return row.toAchievement()
}

func (repo *achievementRepository) CompareAndSetStatus(
	ctx context.Context,
	id string,
	version int,
	status achievement.Status,
	reason string,
	decision *achievement.ReviewDecision,
) (achievement.Achievement, error) {
	tx, err := repo.begin(ctx)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := fmt.Sprintf(`
UPDATE achievement SET status = $1, reject_reason = $2, updated_at = now(), version = version + 1
WHERE id = $3 AND version = $4
RETURNING %s`, achievementCols)

	var row achievementRow
	err = tx.GetContext(ctx, &row, q, string(status), reason, id, version)
	switch {
	case err == sql.ErrNoRows:
		return achievement.Achievement{}, repo.conflictOrNotFound(ctx, id)
	case err != nil:
		return achievement.Achievement{}, errors.Wrap(err, "setting achievement status")
	}

	if decision != nil {
		const dq = `
INSERT INTO review_decision (achievement_id, reviewer_id, reviewer_name, outcome, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err = tx.ExecContext(ctx, dq,
			decision.AchievementID, decision.ReviewerID, decision.ReviewerName,
			string(decision.Outcome), decision.Reason, decision.CreatedAt,
		); err != nil {
			return achievement.Achievement{}, errors.Wrap(err, "recording review decision")
		}
	}

	if err = tx.Commit(); err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "committing transaction")
	}
	return row.toAchievement()
}

func (repo *achievementRepository) CompareAndSetRecommendation(
	ctx context.Context,
	id string,
	version int,
	rec *achievement.Recommendation,
) (achievement.Achievement, error) {
	var recJSON interface{}
	if rec != nil {
		b, err := json.Marshal(rec)
		if err != nil {
			return achievement.Achievement{}, errors.Wrap(err, "encoding recommendation")
		}
		recJSON = b
	}

	q := fmt.Sprintf(`
UPDATE achievement SET recommendation = $1, updated_at = now(), version = version + 1
WHERE id = $2 AND version = $3
RETURNING %s`, achievementCols)

	var row achievementRow
	err := repo.db.GetContext(ctx, &row, q, recJSON, id, version)
	switch {
	case err == sql.ErrNoRows:
		return achievement.Achievement{}, repo.conflictOrNotFound(ctx, id)
	case err != nil:
		return achievement.Achievement{}, errors.Wrap(err, "setting recommendation")
	}
	return row.toAchievement()
}

func (repo *achievementRepository) DeleteAchievementsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM achievement WHERE id = ANY($1)", pq.StringArray(ids)); err != nil {
		return errors.Wrap(err, "deleting achievements")
	}
	return nil
}

func (repo *achievementRepository) QueryDecisionsByAchievementID(ctx context.Context, achievementID string) ([]achievement.ReviewDecision, error) {
	const q = `
SELECT id, achievement_id, reviewer_id, reviewer_name, outcome, reason, created_at
FROM review_decision WHERE achievement_id = $1 ORDER BY created_at ASC`

	var rows []struct {
		ID            string    `db:"id"`
		AchievementID string    `db:"achievement_id"`
		ReviewerID    string    `db:"reviewer_id"`
		ReviewerName  string    `db:"reviewer_name"`
		Outcome       string    `db:"outcome"`
		Reason        string    `db:"reason"`
		CreatedAt     time.Time `db:"created_at"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q, achievementID); err != nil {
		return nil, errors.Wrap(err, "querying review decisions")
	}
	decs := make([]achievement.ReviewDecision, 0, len(rows))
	for _, row := range rows {
		decs = append(decs, achievement.ReviewDecision{
			ID:            row.ID,
			AchievementID: row.AchievementID,
			ReviewerID:    row.ReviewerID,
			ReviewerName:  row.ReviewerName,
			Outcome:       achievement.Status(row.Outcome),
			Reason:        row.Reason,
			CreatedAt:     row.CreatedAt,
		})
	}
	return decs, nil
}

// conflictOrNotFound disambiguates a zero-row CAS update.
func (repo *achievementRepository) conflictOrNotFound(ctx context.Context, id string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, "SELECT true FROM achievement WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return achievement.ErrNotFound
		}
		return errors.Wrap(err, "checking achievement")
	}
	return achievement.ErrConflict
}
