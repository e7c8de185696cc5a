package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/announcement"
)

type announcementRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Author    string    `db:"author"`
	CreatedAt time.Time `db:"created_at"`
}

func (r announcementRow) toAnnouncement() announcement.Announcement {
	return announcement.Announcement{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Author:    r.Author,
		CreatedAt: r.CreatedAt,
	}
}

type announcementRepository struct {
	db core.DBExecutor
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db core.DBExecutor) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	const q = `
INSERT INTO announcement (title, content, author, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, title, content, author, created_at`

	var row announcementRow
	err := repo.db.GetContext(ctx, &row, q, a.Title, a.Content, a.Author, a.CreatedAt)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return row.toAnnouncement(), nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	const q = "SELECT id, title, content, author, created_at FROM announcement WHERE id = $1"

	var row announcementRow
	err := repo.db.GetContext(ctx, &row, q, id)
	switch {
	case err == sql.ErrNoRows:
		return announcement.Announcement{}, announcement.ErrNotFound
	case err != nil:
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return row.toAnnouncement(), nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, filter *announcement.QueryFilter) ([]announcement.Announcement, error) {
	q := "SELECT id, title, content, author, created_at FROM announcement"
	var args []interface{}
	if filter != nil && filter.Search != "" {
		q += " WHERE title ILIKE $1 OR content ILIKE $1"
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}
	q += " ORDER BY created_at DESC"

	var rows []announcementRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	res := make([]announcement.Announcement, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toAnnouncement())
	}
	return res, nil
}

func (repo *announcementRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM announcement WHERE id = ANY($1)", pq.StringArray(ids)); err != nil {
		return errors.Wrap(err, "deleting announcements")
	}
	return nil
}
