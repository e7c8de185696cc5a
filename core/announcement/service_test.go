package announcement_test

import (
	"context"
	"testing"

	"github.com/trezcool/vitrine/core/announcement"
	"github.com/trezcool/vitrine/core/user"
	inmemdb "github.com/trezcool/vitrine/storage/database/inmem"
)

func TestService(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db failed: %v", err)
	}
	svc := announcement.NewService(inmemdb.NewAnnouncementRepository(db))
	ctx := context.Background()

	admin := user.User{ID: "a1", Name: "Didi Admin", Roles: []string{user.RoleAdmin}}
	student := user.User{ID: "s1", Name: "Awa Student", Roles: []string{user.RoleStudent}}

	if _, err = svc.Create(ctx, student, announcement.NewAnnouncement{Title: "Hi", Content: "there"}); err != announcement.ErrForbidden {
		t.Fatalf("Create() by student err = %v, expected %v", err, announcement.ErrForbidden)
	}

	first, err := svc.Create(ctx, admin, announcement.NewAnnouncement{Title: "Welcome back", Content: "The review board resumes next Monday."})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if first.Author != admin.Name {
		t.Errorf("Create() author = %q, expected %q", first.Author, admin.Name)
	}
	second, err := svc.Create(ctx, admin, announcement.NewAnnouncement{Title: "Call for projects", Content: "Submit your prototypes before the showcase."})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// newest first
	res, err := svc.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(res) != 2 || res[0].ID != second.ID {
		t.Errorf("Query() = %d results, expected the newest first", len(res))
	}

	res, err = svc.Query(ctx, &announcement.QueryFilter{Search: "showcase"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(res) != 1 || res[0].ID != second.ID {
		t.Errorf("Query(q=showcase) = %d results, expected 1", len(res))
	}

	if _, err = svc.Get(ctx, first.ID); err != nil {
		t.Errorf("Get() failed: %v", err)
	}

	if err = svc.Delete(ctx, student, first.ID); err != announcement.ErrForbidden {
		t.Errorf("Delete() by student err = %v, expected %v", err, announcement.ErrForbidden)
	}
	if err = svc.Delete(ctx, admin, first.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.Get(ctx, first.ID); err != announcement.ErrNotFound {
		t.Errorf("Get() after delete err = %v, expected %v", err, announcement.ErrNotFound)
	}
}
