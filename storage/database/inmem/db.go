package inmemdb

import (
	"sync"

	"github.com/trezcool/vitrine/core/achievement"
	"github.com/trezcool/vitrine/core/announcement"
	"github.com/trezcool/vitrine/core/requirement"
	"github.com/trezcool/vitrine/core/user"
)

// DB is a mutex-guarded in-memory store backing the repositories in tests and
// local tinkering.
type (
	DB struct {
		user         *userTable
		achievement  *achievementTable
		announcement *announcementTable
		requirement  *requirementTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	achievementTable struct {
		sync.RWMutex
		table map[string]*achievement.Achievement
		order []string // insertion order of ids
		decs  map[string][]achievement.ReviewDecision
	}

	announcementTable struct {
		sync.RWMutex
		table map[string]*announcement.Announcement
		order []string
	}

	requirementTable struct {
		sync.RWMutex
		table map[string]*requirement.Requirement
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		achievement: &achievementTable{
			table: make(map[string]*achievement.Achievement),
			decs:  make(map[string][]achievement.ReviewDecision),
		},
		announcement: &announcementTable{table: make(map[string]*announcement.Announcement)},
		requirement:  &requirementTable{table: make(map[string]*requirement.Requirement)},
	}
	return db, nil
}
