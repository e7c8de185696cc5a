package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/vitrine/core/achievement"
	"github.com/trezcool/vitrine/core/requirement"
	"github.com/trezcool/vitrine/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// NewAchievement returns a payload that satisfies the submission contract;
// tweak fields per test case.
func NewAchievement(title string) achievement.NewAchievement {
	return achievement.NewAchievement{
		Title:       title,
		Category:    achievement.CategoryProject,
		Level:       achievement.LevelNational,
		Description: "A detailed write-up of the work, long enough to pass review intake.",
		Price:       "1500",
		Keywords:    []string{"engineering", "prototype"},
		Images:      []achievement.Attachment{{Name: "cover.jpg", URL: "https://cdn.example.com/cover.jpg"}},
		CompletedOn: time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC),
	}
}

func CreateAchievement(
	t *testing.T,
	svc achievement.Service,
	actor user.User,
	title string,
) achievement.Achievement {
	t.Helper()

	a, err := svc.Create(context.Background(), actor, NewAchievement(title))
	if err != nil {
		t.Fatalf("createAchievement() failed: %v", err)
	}
	return a
}

// NewRequirement returns a board payload that passes validation; tweak fields
// per test case.
func NewRequirement(title string) requirement.NewRequirement {
	return requirement.NewRequirement{
		Title:       title,
		Type:        string(requirement.TypeProject),
		Description: "Looking for two teammates to finish the field prototype before demo day.",
		Contact:     "WeChat: vitrine-lab",
	}
}

func CreateRequirement(
	t *testing.T,
	svc requirement.Service,
	actor user.User,
	title string,
) requirement.Requirement {
	t.Helper()

	r, err := svc.Create(context.Background(), actor, NewRequirement(title))
	if err != nil {
		t.Fatalf("createRequirement() failed: %v", err)
	}
	return r
}
