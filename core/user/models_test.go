package user

import "testing"

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		can   []Capability
		cant  []Capability
	}{
		{
			name:  "student",
			roles: []string{RoleStudent},
			can:   []Capability{CapSubmitAchievement, CapViewPublished},
			cant:  []Capability{CapReviewAchievement, CapRecommendAchievement, CapManageUsers},
		},
		{
			name:  "teacher",
			roles: []string{RoleTeacher},
			can:   []Capability{CapReviewAchievement, CapRecommendAchievement, CapViewPublished},
			cant:  []Capability{CapSubmitAchievement, CapManageUsers},
		},
		{
			name:  "admin",
			roles: []string{RoleAdmin},
			can:   []Capability{CapReviewAchievement, CapManageUsers, CapViewPublished},
			cant:  []Capability{CapSubmitAchievement, CapRecommendAchievement},
		},
		{
			name:  "admin principal",
			roles: []string{RoleAdminPrincipal},
			can:   []Capability{CapReviewAchievement, CapManageUsers, CapViewPublished},
			cant:  []Capability{CapSubmitAchievement, CapRecommendAchievement},
		},
		{
			name:  "visitor",
			roles: []string{RoleVisitor},
			can:   []Capability{CapViewPublished},
			cant:  []Capability{CapSubmitAchievement, CapReviewAchievement, CapRecommendAchievement, CapManageUsers},
		},
		{
			name: "no roles",
			cant: []Capability{CapSubmitAchievement, CapReviewAchievement, CapRecommendAchievement, CapManageUsers, CapViewPublished},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, c := range tt.can {
				if !HasCapability(tt.roles, c) {
					t.Errorf("HasCapability(%v, %s) = false, want true", tt.roles, c)
				}
			}
			for _, c := range tt.cant {
				if HasCapability(tt.roles, c) {
					t.Errorf("HasCapability(%v, %s) = true, want false", tt.roles, c)
				}
			}
		})
	}
}

func TestMaxRolePriority(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{name: "empty", want: 0},
		{name: "student", roles: []string{RoleStudent}, want: 1},
		{name: "teacher", roles: []string{RoleTeacher}, want: 11},
		{name: "admin owner wins", roles: []string{RoleStudent, RoleAdminOwner}, want: 30},
		{name: "visitor has none", roles: []string{RoleVisitor}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxRolePriority(tt.roles); got != tt.want {
				t.Errorf("MaxRolePriority() = %d, want %d", got, tt.want)
			}
		})
	}
}
