package achievement

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind PriceKind
		ok   bool
	}{
		{"fixed integer", "1500", PriceFixed, true},
		{"fixed decimal", "99.99", PriceFixed, true},
		{"fixed one decimal", "10.5", PriceFixed, true},
		{"range", "100-200", PriceRange, true},
		{"range spaced", "100 - 200.50", PriceRange, true},
		{"negotiable", "negotiable", PriceNegotiable, true},
		{"negotiable mixed case", "Negotiable", PriceNegotiable, true},
		{"padded fixed", "  42  ", PriceFixed, true},
		{"empty", "", "", false},
		{"three decimals", "10.505", "", false},
		{"negative", "-5", "", false},
		{"currency symbol", "$100", "", false},
		{"open range", "100-", "", false},
		{"words", "about a hundred", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParsePrice(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q) ok = %v, expected %v", tt.raw, ok, tt.ok)
			}
			if ok && p.Kind != tt.kind {
				t.Errorf("ParsePrice(%q) kind = %s, expected %s", tt.raw, p.Kind, tt.kind)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	valid := []struct {
		from   Status
		action Action
		to     Status
	}{
		{StatusDraft, ActionSubmit, StatusPending},
		{StatusPending, ActionApprove, StatusApproved},
		{StatusPending, ActionReject, StatusRejected},
		{StatusApproved, ActionApprove, StatusApproved},
		{StatusApproved, ActionRecommend, StatusApproved},
		{StatusApproved, ActionResubmit, StatusPending},
		{StatusRejected, ActionResubmit, StatusPending},
	}
	for _, tt := range valid {
		next, ok := nextStatus(tt.from, tt.action)
		if !ok {
			t.Errorf("expected %s to allow %s", tt.from, tt.action)
			continue
		}
		if next != tt.to {
			t.Errorf("%s + %s = %s, expected %s", tt.from, tt.action, next, tt.to)
		}
	}

	invalid := []struct {
		from   Status
		action Action
	}{
		{StatusDraft, ActionApprove},
		{StatusDraft, ActionReject},
		{StatusDraft, ActionRecommend},
		{StatusDraft, ActionResubmit},
		{StatusPending, ActionSubmit},
		{StatusPending, ActionRecommend},
		{StatusPending, ActionResubmit},
		{StatusApproved, ActionSubmit},
		{StatusApproved, ActionReject},
		{StatusRejected, ActionSubmit},
		{StatusRejected, ActionApprove},
		{StatusRejected, ActionReject},
		{StatusRejected, ActionRecommend},
	}
	for _, tt := range invalid {
		if CanTransition(tt.from, tt.action) {
			t.Errorf("expected %s to forbid %s", tt.from, tt.action)
		}
	}
}

func TestQueryFilterMatch(t *testing.T) {
	a := Achievement{
		Title:          "Solar Powered Irrigation Controller",
		OwnerID:        "u1",
		OwnerName:      "Alice Kalima",
		Category:       CategoryProject,
		Level:          LevelNational,
		Keywords:       []string{"solar", "irrigation", "embedded"},
		Status:         StatusApproved,
		Recommendation: &Recommendation{Level: 2},
	}
	tests := []struct {
		name   string
		filter QueryFilter
		match  bool
	}{
		{"empty filter", QueryFilter{}, true},
		{"status match", QueryFilter{Status: StatusApproved}, true},
		{"status mismatch", QueryFilter{Status: StatusPending}, false},
		{"title substring", QueryFilter{Search: "irrigation"}, true},
		{"title case-insensitive", QueryFilter{Search: "SOLAR"}, true},
		{"owner name", QueryFilter{Search: "kalima"}, true},
		{"keyword", QueryFilter{Search: "embedded"}, true},
		{"no substring", QueryFilter{Search: "robotics"}, false},
		{"owner id", QueryFilter{OwnerID: "u1"}, true},
		{"other owner", QueryFilter{OwnerID: "u2"}, false},
		{"category and level", QueryFilter{Category: CategoryProject, Level: LevelNational}, true},
		{"category mismatch", QueryFilter{Category: CategoryThesis}, false},
		{"recommended only", QueryFilter{RecommendedOnly: true}, true},
		{"min recommend level met", QueryFilter{MinRecommendLevel: 2}, true},
		{"min recommend level unmet", QueryFilter{MinRecommendLevel: 3}, false},
		{"combined AND fails on one", QueryFilter{Search: "solar", Status: StatusRejected}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(a); got != tt.match {
				t.Errorf("Match() = %v, expected %v", got, tt.match)
			}
		})
	}

	t.Run("unrecommended achievement", func(t *testing.T) {
		plain := a
		plain.Recommendation = nil
		if (&QueryFilter{RecommendedOnly: true}).Match(plain) {
			t.Error("expected RecommendedOnly to exclude unrecommended achievements")
		}
		if (&QueryFilter{MinRecommendLevel: 1}).Match(plain) {
			t.Error("expected MinRecommendLevel to exclude unrecommended achievements")
		}
	})
}
