package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/vitrine/core/requirement"
	"github.com/trezcool/vitrine/core/user"
	testutil "github.com/trezcool/vitrine/tests"
)

func Test_requirementApi(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Zero", "zero", "zero@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	first := testutil.CreateRequirement(t, reqSvc, student, "Robotics club partners")
	tutorReq := testutil.NewRequirement("Math tutor wanted")
	tutorReq.Type = string(requirement.TypeTutor)
	second, err := reqSvc.Create(context.Background(), student, tutorReq)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	newReq := marchallObj(t, testutil.NewRequirement("Competition teammates"))

	tests := []httpTest{
		// the board is members only
		{
			name: "List needs auth", method: http.MethodGet, path: "/api/requirements",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "List is closed to visitors", method: http.MethodGet, path: "/api/requirements", token: getGuestToken(t),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "List, newest first", method: http.MethodGet, path: "/api/requirements", token: getToken(t, other), wantCode: http.StatusOK, wantData: marchallList(t, second, first)},
		{
			name: "Search", method: http.MethodGet, path: "/api/requirements?q=robotics", token: getToken(t, other),
			wantCode: http.StatusOK, wantData: marchallList(t, first),
		},
		{
			name: "Filter by type", method: http.MethodGet, path: "/api/requirements?type=tutor", token: getToken(t, other),
			wantCode: http.StatusOK, wantData: marchallList(t, second),
		},
		{
			name: "Filters compose", method: http.MethodGet, path: "/api/requirements?q=tutor&type=project", token: getToken(t, other),
			wantCode: http.StatusOK, wantData: marchallObj(t, []requirement.Requirement{}),
		},
		{name: "Retrieve", method: http.MethodGet, path: "/api/requirements/" + first.ID, token: getToken(t, other), wantCode: http.StatusOK, wantData: marchallObj(t, first)},
		{
			name: "Unknown id", method: http.MethodGet, path: "/api/requirements/lol", token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "requirement not found"}),
		},
		// publishing
		{
			name: "Publish is closed to visitors", method: http.MethodPost, path: "/api/requirements", body: newReq, token: getGuestToken(t),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Description too short", method: http.MethodPost, path: "/api/requirements", token: getToken(t, student),
			body: marchallObj(t, requirement.NewRequirement{
				Title: "Short", Type: "project", Description: "too short", Contact: "wechat",
			}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"description": "description must be at least 20 characters in length"}),
		},
		{
			name: "Unknown type", method: http.MethodPost, path: "/api/requirements", token: getToken(t, student),
			body: marchallObj(t, requirement.NewRequirement{
				Title: "Typo", Type: "gig", Description: "a sufficiently detailed request body", Contact: "wechat",
			}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"type": "invalid requirement type"}),
		},
		{name: "Member publishes", method: http.MethodPost, path: "/api/requirements", body: newReq, token: getToken(t, student), wantCode: http.StatusCreated},
		// applications
		{
			name: "Publisher cannot apply", method: http.MethodPost, path: "/api/requirements/" + first.ID + "/apply", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Member applies", method: http.MethodPost, path: "/api/requirements/" + first.ID + "/apply", token: getToken(t, other), body: marchallObj(t, map[string]string{"message": "I build line followers."}), wantCode: http.StatusOK},
		{
			name: "Applying twice", method: http.MethodPost, path: "/api/requirements/" + first.ID + "/apply", token: getToken(t, other),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "already applied to this requirement"}),
		},
		// status
		{
			name: "Status change is publisher only", method: http.MethodPatch, path: "/api/requirements/" + first.ID + "/status", token: getToken(t, other),
			body:     marchallObj(t, map[string]string{"status": "in_progress"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unknown status", method: http.MethodPatch, path: "/api/requirements/" + first.ID + "/status", token: getToken(t, student),
			body:     marchallObj(t, map[string]string{"status": "done"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "invalid requirement status"}),
		},
		{name: "Publisher closes applications", method: http.MethodPatch, path: "/api/requirements/" + first.ID + "/status", token: getToken(t, student), body: marchallObj(t, map[string]string{"status": "in_progress"}), wantCode: http.StatusOK},
		{
			name: "Applying after closing", method: http.MethodPost, path: "/api/requirements/" + first.ID + "/apply", token: getToken(t, admin),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "action not allowed in the requirement's current state"}),
		},
		// removal
		{
			name: "Delete is publisher only", method: http.MethodDelete, path: "/api/requirements/" + second.ID, token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Publisher deletes", method: http.MethodDelete, path: "/api/requirements/" + second.ID, token: getToken(t, student), wantCode: http.StatusNoContent},
		{name: "Admin deletes", method: http.MethodDelete, path: "/api/requirements/" + first.ID, token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
