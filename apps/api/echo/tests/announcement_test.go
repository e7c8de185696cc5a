package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/vitrine/core/announcement"
	"github.com/trezcool/vitrine/core/user"
	testutil "github.com/trezcool/vitrine/tests"
)

func Test_announcementApi(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	first, err := annSvc.Create(context.Background(), admin, announcement.NewAnnouncement{
		Title:   "Spring Showcase",
		Content: "The spring showcase opens for submissions next Monday.",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	second, err := annSvc.Create(context.Background(), admin, announcement.NewAnnouncement{
		Title:   "Review Deadline",
		Content: "All pending submissions will be reviewed by the end of the month.",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	newAnn := marchallObj(t, announcement.NewAnnouncement{
		Title:   "Winners Announced",
		Content: "Congratulations to this season's recommended achievements!",
	})

	tests := []httpTest{
		// public reads, newest first
		{name: "List is public", method: http.MethodGet, path: "/api/announcements", wantCode: http.StatusOK, wantData: marchallList(t, second, first)},
		{
			name: "Search", method: http.MethodGet, path: "/api/announcements?q=showcase",
			wantCode: http.StatusOK, wantData: marchallList(t, first),
		},
		{name: "Retrieve is public", method: http.MethodGet, path: "/api/announcements/" + first.ID, wantCode: http.StatusOK, wantData: marchallObj(t, first)},
		{
			name: "Unknown id", method: http.MethodGet, path: "/api/announcements/lol",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "announcement not found"}),
		},
		// admin-only writes
		{
			name: "Create needs auth", method: http.MethodPost, path: "/api/announcements", body: newAnn,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Create is admin only", method: http.MethodPost, path: "/api/announcements", body: newAnn, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Content is required", method: http.MethodPost, path: "/api/announcements", token: getToken(t, admin),
			body:     marchallObj(t, announcement.NewAnnouncement{Title: "No Content"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"content": "this field is required"}),
		},
		{name: "Admin creates", method: http.MethodPost, path: "/api/announcements", body: newAnn, token: getToken(t, admin), wantCode: http.StatusCreated},
		{
			name: "Delete is admin only", method: http.MethodDelete, path: "/api/announcements/" + second.ID, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Admin deletes", method: http.MethodDelete, path: "/api/announcements/" + second.ID, token: getToken(t, admin), wantCode: http.StatusNoContent},
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

	// deleted announcements are gone
	req, rec := newRequest(http.MethodGet, "/api/announcements/"+second.ID)
	app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "announcement not found"})}
	checkCodeAndData(t, tt, rec)
}
