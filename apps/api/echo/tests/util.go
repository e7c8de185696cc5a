package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/vitrine/apps/api/echo"
	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/achievement"
	"github.com/trezcool/vitrine/core/announcement"
	"github.com/trezcool/vitrine/core/requirement"
	"github.com/trezcool/vitrine/core/user"
	emailsvc "github.com/trezcool/vitrine/services/email"
	logsvc "github.com/trezcool/vitrine/services/logger"
	inmemdb "github.com/trezcool/vitrine/storage/database/inmem"
)

var (
	usrRepo user.Repository
	achRepo achievement.Repository
	annRepo announcement.Repository
	achSvc  achievement.Service
	annSvc  announcement.Service
	reqSvc  requirement.Service

	testConf *core.Config

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	conf := &core.Config{
		AppName:   "vitrine",
		SecretKey: []byte("secret"),
		TestMode:  true,
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: time.Hour,
			GuestJWTExpirationDelta:   10 * time.Minute,
		},
	}

	testConf = conf

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	achRepo = inmemdb.NewAchievementRepository(db)
	annRepo = inmemdb.NewAnnouncementRepository(db)
	reqRepo := inmemdb.NewRequirementRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	achSvc = achievement.NewServiceMock(achRepo, usrSvc, mailSvc, conf)
	annSvc = announcement.NewService(annRepo)
	reqSvc = requirement.NewService(reqRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	achievement.InitValidators(validate, translator)
	requirement.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			AchievementSvc:  achSvc,
			AnnouncementSvc: annSvc,
			RequirementSvc:  reqSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func getGuestToken(t *testing.T) string {
	token, err := GenerateToken(GetGuestClaims())
	if err != nil {
		t.Fatalf("getGuestToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
