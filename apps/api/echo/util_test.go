package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/user"
	logsvc "github.com/trezcool/academia/services/logger"
)

const (
	academyID         int64 = 1
	inactiveAcademyID int64 = 2
)

var (
	testConf = &core.Config{
		TestMode:  true,
		AppName:   "Academia",
		SecretKey: "not-so-secret",
		Env:       "TEST",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}

	admin    = testUser(1, "admin", true, true)
	student  = testUser(2, "student", false, true)
	naughty  = testUser(3, "naughty", false, false)
	testPass = "secret-pass"
)

func testUser(id int64, uname string, staff, active bool) user.User {
	usr := user.User{
		ID:        id,
		Email:     uname + "@academia.test",
		Username:  null.StringFrom(uname),
		FirstName: uname,
		IsActive:  active,
		IsStaff:   staff,
		CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_ = usr.SetPassword(testPass)
	return usr
}

// Fakes: each embeds its service interface and only overrides what the handlers under test call.

type fakeUserSvc struct {
	user.Service
	users   map[int64]user.User
	resets  []string
	deleted []int64
}

func newFakeUserSvc(users ...user.User) *fakeUserSvc {
	svc := &fakeUserSvc{users: make(map[int64]user.User)}
	for _, usr := range users {
		svc.users[usr.ID] = usr
	}
	return svc
}

func (f *fakeUserSvc) GetByID(_ context.Context, id int64) (user.User, error) {
	if usr, ok := f.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserSvc) GetByUsernameOrEmail(_ context.Context, uname string) (user.User, error) {
	for _, usr := range f.users {
		if usr.Username.String == uname || usr.Email == uname {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserSvc) SetLastLogin(_ context.Context, usr user.User) (user.User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	f.users[usr.ID] = usr
	return usr, nil
}

func (f *fakeUserSvc) Query(_ context.Context, _ *user.QueryFilter, _ []core.DBOrdering, page core.Pagination) ([]user.User, int, error) {
	users := make([]user.User, 0, len(f.users))
	for _, usr := range f.users {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	limit, offset := page.Window()
	count := len(users)
	if offset > count {
		offset = count
	}
	if end := offset + limit; end < count {
		users = users[offset:end]
	} else {
		users = users[offset:]
	}
	return users, count, nil
}

func (f *fakeUserSvc) RequestPasswordReset(_ context.Context, email string) error {
	f.resets = append(f.resets, email)
	return nil
}

func (f *fakeUserSvc) Delete(_ context.Context, ids ...int64) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

type grant struct {
	userID     int64
	academyID  int64
	capability string
}

// fakeAuthzRepo backs the real authz service.
type fakeAuthzRepo struct {
	authz.Repository
	grants   map[grant]bool
	statuses map[int64]string
	profiles map[int64][]authz.ProfileAcademy
}

func (r *fakeAuthzRepo) allow(userID, academyID int64, caps ...string) {
	for _, c := range caps {
		r.grants[grant{userID, academyID, c}] = true
	}
}

func (r *fakeAuthzRepo) HasCapability(_ context.Context, userID, academyID int64, capability string) (bool, error) {
	return r.grants[grant{userID, academyID, capability}], nil
}

func (r *fakeAuthzRepo) GetAcademyStatus(_ context.Context, id int64) (authz.AcademyStatus, error) {
	status, ok := r.statuses[id]
	if !ok {
		status = authz.AcademyActive
	}
	return authz.AcademyStatus{ID: id, Status: status}, nil
}

func (r *fakeAuthzRepo) QueryUserProfiles(_ context.Context, userID int64) ([]authz.ProfileAcademy, error) {
	return r.profiles[userID], nil
}

func (r *fakeAuthzRepo) QueryRoles(context.Context) ([]authz.Role, error) {
	return authz.DefaultRoles, nil
}

func (r *fakeAuthzRepo) QueryMembers(_ context.Context, academyID int64, _ authz.MemberFilter, _ core.Pagination) ([]authz.ProfileAcademy, int, error) {
	var members []authz.ProfileAcademy
	for _, profiles := range r.profiles {
		for _, p := range profiles {
			if p.AcademyID == academyID {
				members = append(members, p)
			}
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, len(members), nil
}

type testEnv struct {
	srv       *Server
	users     *fakeUserSvc
	authzRepo *fakeAuthzRepo
}

// setup builds a server where admin holds every capability in academyID and inactiveAcademyID.
// opts may replace the module services with fakes.
func setup(t *testing.T, opts ...func(*ServerDeps)) *testEnv {
	t.Helper()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	users := newFakeUserSvc(admin, student, naughty)
	authzRepo := &fakeAuthzRepo{
		grants:   make(map[grant]bool),
		statuses: map[int64]string{inactiveAcademyID: authz.AcademyInactive},
		profiles: make(map[int64][]authz.ProfileAcademy),
	}
	for _, c := range authz.DefaultCapabilities {
		authzRepo.allow(admin.ID, academyID, c.Slug)
		authzRepo.allow(admin.ID, inactiveAcademyID, c.Slug)
	}

	deps := ServerDeps{
		Conf:           testConf,
		Logger:         logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), testConf),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        users,
		AuthzSvc:       authz.NewService(authzRepo, users),
		AdmissionsSvc:  &fakeAdmissionsSvc{},
		EventsSvc:      &fakeEventsSvc{},
		FeedbackSvc:    &fakeFeedbackSvc{},
		MonitoringSvc:  &fakeMonitoringSvc{},
		JobsSvc:        &fakeJobsSvc{},
		MarketingSvc:   &fakeMarketingSvc{},
		NotifySvc:      &fakeNotifySvc{},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testEnv{srv: NewServer(deps), users: users, authzRepo: authzRepo}
}

func (env *testEnv) do(t *testing.T, tt httpTest, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	env.srv.ServeHTTP(rec, req)
	return rec
}

// run executes the table against the server, sending the academy header when set.
func (env *testEnv) run(t *testing.T, tests []httpTest, academy string) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header []string
			if academy != "" {
				header = []string{"Academy", academy}
			}
			rec := env.do(t, tt, header...)
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
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

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, testConf), testConf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
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

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func errData(t *testing.T, code int, detail string) []byte {
	return marchallObj(t, httpErr{Detail: detail, StatusCode: code})
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
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
