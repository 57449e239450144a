package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ExtCrs/extcourses/apps/api/echo"
	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/preference"
	"github.com/ExtCrs/extcourses/core/user"
	inmemdb "github.com/ExtCrs/extcourses/storage/database/inmem"
	"github.com/ExtCrs/extcourses/testutil"
)

const (
	orgID      = "0b5f6e52-5c1a-4a8e-9e6f-6f8d1a2b3c4d"
	otherOrgID = "7d0c9a1e-2f44-4b8e-8a51-3e9b0c7f1d22"
	courseRef  = "course-instance-1"
)

var (
	conf = core.NewTestConfig()

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testApp struct {
	srv      *Server
	users    user.Repository
	logger   *testutil.Logger
	notifier *testutil.Notifier
}

func setup(t *testing.T) *testApp {
	db := inmemdb.Open()
	app := &testApp{
		users:    inmemdb.NewUserRepository(db),
		logger:   testutil.NewLogger(),
		notifier: &testutil.Notifier{},
	}
	usrSvc := user.NewService(app.users)
	lessonSvc := lesson.NewServiceMock(
		inmemdb.NewLessonRepository(db), testutil.Catalog(), usrSvc, app.notifier, app.logger, nil,
	)
	validate, translator := testutil.NewValidator()

	app.srv = NewServer(&Options{
		AppName:        conf.AppName,
		SecretKey:      []byte(conf.SecretKey),
		TestMode:       true,
		DisableReqLogs: true,
		Logger:         app.logger,
		Validate:       validate,
		Translator:     translator,
		LessonSvc:      lessonSvc,
		UserSvc:        usrSvc,
		PreferenceSvc:  preference.NewService(inmemdb.NewPreferenceRepository(db)),
	})
	return app
}

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.srv.ServeHTTP(rec, req)
	return rec
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
	claims := GetUserClaims(usr, conf.AppName, time.Hour)
	token, err := GenerateToken(claims, []byte(conf.SecretKey))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(newAuthRequest(method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

// decode asserts the response code and unmarshals the body into dest.
func decode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, dest interface{}) {
	require.Equal(t, wantCode, rec.Code, rec.Body.String())
	if dest != nil {
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
	}
}

func coursePath(prefix, suffix string) string {
	v := make(url.Values)
	v.Set("course_no", testutil.CourseNo)
	v.Set("lang", testutil.Lang)
	return prefix + "/courses/" + courseRef + suffix + "?" + v.Encode()
}

func myPath(suffix string) string {
	return coursePath("/v1/me", suffix)
}

func studentPath(studentID, suffix string) string {
	return coursePath("/v1/review/students/"+studentID, suffix)
}
