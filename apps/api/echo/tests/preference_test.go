package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ExtCrs/extcourses/core/user"
	"github.com/ExtCrs/extcourses/testutil"
)

func Test_preferenceApi_activeLesson(t *testing.T) {
	app := setup(t)
	student := testutil.CreateUser(t, app.users, "Анна", "anna@example.com", user.RoleLearner, orgID)
	other := testutil.CreateUser(t, app.users, "Борис", "boris@example.com", user.RoleLearner, orgID)
	token := getToken(t, student)
	path := "/v1/me/courses/" + courseRef + "/active-lesson"

	request := func(method, token, clientCtx string, body ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
		req, rec := newAuthRequest(method, path, token, body...)
		if clientCtx != "" {
			req.Header.Set("X-Client-Context", clientCtx)
		}
		return req, rec
	}

	t.Run("context required", func(t *testing.T) {
		rec := app.do(request(http.MethodGet, token, ""))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "missing X-Client-Context header"}),
		}, rec)
	})

	t.Run("nothing stored", func(t *testing.T) {
		decode(t, app.do(request(http.MethodGet, token, "tab-1")), http.StatusNoContent, nil)
	})

	t.Run("invalid lesson", func(t *testing.T) {
		decode(t, app.do(request(http.MethodPut, token, "tab-1", []byte(`{"lesson_id": 0}`))), http.StatusBadRequest, nil)
	})

	t.Run("set and get", func(t *testing.T) {
		decode(t, app.do(request(http.MethodPut, token, "tab-1", []byte(`{"lesson_id": 3}`))), http.StatusNoContent, nil)

		var data map[string]int
		decode(t, app.do(request(http.MethodGet, token, "tab-1")), http.StatusOK, &data)
		assert.Equal(t, 3, data["lesson_id"])
	})

	t.Run("contexts are isolated", func(t *testing.T) {
		decode(t, app.do(request(http.MethodGet, token, "tab-2")), http.StatusNoContent, nil)
		decode(t, app.do(request(http.MethodGet, getToken(t, other), "tab-1")), http.StatusNoContent, nil)
	})
}
