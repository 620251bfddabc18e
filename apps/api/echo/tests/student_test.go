package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/dossiers/apps/api/echo"
	"github.com/trezcool/dossiers/core/student"
	"github.com/trezcool/dossiers/tests"
)

func Test_studentApi_create(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.Conf, "Secrétariat")

	body := func(ns student.NewStudent) []byte {
		data, _ := json.Marshal(ns)
		return data
	}

	tests := []httpTest{
		{name: "Auth required", body: body(student.NewStudent{}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid token", body: body(student.NewStudent{}), token: "lol", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "invalid data", token: token, wantCode: http.StatusBadRequest,
			body: body(student.NewStudent{FirstName: "  ", GuardianEmail: "lol"}),
			wantData: marchallObj(t, map[string]string{
				"first_name":     "this field is required", // cleaned before validation
				"last_name":      "this field is required",
				"guardian_email": "guardian_email must be a valid email address",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", tt.token, tt.body)
			app.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("valid", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body(student.NewStudent{
			RegistrationNumber: " 2024-001",
			FirstName:          "Awa ",
			LastName:           "Diallo",
			GuardianEmail:      "Parent@Test.cd",
		}))
		app.srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var std student.Student
		unmarshal(t, rec, &std)
		assert.NotEmpty(t, std.ID)
		assert.Equal(t, "2024-001", std.RegistrationNumber)
		assert.Equal(t, "Awa", std.FirstName)
		assert.Equal(t, "parent@test.cd", std.GuardianEmail)

		stored, err := app.Students.Get(std.ID)
		if assert.NoError(t, err) {
			assert.Equal(t, "Diallo", stored.LastName)
		}
	})
}

func Test_studentApi_query(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.Conf, "Secrétariat")

	path := func(search, ordering string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/v1/students?" + v.Encode()
	}

	now := time.Now()
	awa := testutil.CreateStudent(t, app.StudentRepo, "Awa", "Diallo", "", now.Add(2*time.Hour))
	moussa := testutil.CreateStudent(t, app.StudentRepo, "Moussa", "Traoré", "", now)
	aminata := testutil.CreateStudent(t, app.StudentRepo, "Aminata", "Diallo", "parent@test.cd", now.Add(time.Hour))

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/students", token: token, wantData: marchallList(t, aminata, awa, moussa)},
		{name: "search (unknown)", path: path("lol", ""), token: token, wantData: marchallList(t)},
		{name: "search=dial", path: path("dial", ""), token: token, wantData: marchallList(t, aminata, awa)},
		{name: "ordering=-created_at", path: path("", "-created_at"), token: token, wantData: marchallList(t, awa, aminata, moussa)},
		{name: "ordering=first_name", path: path("", "first_name"), token: token, wantData: marchallList(t, aminata, awa, moussa)},
		{
			name: "unknown ordering ignored", path: path("", "password,-first_name"), token: token,
			wantData: marchallList(t, moussa, awa, aminata),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.Conf, "Secrétariat")
	awa := testutil.CreateStudent(t, app.StudentRepo, "Awa", "Diallo", "")
	notFound := marchallObj(t, httpErr{Error: "student not found"})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students/" + awa.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "not a uuid", path: "/v1/students/lol", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "unknown", path: "/v1/students/2b7bd0b5-0b0c-4c56-9f0f-3f1e8d0b3a11", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "found", path: "/v1/students/" + awa.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, awa)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_destroy(t *testing.T) {
	app := setup(t)
	awa := testutil.CreateStudent(t, app.StudentRepo, "Awa", "Diallo", "")
	path := "/v1/students/" + awa.ID

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: path, token: getToken(t, app.Conf, "Secrétariat"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "deleted", path: path, token: getToken(t, app.Conf, "Directrice", RoleAdmin), wantCode: http.StatusNoContent},
		{
			name: "already deleted", path: path, token: getToken(t, app.Conf, "Directrice", RoleAdmin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
