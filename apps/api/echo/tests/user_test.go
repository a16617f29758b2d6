package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core/user"
	emailsvc "github.com/trezcool/ratiba/services/email"
	testutil "github.com/trezcool/ratiba/tests"
)

func Test_userApi_login(t *testing.T) {
	ta := setup(t)

	usr := testutil.CreateUser(t, ta.usrRepo, "Timon", "timon", "timon@test.cd", "LionKing!", nil, true)
	testutil.CreateUser(t, ta.usrRepo, "Scar", "scarface", "scar@test.cd", "LionKing!", nil, false)

	tests := []httpTest{
		{
			name: "empty payload", body: marchallObj(t, echo.Map{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, echo.Map{"username": "nobody", "password": "LionKing!"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echo.Map{"username": usr.Username, "password": "HakunaMatata"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echo.Map{"username": "scarface", "password": "LionKing!"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login ok", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"username": usr.Username, "password": "LionKing!"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.NotEmpty(t, res.Token)
	})

	t.Run("login with email and google token", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"username": usr.Email, "password": "LionKing!", "google_token": "ya29.google"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		// the Google access token was captured for later classroom calls
		refreshed, err := ta.usrRepo.GetUserByID(context.Background(), usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		assert.Equal(t, "ya29.google", refreshed.GoogleToken)
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	ta := setup(t)

	usr := testutil.CreateUser(t, ta.usrRepo, "Timon", "timon", "timon@test.cd", "LionKing!", nil, true)

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		ta.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("refresh ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.NotEmpty(t, res.Token)
	})
}

func Test_userApi_register(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admino", "admin@test.cd", "LionKing!", user.AdminRoles, true)
	student := testutil.CreateUser(t, ta.usrRepo, "Student", "studento", "student@test.cd", "LionKing!", user.StudentRoles, true)
	adminToken := getToken(t, admin)

	newUsr := echo.Map{
		"name": "Pumbaa", "username": "pumbaa7", "email": "pumbaa@test.cd",
		"password": "W4rth0g#Life", "password_confirm": "W4rth0g#Life",
		"roles": user.StudentRoles,
	}

	tests := []httpTest{
		{
			name: "Auth required", body: marchallObj(t, newUsr),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", token: getToken(t, student), body: marchallObj(t, newUsr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "name required", token: adminToken,
			body: marchallObj(t, echo.Map{
				"username": "pumbaa7", "email": "pumbaa@test.cd",
				"password": "W4rth0g#Life", "password_confirm": "W4rth0g#Life",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "username or email required", token: adminToken,
			body: marchallObj(t, echo.Map{
				"name": "Pumbaa", "password": "W4rth0g#Life", "password_confirm": "W4rth0g#Life",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "one of username or email is required",
				"email":    "one of username or email is required",
			}),
		},
		{
			name: "password policy applies", token: adminToken,
			body: marchallObj(t, echo.Map{
				"name": "Pumbaa", "username": "pumbaa7", "email": "pumbaa@test.cd",
				"password": "short", "password_confirm": "short",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "cannot grant a higher role", token: adminToken,
			body: marchallObj(t, echo.Map{
				"name": "Sneaky", "username": "sneaky1", "email": "sneaky@test.cd",
				"password": "W4rth0g#Life", "password_confirm": "W4rth0g#Life",
				"roles": []string{user.RoleAdminOwner},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("register ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, marchallObj(t, newUsr))
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var created user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.Equal(t, "pumbaa7", created.Username)
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.Active())
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, marchallObj(t, newUsr))
		ta.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_userApi_query(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admino", "admin@test.cd", "LionKing!", user.AdminRoles, true)
	student := testutil.CreateUser(t, ta.usrRepo, "Student", "studento", "student@test.cd", "LionKing!", user.StudentRoles, true)
	other := testutil.CreateUser(t, ta.usrRepo, "Zazu", "zazu11", "zazu@test.cd", "LionKing!", user.StudentRoles, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, admin, student, other),
		},
		{
			name: "ordering=-username", path: "/v1/users?ordering=-username", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, other, student, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admino", "admin@test.cd", "LionKing!", user.AdminRoles, true)
	student := testutil.CreateUser(t, ta.usrRepo, "Student", "studento", "student@test.cd", "LionKing!", user.StudentRoles, true)
	other := testutil.CreateUser(t, ta.usrRepo, "Zazu", "zazu11", "zazu@test.cd", "LionKing!", user.StudentRoles, true)
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "retrieve self", method: http.MethodGet, path: "/v1/users/" + student.ID, token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "cannot retrieve another user", method: http.MethodGet, path: "/v1/users/" + other.ID, token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "admin retrieves anyone", method: http.MethodGet, path: "/v1/users/" + other.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, other),
		},
		{
			name: "non-admin cannot change roles", method: http.MethodPut, path: "/v1/users/" + student.ID, token: studentToken,
			body:     marchallObj(t, echo.Map{"roles": user.AdminRoles}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non-admin cannot destroy", method: http.MethodDelete, path: "/v1/users/" + student.ID, token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "admin cannot destroy themselves", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("update self name", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"name": "Studious"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, studentToken, body)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var updated user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.Equal(t, "Studious", updated.Name)
		assert.Equal(t, student.Username, updated.Username)
	})

	t.Run("admin destroys another user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+other.ID, adminToken)
		ta.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, adminToken)
		ta.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

var resetLinkRegex = regexp.MustCompile(`uid=([^&\s]+)&token=([^&\s]+)`)

func Test_userApi_passwordReset(t *testing.T) {
	ta := setup(t)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	usr := testutil.CreateUser(t, ta.usrRepo, "Timon", "timon", "timon@test.cd", "LionKing!", nil, true)

	t.Run("request reset", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"email": usr.Email})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		if !assert.Len(t, emailsvc.SentMessages, 1) {
			t.FailNow()
		}
	})

	t.Run("unknown email still succeeds", func(t *testing.T) {
		body := marchallObj(t, echo.Map{"email": "nobody@test.cd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
		ta.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		// no mail for unknown accounts
		assert.Len(t, emailsvc.SentMessages, 1)
	})

	t.Run("confirm reset and log in with the new password", func(t *testing.T) {
		match := resetLinkRegex.FindStringSubmatch(emailsvc.SentMessages[0].Body)
		if len(match) != 3 {
			t.Fatalf("no reset link found in %q", emailsvc.SentMessages[0].Body)
		}
		uid, token := match[1], match[2]

		body := marchallObj(t, echo.Map{
			"uid": uid, "token": token,
			"password": "Mufasa&Simba", "password_confirm": "Mufasa&Simba",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
		ta.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		login := marchallObj(t, echo.Map{"username": usr.Username, "password": "Mufasa&Simba"})
		req, rec = newRequest(http.MethodPost, "/v1/users/login", login)
		ta.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("used token is rejected", func(t *testing.T) {
		match := resetLinkRegex.FindStringSubmatch(emailsvc.SentMessages[0].Body)
		uid, token := match[1], match[2]

		body := marchallObj(t, echo.Map{
			"uid": uid, "token": token,
			"password": "An0ther&Pwd", "password_confirm": "An0ther&Pwd",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
		ta.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
