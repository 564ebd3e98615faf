package echoapi

import (
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/user"
	testutil "github.com/trezcool/wordwise/tests"
)

func TestHome(t *testing.T) {
	f := setup(t)
	rec := f.do(t, httpTest{method: http.MethodGet, path: "/"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Wordwise API!", rec.Body.String())
}

func TestUserApi_login(t *testing.T) {
	f := setup(t)
	testutil.CreateUser(t, f.store, "Bob", "bob@wordwise.io", pwd, []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     marchallObj(t, user.Credentials{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, user.Credentials{Email: "ada@wordwise.io", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, user.Credentials{Email: "eve@wordwise.io", Password: pwd}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated",
			body:     marchallObj(t, user.Credentials{Email: "bob@wordwise.io", Password: pwd}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodPost, "/v1/users/login"
			checkCodeAndData(t, tt, f.do(t, tt))
		})
	}

	redirects := []struct {
		name  string
		email string
		usr   user.User
		want  string
	}{
		{name: "teacher", email: "GRACE@wordwise.io ", usr: f.teacher, want: user.DashboardPath},
		{name: "student", email: "ada@wordwise.io", usr: f.student, want: user.AssignmentsPath},
	}
	for _, tt := range redirects {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, httpTest{
				method: http.MethodPost,
				path:   "/v1/users/login",
				body:   marchallObj(t, user.Credentials{Email: tt.email, Password: pwd}),
			})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp LoginResponse
			unmarshalBody(t, rec, &resp)
			assert.Equal(t, tt.want, resp.Redirect)

			claims := new(Claims)
			_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
				return []byte("secret"), nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.usr.ID, claims.Subject)
			assert.Equal(t, tt.usr.IsTeacher(), claims.IsTeacher)
			assert.Equal(t, tt.usr.IsStudent(), claims.IsStudent)
		})
	}
}

func TestUserApi_login_rateLimited(t *testing.T) {
	f := setup(t, func(conf *core.Config) {
		conf.Server.LoginRateLimit = 0.001
		conf.Server.LoginRateBurst = 2
	})
	tt := httpTest{
		method: http.MethodPost,
		path:   "/v1/users/login",
		body:   marchallObj(t, user.Credentials{Email: "ada@wordwise.io", Password: "nope"}),
	}

	assert.Equal(t, http.StatusBadRequest, f.do(t, tt).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, tt).Code)

	tt.wantCode = http.StatusTooManyRequests
	tt.wantData = marchallObj(t, httpErr{Error: "Too many requests. Please slow down."})
	checkCodeAndData(t, tt, f.do(t, tt))
}

func TestUserApi_me(t *testing.T) {
	f := setup(t)
	token := getToken(t, f.server, f.student)
	tests := []httpTest{
		{
			name:     "no token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "bad token",
			token:    "garbage",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name:     "valid token",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, f.student.Public()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodGet, "/v1/users/me"
			checkCodeAndData(t, tt, f.do(t, tt))
		})
	}
}

func TestUserApi_refreshToken(t *testing.T) {
	f := setup(t)
	inactive := testutil.CreateUser(t, f.store, "Bob", "bob@wordwise.io", pwd, []string{user.RoleStudent}, false)

	t.Run("valid", func(t *testing.T) {
		rec := f.do(t, httpTest{method: http.MethodPost, path: "/v1/users/token-refresh", token: getToken(t, f.server, f.student)})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp LoginResponse
		unmarshalBody(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("deactivated", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			token:    getToken(t, f.server, inactive),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		}
		checkCodeAndData(t, tt, f.do(t, tt))
	})

	t.Run("refresh expired", func(t *testing.T) {
		claims := f.server.auth.userClaims(f.student, 1)
		token, err := f.server.auth.generateToken(claims)
		require.NoError(t, err)
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		}
		checkCodeAndData(t, tt, f.do(t, tt))
	})
}
