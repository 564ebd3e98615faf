package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/user"
	testutil "github.com/trezcool/wordwise/tests"
)

const pwd = "Passw0rd!"

func newService(t *testing.T) (*user.Service, *testutil.SpyStore) {
	store := testutil.NewSpyStore(nil)
	validate, translator := testutil.NewValidator()
	return user.NewService(store, validate, translator), store
}

func fieldErrors(t *testing.T, err error) map[string]string {
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "expected a validation error, got %v", err)
	flds := make(map[string]string)
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := testutil.NewValidator()
	valid := func() user.NewUser {
		return user.NewUser{Name: "Ada", Email: "ada@wordwise.io", Password: pwd, PasswordConfirm: pwd, Roles: []string{user.RoleStudent}}
	}

	tests := []struct {
		name    string
		edit    func(nu *user.NewUser)
		wantErr map[string]string
	}{
		{name: "valid", edit: func(nu *user.NewUser) {}},
		{name: "no roles", edit: func(nu *user.NewUser) { nu.Roles = nil }},
		{
			name:    "missing name",
			edit:    func(nu *user.NewUser) { nu.Name = "  " },
			wantErr: map[string]string{"name": "this field is required"},
		},
		{
			name:    "bad email",
			edit:    func(nu *user.NewUser) { nu.Email = "ada" },
			wantErr: map[string]string{"email": "email must be a valid email address"},
		},
		{
			name:    "bad role",
			edit:    func(nu *user.NewUser) { nu.Roles = []string{"teacher"} },
			wantErr: map[string]string{"roles": "invalid roles"},
		},
		{
			name:    "confirm mismatch",
			edit:    func(nu *user.NewUser) { nu.PasswordConfirm = "Passw0rd?" },
			wantErr: map[string]string{"password_confirm": "password_confirm must be equal to Password"},
		},
		{
			name: "too short",
			edit: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "Pa0!", "Pa0!" },
			wantErr: map[string]string{"password": "password must contain at least 8 characters"},
		},
		{
			name: "whitespace",
			edit: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "Pass w0rd!", "Pass w0rd!" },
			wantErr: map[string]string{"password": "password must not contain whitespace"},
		},
		{
			name: "all numeric",
			edit: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "12345678", "12345678" },
			wantErr: map[string]string{"password": "password cannot be entirely numeric"},
		},
		{
			name: "too simple",
			edit: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "password", "password" },
			wantErr: map[string]string{"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		},
		{
			name: "similar to email",
			edit: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "Ada@wordwise.io1", "Ada@wordwise.io1" },
			wantErr: map[string]string{"password": "password cannot be similar to user attributes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.edit(&nu)
			err := nu.Validate(validate, translator)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			flds := fieldErrors(t, err)
			for fld, msg := range tt.wantErr {
				assert.Equal(t, msg, flds[fld], fld)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	usr, err := svc.Create(ctx, user.NewUser{
		Name:            " Ada ",
		Email:           "Ada@WordWise.io",
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           []string{user.RoleStudent},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "Ada", usr.Name)
	assert.Equal(t, "ada@wordwise.io", usr.Email)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsStudent())
	assert.NoError(t, usr.CheckPassword(pwd))

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.Email, got.Email)
	assert.NoError(t, got.CheckPassword(pwd))

	_, err = svc.Create(ctx, user.NewUser{Name: "Ada 2", Email: "ada@wordwise.io", Password: pwd, PasswordConfirm: pwd})
	assert.Equal(t, user.ErrEmailExists.Error(), fieldErrors(t, err)["email"])

	_, err = svc.GetByID(ctx, "nope")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	active := testutil.CreateUser(t, store, "Ada", "ada@wordwise.io", pwd, []string{user.RoleStudent}, true)
	testutil.CreateUser(t, store, "Bob", "bob@wordwise.io", pwd, []string{user.RoleTeacher}, false)

	tests := []struct {
		name    string
		creds   user.Credentials
		wantErr error
	}{
		{name: "valid", creds: user.Credentials{Email: " ADA@wordwise.io", Password: pwd}},
		{name: "wrong password", creds: user.Credentials{Email: "ada@wordwise.io", Password: "nope"}, wantErr: user.ErrAuthenticationFailed},
		{name: "unknown email", creds: user.Credentials{Email: "eve@wordwise.io", Password: pwd}, wantErr: user.ErrAuthenticationFailed},
		{name: "deactivated", creds: user.Credentials{Email: "bob@wordwise.io", Password: pwd}, wantErr: user.ErrAccountDeactivated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.True(t, user.IsAuthError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, active.ID, usr.ID)
			assert.False(t, usr.LastLogin.IsZero())

			stored, err := svc.GetByID(ctx, active.ID)
			require.NoError(t, err)
			assert.True(t, usr.LastLogin.Equal(stored.LastLogin))
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		store.Reset()
		_, err := svc.Authenticate(ctx, user.Credentials{})
		assert.True(t, core.IsValidationError(err))
		assert.Zero(t, store.TotalCalls())
	})

	t.Run("store failure", func(t *testing.T) {
		store.Fail(testutil.OpQuery, errors.New("network down"))
		defer store.Fail(testutil.OpQuery, nil)
		_, err := svc.Authenticate(ctx, user.Credentials{Email: "ada@wordwise.io", Password: pwd})
		assert.Error(t, err)
		assert.False(t, user.IsAuthError(err))
	})
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	testutil.CreateUser(t, store, "Ada", "ada@wordwise.io", pwd, []string{user.RoleStudent}, true)

	newPwd := "N3w-Passw0rd"
	_, err := svc.ResetPassword(ctx, user.ResetUserPassword{Email: "ada@wordwise.io", Password: newPwd, PasswordConfirm: newPwd})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, user.Credentials{Email: "ada@wordwise.io", Password: pwd})
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	_, err = svc.Authenticate(ctx, user.Credentials{Email: "ada@wordwise.io", Password: newPwd})
	assert.NoError(t, err)

	_, err = svc.ResetPassword(ctx, user.ResetUserPassword{Email: "eve@wordwise.io", Password: newPwd, PasswordConfirm: newPwd})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	ada := testutil.CreateUser(t, store, "Ada", "ada@wordwise.io", pwd, []string{user.RoleStudent}, true)
	session := user.NewSession(svc)

	var seen []*user.User
	unsubscribe := session.OnUserChanged(func(usr *user.User) { seen = append(seen, usr) })
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])

	_, err := session.SignIn(ctx, "ada@wordwise.io", "nope")
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	assert.Len(t, seen, 1)
	assert.Nil(t, session.CurrentUser())

	_, err = session.SignIn(ctx, "ada@wordwise.io", pwd)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, ada.ID, seen[1].ID)
	assert.Equal(t, ada.ID, session.CurrentUser().ID)

	session.SignOut()
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2])

	unsubscribe()
	session.Resume(ada)
	assert.Len(t, seen, 3)
	assert.Equal(t, ada.ID, session.CurrentUser().ID)

	// late subscribers get the current user right away
	var late *user.User
	session.OnUserChanged(func(usr *user.User) { late = usr })
	require.NotNil(t, late)
	assert.Equal(t, ada.ID, late.ID)
}

type navigator struct {
	paths []string
}

func (n *navigator) NavigateTo(path string) { n.paths = append(n.paths, path) }

func TestLoginController(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	testutil.CreateUser(t, store, "Ada", "ada@wordwise.io", pwd, []string{user.RoleStudent}, true)
	testutil.CreateUser(t, store, "Grace", "grace@wordwise.io", pwd, []string{user.RoleTeacher}, true)
	testutil.CreateUser(t, store, "Alan", "alan@wordwise.io", pwd, []string{user.RoleTeacher, user.RoleStudent}, true)

	tests := []struct {
		name      string
		creds     user.Credentials
		wantState user.LoginState
		wantPath  string
		wantMsg   string
	}{
		{name: "student", creds: user.Credentials{Email: "ada@wordwise.io", Password: pwd}, wantState: user.Authenticated, wantPath: user.AssignmentsPath},
		{name: "teacher", creds: user.Credentials{Email: "grace@wordwise.io", Password: pwd}, wantState: user.Authenticated, wantPath: user.DashboardPath},
		{name: "teacher and student", creds: user.Credentials{Email: "alan@wordwise.io", Password: pwd}, wantState: user.Authenticated, wantPath: user.DashboardPath},
		{
			name:      "bad credentials",
			creds:     user.Credentials{Email: "ada@wordwise.io", Password: "nope"},
			wantState: user.Anonymous,
			wantMsg:   "Login failed: " + user.ErrAuthenticationFailed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &navigator{}
			session := user.NewSession(svc)
			c := user.NewLoginController(session, nav, testutil.NewDeps(nil).Logger)
			assert.Equal(t, user.Anonymous, c.State())

			c.Form.Set(tt.creds)
			_, err := c.Submit(ctx)
			assert.Equal(t, tt.wantState, c.State())
			assert.Equal(t, tt.wantMsg, c.Message())

			if tt.wantPath == "" {
				assert.Error(t, err)
				assert.Empty(t, nav.paths)
				assert.Nil(t, session.CurrentUser())
				assert.Equal(t, tt.creds, c.Form.Value())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantPath}, nav.paths)
			assert.NotNil(t, session.CurrentUser())
		})
	}
}

func TestLoginController_authenticating(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	testutil.CreateUser(t, store, "Ada", "ada@wordwise.io", pwd, []string{user.RoleStudent}, true)

	nav := &navigator{}
	c := user.NewLoginController(user.NewSession(svc), nav, testutil.NewDeps(nil).Logger)
	c.Form.Set(user.Credentials{Email: "ada@wordwise.io", Password: pwd})

	var during user.LoginState
	var nested error
	store.Before = func(op string) {
		if op == testutil.OpQuery {
			during = c.State()
			_, nested = c.Submit(ctx)
		}
	}
	_, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.Authenticating, during)
	assert.Equal(t, user.ErrLoginInProgress, nested)
	assert.Equal(t, user.Authenticated, c.State())
}
