package user

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/listsync"
)

// Routes the login screen navigates to.
const (
	DashboardPath   = "/dashboard"
	AssignmentsPath = "/assignments"
)

// LoginState is the state of the login screen.
type LoginState int

const (
	Anonymous LoginState = iota
	Authenticating
	Authenticated
)

func (s LoginState) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

var ErrLoginInProgress = errors.New("a login is already in progress")

// HomePath is where usr lands after signing in.
func HomePath(usr User) string {
	if usr.IsStudent() && !usr.IsTeacher() {
		return AssignmentsPath
	}
	return DashboardPath
}

// LoginController drives the login screen.
type LoginController struct {
	Form listsync.Form[Credentials]

	session *Session
	nav     core.Navigator
	logger  core.Logger

	mu    sync.Mutex
	state LoginState
	msg   string
}

func NewLoginController(session *Session, nav core.Navigator, logger core.Logger) *LoginController {
	return &LoginController{session: session, nav: nav, logger: logger}
}

func (c *LoginController) State() LoginState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Message is the failure shown under the form, if any.
func (c *LoginController) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg
}

// Submit signs in with the form credentials. On success it navigates to the user's home screen;
// on failure it goes back to Anonymous with a message and keeps the form.
func (c *LoginController) Submit(ctx context.Context) (User, error) {
	c.mu.Lock()
	if c.state == Authenticating {
		c.mu.Unlock()
		return User{}, ErrLoginInProgress
	}
	c.state = Authenticating
	c.msg = ""
	c.mu.Unlock()

	creds := c.Form.Value()
	usr, err := c.session.SignIn(ctx, creds.Email, creds.Password)

	c.mu.Lock()
	if err != nil {
		c.state = Anonymous
		c.msg = "Login failed: " + err.Error()
		c.mu.Unlock()
		if !IsAuthError(err) && !core.IsValidationError(err) {
			c.logger.Error("login failed", errors.Wrap(err, "signing in"))
		}
		return User{}, err
	}
	c.state = Authenticated
	c.mu.Unlock()

	c.nav.NavigateTo(HomePath(usr))
	return usr, nil
}
