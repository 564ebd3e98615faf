package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/user"
)

type userApi struct {
	svc  *user.Service
	deps core.Deps
	auth *authConfig
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	loginLimiter echo.MiddlewareFunc,
	svc *user.Service,
	deps core.Deps,
	auth *authConfig,
) {
	api := userApi{svc: svc, deps: deps, auth: auth}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login, loginLimiter)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
}

// navigator remembers where the login screen wants to go.
type navigator struct {
	mu   sync.Mutex
	path string
}

func (n *navigator) NavigateTo(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *navigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	nav := new(navigator)
	login := user.NewLoginController(user.NewSession(api.svc), nav, api.deps.Logger)
	login.Form.Set(data)

	usr, err := login.Submit(requestContext(ctx))
	if err != nil {
		return errors.Wrap(toHTTPError(err), "authenticating")
	}

	token, err := api.auth.generateToken(api.auth.userClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Redirect: nav.Path()})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr.Public())
}

type LoginResponse struct {
	Token    string `json:"token"`
	Redirect string `json:"redirect,omitempty"`
}
