package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
	"github.com/trezcool/wordwise/core/user"
)

type Server struct {
	conf     *core.Config
	deps     core.Deps
	userSvc  *user.Service
	auth     *authConfig
	limiter  *clientLimiter
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	store docstore.Store,
	validate *validator.Validate,
	translator ut.Translator,
) *Server {
	s := &Server{
		conf: conf,
		deps: core.Deps{
			Store:      store,
			Validate:   validate,
			Translator: translator,
			Logger:     logger,
		},
		userSvc:  user.NewService(store, validate, translator),
		auth:     newAuthConfig(conf),
		limiter:  newClientLimiter(conf.Server.LoginRateLimit, conf.Server.LoginRateBurst),
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)
	optionalJWT := middleware.JWTWithConfig(s.auth.optionalJWTConfig())

	registerUserAPI(v1, jwt, s.limiter.middleware(), s.userSvc, s.deps, s.auth)
	registerWordAPI(v1, jwt, s.deps)
	registerAssignmentAPI(v1, jwt, optionalJWT, s.userSvc, s.deps)
	registerPracticeAPI(v1, s.conf.Practice.TargetWord)
}

// Start listens until the server is shut down. Listen errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Token returns a signed token for usr.
func (s *Server) Token(usr user.User) (string, error) {
	return s.auth.generateToken(s.auth.userClaims(usr))
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
