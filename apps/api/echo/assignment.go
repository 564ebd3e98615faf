package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/assignment"
	"github.com/trezcool/wordwise/core/user"
)

type assignmentApi struct {
	svc  *user.Service
	deps core.Deps
}

func registerAssignmentAPI(g *echo.Group, jwt, optionalJWT echo.MiddlewareFunc, svc *user.Service, deps core.Deps) {
	api := assignmentApi{svc: svc, deps: deps}

	ag := g.Group("/assignments")
	ag.GET("", api.query, optionalJWT)
	ag.POST("/:id/complete", api.complete, jwt, studentMiddleware())
}

// Handlers

// query renders the student's assignments, or a login prompt for anonymous visitors.
func (api *assignmentApi) query(ctx echo.Context) error {
	usr, err := getOptionalContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	board := assignment.NewBoard(api.deps)
	_ = board.Activate(requestContext(ctx), usr)
	return ctx.JSON(http.StatusOK, board.State())
}

func (api *assignmentApi) complete(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	board := assignment.NewBoard(api.deps)
	if err = board.Activate(requestContext(ctx), &usr); err != nil {
		return errors.Wrap(err, "loading assignments")
	}
	if err = board.MarkCompleted(requestContext(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(toHTTPError(err), "completing assignment")
	}
	return ctx.JSON(http.StatusOK, board.State())
}
