package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/word"
)

type wordApi struct {
	deps core.Deps
}

func registerWordAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps core.Deps) {
	api := wordApi{deps: deps}

	wg := g.Group("/words", jwt, teacherMiddleware())
	wg.GET("", api.query)
	wg.POST("", api.create)
}

// Handlers

// query renders the dashboard. A failed load is reported in the state, not as an error.
func (api *wordApi) query(ctx echo.Context) error {
	dash := word.NewDashboard(api.deps)
	_ = dash.Activate(requestContext(ctx))
	return ctx.JSON(http.StatusOK, dash.State())
}

func (api *wordApi) create(ctx echo.Context) error {
	var data word.NewWord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWord")
	}

	dash := word.NewDashboard(api.deps)
	dash.Form.Set(data)
	if err := dash.AddWord(requestContext(ctx)); err != nil {
		return errors.Wrap(err, "adding word")
	}
	return ctx.JSON(http.StatusCreated, dash.State())
}
