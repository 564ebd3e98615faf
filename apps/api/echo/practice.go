package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core/practice"
	"github.com/trezcool/wordwise/services/speech"
)

type practiceApi struct {
	target string
}

func registerPracticeAPI(g *echo.Group, target string) {
	api := practiceApi{target: target}

	pg := g.Group("/practice")
	pg.GET("", api.page)
	pg.POST("/listen", api.listen)
	pg.POST("/check", api.check)
}

// newController wires a practice controller to a cue recorder: the browser plays the cues.
func (api *practiceApi) newController() (*practice.Controller, *speech.Recorder) {
	rec := speech.NewRecorder()
	return practice.NewController(api.target, rec, rec, rec), rec
}

// Handlers

func (api *practiceApi) page(ctx echo.Context) error {
	c, rec := api.newController()
	c.PlayTarget()
	return ctx.JSON(http.StatusOK, PracticeResponse{State: c.State(), Cues: rec.Cues()})
}

func (api *practiceApi) listen(ctx echo.Context) error {
	var data TranscriptRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TranscriptRequest")
	}

	c, rec := api.newController()
	c.HandleTranscript(data.Transcript, data.Listening)
	if err := c.Listen(); err != nil {
		return errors.Wrap(toHTTPError(err), "starting to listen")
	}
	return ctx.JSON(http.StatusOK, PracticeResponse{State: c.State(), Cues: rec.Cues()})
}

func (api *practiceApi) check(ctx echo.Context) error {
	var data TranscriptRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TranscriptRequest")
	}

	c, rec := api.newController()
	c.HandleTranscript(data.Transcript, data.Listening)
	res := c.Check()
	return ctx.JSON(http.StatusOK, CheckResponse{Result: res, Cues: rec.Cues()})
}

type (
	// TranscriptRequest carries what the browser recognizer reported so far.
	TranscriptRequest struct {
		Transcript string `json:"transcript"`
		Listening  bool   `json:"listening"`
	}

	PracticeResponse struct {
		practice.State
		Cues []speech.Cue `json:"cues"`
	}

	CheckResponse struct {
		practice.Result
		Cues []speech.Cue `json:"cues"`
	}
)
