package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hocdan/guitarschool/core/exam"
)

type examApi struct {
	svc exam.Service
}

func registerExamAPI(g *echo.Group, svc exam.Service) {
	api := examApi{svc: svc}

	eg := g.Group("/exams")
	eg.POST("", api.create)
	eg.GET("/:id", api.retrieve)
	eg.GET("/:id/timer", api.timer)
	eg.GET("/:id/leaderboard", api.leaderboard)
	eg.POST("/:id/attempts", api.startAttempt)
	eg.PUT("/:id/attempts/:attemptID", api.saveProgress)
	eg.POST("/:id/attempts/:attemptID/submit", api.submit)
}

// Handlers

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding exam by ID")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) timer(ctx echo.Context) error {
	timer, err := api.svc.Timer(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing timer")
	}
	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return ctx.JSON(http.StatusOK, timer)
}

func (api *examApi) leaderboard(ctx echo.Context) error {
	board, err := api.svc.Leaderboard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "ranking attempts")
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *examApi) startAttempt(ctx echo.Context) error {
	var data exam.NewAttempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttempt")
	}
	attempt, err := api.svc.StartAttempt(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "starting attempt")
	}
	return ctx.JSON(http.StatusCreated, attempt)
}

func (api *examApi) saveProgress(ctx echo.Context) error {
	var data exam.ScoreUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoreUpdate")
	}
	attempt, err := api.svc.SaveProgress(ctx.Request().Context(), ctx.Param("id"), ctx.Param("attemptID"), data)
	if err != nil {
		return errors.Wrap(err, "saving progress")
	}
	return ctx.JSON(http.StatusOK, attempt)
}

func (api *examApi) submit(ctx echo.Context) error {
	var data exam.ScoreUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoreUpdate")
	}
	attempt, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"), ctx.Param("attemptID"), data)
	if err != nil {
		return errors.Wrap(err, "submitting attempt")
	}
	return ctx.JSON(http.StatusOK, attempt)
}
