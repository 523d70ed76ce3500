package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hocdan/guitarschool/core/schedule"
	exportsvc "github.com/hocdan/guitarschool/services/export"
)

var errClassNotFoundInCtx = errors.New("class object not found in echo.Context")

type classApi struct {
	svc      schedule.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, svc schedule.Service, validate *validator.Validate) {
	api := classApi{
		svc:      svc,
		validate: validate,
	}

	g.POST("/sessions/validate", api.validateSession)

	cg := g.Group("/classes")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.DELETE("", api.destroyMultiple)
	cg.GET("/export", api.export)
	cg.POST("/check-conflict", api.checkConflict)

	// detail endpoints
	dg := cg.Group("/:id", classMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *classApi) create(ctx echo.Context) error {
	var data schedule.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}

	class, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *classApi) query(ctx echo.Context) error {
	filter, err := bindClassFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, schedule.OrderingFields...)

	classes, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []schedule.ClassSchedule{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	class, ok := ctx.Get("object").(schedule.ClassSchedule)
	if !ok {
		return errors.Wrap(errClassNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *classApi) update(ctx echo.Context) error {
	class, ok := ctx.Get("object").(schedule.ClassSchedule)
	if !ok {
		return errors.Wrap(errClassNotFoundInCtx, "retrieving object from context")
	}

	var data schedule.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}

	class, err := api.svc.Update(ctx.Request().Context(), class.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *classApi) destroy(ctx echo.Context) error {
	class, ok := ctx.Get("object").(schedule.ClassSchedule)
	if !ok {
		return errors.Wrap(errClassNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), class.ID); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) checkConflict(ctx echo.Context) error {
	var data CheckConflictRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckConflictRequest")
	}

	conflict, err := api.svc.CheckConflict(ctx.Request().Context(), data.Session, data.ExcludeID)
	if err != nil {
		return errors.Wrap(err, "checking conflict")
	}
	return ctx.JSON(http.StatusOK, CheckConflictResponse{Conflict: conflict != nil, Details: conflict})
}

func (api *classApi) validateSession(ctx echo.Context) error {
	var data schedule.Session
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Session")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ValidateSessionResponse{Valid: true})
}

func (api *classApi) export(ctx echo.Context) error {
	classes, err := api.svc.Query(ctx.Request().Context(), nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}

	var buf bytes.Buffer
	if err = exportsvc.WriteTimetable(&buf, classes); err != nil {
		return errors.Wrap(err, "exporting timetable")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="timetable.xlsx"`)
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}

func classMiddleware(svc schedule.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			class, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == schedule.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding class by ID")
			}
			ctx.Set("object", class)
			return next(ctx)
		}
	}
}
