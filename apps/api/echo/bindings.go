package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/schedule"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads "?ordering=field,-other", keeping only the allowed fields.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	if raw := ctx.QueryParam(orderingParam); raw != "" {
		ord.Orderings = core.ParseOrdering(raw, allowed...)
	}
}

func bindClassFilter(ctx echo.Context) (*schedule.QueryFilter, error) {
	filter := new(schedule.QueryFilter)
	err := echo.QueryParamsBinder(ctx).
		String("search", &filter.Search).
		Int("grade", &filter.Grade).
		BindError()
	if err != nil {
		return nil, err
	}
	if raw := ctx.QueryParam("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "day", Error: "day must be a number"})
		}
		filter.DayOfWeek = &day
	}
	filter.Clean()
	return filter, nil
}

type (
	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	CheckConflictRequest struct {
		Session   schedule.Session `json:"session"`
		ExcludeID string           `json:"exclude_id"`
	}

	CheckConflictResponse struct {
		Conflict bool               `json:"conflict"`
		Details  *schedule.Conflict `json:"details,omitempty"`
	}

	ValidateSessionResponse struct {
		Valid bool `json:"valid"`
	}
)
