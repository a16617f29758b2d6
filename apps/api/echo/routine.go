package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/routine"
)

type routineApi struct {
	svc routine.Service

	nowFunc func() time.Time // mockable
}

func registerRoutineAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc routine.Service) {
	api := routineApi{
		svc:     svc,
		nowFunc: time.Now,
	}

	rg := g.Group("/routines", jwt)
	rg.GET("", api.list)
	rg.POST("", api.create)
	rg.GET("/current", api.current)
	rg.GET("/summary", api.summary)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *routineApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	routines, err := api.svc.List(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing routines")
	}

	now := api.nowHHMM()
	views := make([]RoutineResponse, 0, len(routines))
	for _, r := range routines {
		views = append(views, newRoutineResponse(r, now))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *routineApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data routine.NewRoutine
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoutine")
	}

	r, err := api.svc.Add(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, newRoutineResponse(r, api.nowHHMM()))
}

func (api *routineApi) current(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	routines, err := api.svc.List(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing routines")
	}

	now := api.nowHHMM()
	if r, ok := routine.Current(routines, now); ok {
		return ctx.JSON(http.StatusOK, newRoutineResponse(r, now))
	}
	return errHttpNotFound
}

func (api *routineApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	reqCtx := ctx.Request().Context()

	categories := routine.AllCategories
	if category := ctx.QueryParam("category"); category != "" {
		if _, ok := routine.MetaFor(category); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
		}
		categories = []string{category}
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, category := range categories {
		total, err := api.svc.TotalByCategory(reqCtx, claims.Subject, category)
		if err != nil {
			return errors.Wrap(err, "totaling category")
		}
		meta, _ := routine.MetaFor(category)
		summaries = append(summaries, CategorySummary{
			Category:     category,
			Label:        meta.Label,
			Total:        total,
			TotalDisplay: routine.FormatDuration(total),
		})
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *routineApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data routine.UpdateRoutine
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRoutine")
	}

	r, err := api.svc.Update(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == routine.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, newRoutineResponse(r, api.nowHHMM()))
}

func (api *routineApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Remove(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing routine")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *routineApi) nowHHMM() string {
	return api.nowFunc().Format("15:04")
}

type (
	// RoutineResponse is a Routine enriched with display fields the dashboard
	// would otherwise re-derive.
	RoutineResponse struct {
		routine.Routine
		EndTime         string               `json:"end_time"`
		DurationDisplay string               `json:"duration_display"`
		IsActive        bool                 `json:"is_active"`
		Meta            routine.CategoryMeta `json:"meta"`
	}

	CategorySummary struct {
		Category     string `json:"category"`
		Label        string `json:"label"`
		Total        int    `json:"total"` // minutes
		TotalDisplay string `json:"total_display"`
	}
)

func newRoutineResponse(r routine.Routine, nowHHMM string) RoutineResponse {
	meta, _ := routine.MetaFor(r.Category)
	return RoutineResponse{
		Routine:         r,
		EndTime:         routine.EndTime(r.Time, r.Duration),
		DurationDisplay: routine.FormatDuration(r.Duration),
		IsActive:        routine.IsActive(r, nowHHMM),
		Meta:            meta,
	}
}
