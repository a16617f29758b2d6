package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/classroom"
	"github.com/trezcool/ratiba/core/user"
)

// proxy actions
const (
	actionGetCourses        = "getCourses"
	actionGetAssignments    = "getAssignments"
	actionGetAllAssignments = "getAllAssignments"
)

type classroomApi struct {
	usrSvc user.Service
	svc    classroom.Service
	gw     classroom.Gateway
}

func registerClassroomAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	usrSvc user.Service,
	svc classroom.Service,
	gw classroom.Gateway,
) {
	api := classroomApi{
		usrSvc: usrSvc,
		svc:    svc,
		gw:     gw,
	}

	cg := g.Group("/classroom", jwt)
	cg.POST("", api.proxy)
	cg.GET("", api.snapshot)
	cg.POST("/connect", api.connect)
	cg.POST("/refresh", api.refresh)
	cg.POST("/disconnect", api.disconnect)
}

// Handlers

// proxy forwards a single classroom action upstream with the caller's Google
// access token. Upstream failures come back as {"error": ...}, never a bare 500.
func (api *classroomApi) proxy(ctx echo.Context) error {
	var data ProxyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProxyRequest")
	}

	token, err := api.accessToken(ctx, data.AccessToken)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	switch data.Action {
	case actionGetCourses:
		courses, err := api.gw.FetchCourses(reqCtx, token)
		if err != nil {
			return upstreamError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, echo.Map{"courses": courses})

	case actionGetAssignments:
		if data.CourseID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "courseId is required")
		}
		work, err := api.gw.FetchCourseWork(reqCtx, token, data.CourseID)
		if err != nil {
			return upstreamError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, echo.Map{"assignments": newAssignmentViews(work)})

	case actionGetAllAssignments:
		snap, err := api.gw.FetchAll(reqCtx, token)
		if err != nil {
			return upstreamError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, echo.Map{
			"courses":     snap.Courses,
			"assignments": newAssignmentViews(snap.Assignments),
		})

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}
}

func (api *classroomApi) connect(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data ConnectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConnectRequest")
	}

	token, err := api.accessToken(ctx, data.AccessToken)
	if err != nil {
		return err
	}

	if err := api.svc.Connect(ctx.Request().Context(), claims.Subject, token); err != nil {
		if errors.Cause(err) == classroom.ErrNoToken {
			return echo.NewHTTPError(http.StatusBadRequest, classroom.ErrNoToken.Error())
		}
		return upstreamError(ctx, err)
	}
	return api.snapshot(ctx)
}

func (api *classroomApi) refresh(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Refresh(ctx.Request().Context(), claims.Subject); err != nil {
		return upstreamError(ctx, err)
	}
	return api.snapshot(ctx)
}

func (api *classroomApi) disconnect(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	api.svc.Disconnect(claims.Subject)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classroomApi) snapshot(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res := SnapshotResponse{State: api.svc.State(claims.Subject)}
	if snap, ok := api.svc.Snapshot(claims.Subject); ok {
		res.Courses = snap.Courses
		res.Assignments = newAssignmentViews(snap.Assignments)
		res.SyncedAt = &snap.SyncedAt
	}
	return ctx.JSON(http.StatusOK, res)
}

// accessToken resolves the Google access token to use: the one supplied in the
// request, else the one captured at sign-in.
func (api *classroomApi) accessToken(ctx echo.Context, supplied string) (string, error) {
	if supplied != "" {
		return supplied, nil
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}
	if usr.GoogleToken == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "no Google access token available")
	}
	return usr.GoogleToken, nil
}

func upstreamError(ctx echo.Context, err error) error {
	ctx.Logger().Errorf("%+v", errors.Wrap(err, "classroom upstream"))
	return ctx.JSON(http.StatusBadGateway, echo.Map{"error": errors.Cause(err).Error()})
}

type (
	ProxyRequest struct {
		Action      string `json:"action"`
		AccessToken string `json:"accessToken"`
		CourseID    string `json:"courseId"`
	}

	ConnectRequest struct {
		AccessToken string `json:"accessToken"`
	}

	// AssignmentView is an Assignment with its due-date verdicts pre-computed.
	AssignmentView struct {
		classroom.Assignment
		Status       string `json:"status"`
		DaysUntilDue *int   `json:"daysUntilDue"`
		Badge        string `json:"badge"`
	}

	SnapshotResponse struct {
		State       classroom.State    `json:"state"`
		Courses     []classroom.Course `json:"courses,omitempty"`
		Assignments []AssignmentView   `json:"assignments,omitempty"`
		SyncedAt    *time.Time         `json:"synced_at,omitempty"`
	}
)

func newAssignmentViews(assignments []classroom.Assignment) []AssignmentView {
	now := time.Now()
	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := AssignmentView{
			Assignment: a,
			Status:     a.Status(now),
			Badge:      a.Badge(now),
		}
		if days, ok := a.DaysUntilDue(now); ok {
			view.DaysUntilDue = &days
		}
		views = append(views, view)
	}
	return views
}
