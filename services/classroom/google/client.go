package googleclassroom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/classroom"
)

// gateway proxies the Google Classroom REST API. The caller's OAuth access
// token is forwarded as-is; no credentials are stored here.
type gateway struct {
	baseURL string
	rest    rest.Client
	logger  core.Logger
}

var _ classroom.Gateway = (*gateway)(nil)

func NewGateway(conf *core.Config, logger core.Logger) classroom.Gateway {
	return &gateway{
		baseURL: conf.Classroom.BaseURL,
		rest:    rest.Client{HTTPClient: &http.Client{Timeout: 30 * time.Second}},
		logger:  logger,
	}
}

func (gw *gateway) FetchCourses(ctx context.Context, accessToken string) ([]classroom.Course, error) {
	req := gw.newRequest(accessToken, "/v1/courses")
	req.QueryParams = map[string]string{"courseStates": "ACTIVE"}

	res, err := gw.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching courses")
	}
	if err := checkStatus(res); err != nil {
		return nil, errors.Wrap(err, "fetching courses")
	}

	var body struct {
		Courses []classroom.Course `json:"courses"`
	}
	if err := json.Unmarshal([]byte(res.Body), &body); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	return body.Courses, nil
}

func (gw *gateway) FetchCourseWork(ctx context.Context, accessToken, courseID string) ([]classroom.Assignment, error) {
	req := gw.newRequest(accessToken, "/v1/courses/"+courseID+"/courseWork")

	res, err := gw.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching course work for %s", courseID)
	}
	if err := checkStatus(res); err != nil {
		return nil, errors.Wrapf(err, "fetching course work for %s", courseID)
	}

	var body struct {
		CourseWork []classroom.Assignment `json:"courseWork"`
	}
	if err := json.Unmarshal([]byte(res.Body), &body); err != nil {
		return nil, errors.Wrapf(err, "decoding course work for %s", courseID)
	}
	for i := range body.CourseWork {
		body.CourseWork[i].CourseID = courseID
	}
	return body.CourseWork, nil
}

// FetchAll lists the active courses then fetches each course's work in turn.
// A course whose work fetch fails is logged and skipped so one flaky course
// does not sink the whole sync; only a failed course list is fatal.
func (gw *gateway) FetchAll(ctx context.Context, accessToken string) (classroom.Snapshot, error) {
	courses, err := gw.FetchCourses(ctx, accessToken)
	if err != nil {
		return classroom.Snapshot{}, err
	}

	assignments := make([]classroom.Assignment, 0)
	for _, course := range courses {
		work, err := gw.FetchCourseWork(ctx, accessToken, course.ID)
		if err != nil {
			gw.logger.Warn(fmt.Sprintf("classroom: skipping course %s (%s): %v", course.ID, course.Name, err))
			continue
		}
		for i := range work {
			work[i].CourseName = course.Name
		}
		assignments = append(assignments, work...)
	}

	return classroom.Snapshot{
		Courses:     courses,
		Assignments: assignments,
		SyncedAt:    time.Now().UTC(),
	}, nil
}

func (gw *gateway) newRequest(accessToken, path string) rest.Request {
	return rest.Request{
		Method:  rest.Get,
		BaseURL: gw.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Accept":        "application/json",
		},
	}
}

func checkStatus(res *rest.Response) error {
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
