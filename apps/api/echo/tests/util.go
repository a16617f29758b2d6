package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/classroom"
	"github.com/trezcool/ratiba/core/routine"
	"github.com/trezcool/ratiba/core/user"
	emailsvc "github.com/trezcool/ratiba/services/email"
	notifysvc "github.com/trezcool/ratiba/services/notify"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	testutil "github.com/trezcool/ratiba/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	app         *Server
	conf        *core.Config
	usrRepo     user.Repository
	routineRepo routine.Repository
	gw          *fakeGateway
	notifier    *notifysvc.MemoryNotifier
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	routineRepo := inmemdb.NewRoutineRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	notifier := notifysvc.NewMemoryNotifier()
	usrSvc := user.NewService(usrRepo, mailSvc, conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	routine.InitValidators(validate, translator)

	routineSvc := routine.NewService(routineRepo, notifier, validate)
	gw := &fakeGateway{}
	classroomSvc := classroom.NewService(gw, notifier)

	// set up server
	app := NewServer(
		ServerDeps{
			Conf:         conf,
			Logger:       core.NewNopLogger(),
			UserSvc:      usrSvc,
			RoutineSvc:   routineSvc,
			ClassroomSvc: classroomSvc,
			ClassroomGw:  gw,
			Validate:     validate,
			Translator:   translator,
		},
	)

	return &testApp{
		app:         app,
		conf:        conf,
		usrRepo:     usrRepo,
		routineRepo: routineRepo,
		gw:          gw,
		notifier:    notifier,
	}
}

type fakeGateway struct {
	courses     []classroom.Course
	assignments []classroom.Assignment
	err         error

	lastToken string
}

var _ classroom.Gateway = (*fakeGateway)(nil)

func (gw *fakeGateway) FetchCourses(_ context.Context, token string) ([]classroom.Course, error) {
	gw.lastToken = token
	return gw.courses, gw.err
}

func (gw *fakeGateway) FetchCourseWork(_ context.Context, token, courseID string) ([]classroom.Assignment, error) {
	gw.lastToken = token
	if gw.err != nil {
		return nil, gw.err
	}
	work := make([]classroom.Assignment, 0)
	for _, a := range gw.assignments {
		if a.CourseID == courseID {
			work = append(work, a)
		}
	}
	return work, nil
}

func (gw *fakeGateway) FetchAll(ctx context.Context, token string) (classroom.Snapshot, error) {
	gw.lastToken = token
	if gw.err != nil {
		return classroom.Snapshot{}, gw.err
	}
	return classroom.Snapshot{Courses: gw.courses, Assignments: gw.assignments}, nil
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
