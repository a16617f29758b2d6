package classroom

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// Sync states
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateRefreshing   State = "refreshing"
)

var (
	// errors
	ErrNoToken = errors.New("no Google access token available")
)

type (
	// Snapshot is one course+assignment fetch result, held in memory only.
	Snapshot struct {
		Courses     []Course     `json:"courses"`
		Assignments []Assignment `json:"assignments"`
		SyncedAt    time.Time    `json:"synced_at"` // UTC
	}

	// Gateway fetches classroom data from the external service.
	Gateway interface {
		FetchCourses(ctx context.Context, accessToken string) ([]Course, error)
		FetchCourseWork(ctx context.Context, accessToken, courseID string) ([]Assignment, error)
		// FetchAll fetches the active courses then, sequentially, each course's
		// work items. A failed per-course fetch is logged and its assignments
		// omitted; only a failed course list fetch is an error.
		FetchAll(ctx context.Context, accessToken string) (Snapshot, error)
	}

	Service interface {
		// Connect fetches a first snapshot with the given token.
		// Fails with ErrNoToken when token is empty.
		Connect(ctx context.Context, userID, token string) error
		// Refresh replaces the snapshot; a silent no-op when not connected.
		Refresh(ctx context.Context, userID string) error
		// Disconnect drops the snapshot and token.
		Disconnect(userID string)
		State(userID string) State
		Snapshot(userID string) (Snapshot, bool)
	}

	session struct {
		state State
		token string
		snap  Snapshot
	}

	service struct {
		gw       Gateway
		notifier core.Notifier

		mutex    sync.RWMutex
		sessions map[string]*session // keyed by user ID; the single owner of sync state
	}
)

var _ Service = (*service)(nil)

func NewService(gw Gateway, notifier core.Notifier) Service {
	return &service{
		gw:       gw,
		notifier: notifier,
		sessions: make(map[string]*session),
	}
}

func (svc *service) Connect(ctx context.Context, userID, token string) error {
	if token == "" {
		return ErrNoToken
	}
	svc.setState(userID, StateConnecting, token)

	snap, err := svc.gw.FetchAll(ctx, token)
	if err != nil {
		svc.drop(userID)
		svc.notify(userID, core.NoticeError, "Connection failed", "Please check your permissions and try again.")
		return errors.Wrap(err, "fetching classroom data")
	}

	svc.setSnapshot(userID, StateConnected, snap)
	svc.notify(userID, core.NoticeSuccess, "Connected to Google Classroom!", "Your courses and assignments have been synced.")
	return nil
}

func (svc *service) Refresh(ctx context.Context, userID string) error {
	svc.mutex.RLock()
	sess, ok := svc.sessions[userID]
	if !ok || sess.state != StateConnected {
		svc.mutex.RUnlock()
		return nil
	}
	token := sess.token
	svc.mutex.RUnlock()

	svc.setState(userID, StateRefreshing, token)

	snap, err := svc.gw.FetchAll(ctx, token)
	if err != nil {
		// keep the previous snapshot
		svc.setState(userID, StateConnected, token)
		svc.notify(userID, core.NoticeError, "Refresh failed", "Could not refresh classroom data.")
		return errors.Wrap(err, "refreshing classroom data")
	}

	svc.setSnapshot(userID, StateConnected, snap)
	return nil
}

func (svc *service) Disconnect(userID string) {
	svc.drop(userID)
}

func (svc *service) State(userID string) State {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	if sess, ok := svc.sessions[userID]; ok {
		return sess.state
	}
	return StateDisconnected
}

func (svc *service) Snapshot(userID string) (Snapshot, bool) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	sess, ok := svc.sessions[userID]
	if !ok || (sess.state != StateConnected && sess.state != StateRefreshing) {
		return Snapshot{}, false
	}
	return sess.snap, true
}

func (svc *service) setState(userID string, state State, token string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	sess, ok := svc.sessions[userID]
	if !ok {
		sess = &session{}
		svc.sessions[userID] = sess
	}
	sess.state = state
	sess.token = token
}

func (svc *service) setSnapshot(userID string, state State, snap Snapshot) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if sess, ok := svc.sessions[userID]; ok {
		sess.state = state
		sess.snap = snap
	}
}

func (svc *service) drop(userID string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	delete(svc.sessions, userID)
}

func (svc *service) notify(userID, level, title, body string) {
	svc.notifier.Notify(core.Notice{
		UserID: userID,
		Level:  level,
		Title:  title,
		Body:   body,
		At:     time.Now().UTC(),
	})
}
