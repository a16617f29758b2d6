package notifysvc

import (
	"fmt"
	"sync"

	"github.com/trezcool/ratiba/core"
)

// logNotifier surfaces notices through the app logger.
// The API also exposes per-request notices in mutation responses; this service
// is the fallback sink so no notice is silently dropped.
type logNotifier struct {
	logger core.Logger
}

var _ core.Notifier = (*logNotifier)(nil)

func NewLogNotifier(logger core.Logger) core.Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(notice core.Notice) {
	msg := fmt.Sprintf("notice [%s] %s: %s", notice.Level, notice.Title, notice.Body)
	if notice.Level == core.NoticeError {
		n.logger.Warn(msg, map[string]interface{}{"user_id": notice.UserID})
		return
	}
	n.logger.Info(msg, map[string]interface{}{"user_id": notice.UserID})
}

// MemoryNotifier records notices in memory. For tests.
type MemoryNotifier struct {
	mu      sync.Mutex
	notices []core.Notice
}

var _ core.Notifier = (*MemoryNotifier)(nil)

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (n *MemoryNotifier) Notify(notice core.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns the recorded notices for a user, oldest first.
func (n *MemoryNotifier) Notices(userID string) []core.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	notices := make([]core.Notice, 0, len(n.notices))
	for _, notice := range n.notices {
		if notice.UserID == userID {
			notices = append(notices, notice)
		}
	}
	return notices
}

func (n *MemoryNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = nil
}
