package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

const minInterval = 2 * time.Second

type sendFunc func(title, message string, icon any) error

// Notifier mirrors failure toasts to the desktop. Repeats of the same message
// inside minInterval are collapsed.
type Notifier struct {
	enabled bool
	icon    string
	send    sendFunc
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	lastText string
	lastAt   time.Time
}

func New(enabled bool, icon string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	beeep.AppName = "encore"
	return &Notifier{
		enabled: enabled,
		icon:    icon,
		send:    beeep.Notify,
		now:     time.Now,
		logger:  logger,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.enabled
}

// Notify reports whether a notification was sent.
func (n *Notifier) Notify(title string, message string) bool {
	if !n.Enabled() {
		return false
	}

	n.mu.Lock()
	now := n.now()
	key := title + "\x00" + message
	if key == n.lastText && now.Sub(n.lastAt) < minInterval {
		n.mu.Unlock()
		return false
	}
	n.lastText = key
	n.lastAt = now
	n.mu.Unlock()

	if err := n.send(title, message, n.icon); err != nil {
		n.logger.Debug("desktop notification failed", "error", err)
		return false
	}
	return true
}
