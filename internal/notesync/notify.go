package notesync

import (
	"context"
	"log/slog"
)

// Notice is a short user-facing message, such as a toast.
type Notice struct {
	Title       string
	Description string
	// Destructive marks failures that should be rendered as errors.
	Destructive bool
}

// Notifier receives notices. Notify is called from the controller's event
// loop and must not block.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type logNotifier struct {
	logger *slog.Logger
}

func (l logNotifier) Notify(n Notice) {
	level := slog.LevelInfo
	if n.Destructive {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, "notice",
		slog.String("title", n.Title),
		slog.String("description", n.Description))
}
