package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

var _ domain.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the application log. It is the default
// channel when no messaging backend is configured.
type LogNotifier struct {
	logger logrus.FieldLogger
}

func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.logger.WithFields(logrus.Fields{
		"tag":      msg.Tag,
		"renotify": msg.Renotify,
	}).Infof("[NOTIFY] %s: %s", msg.Title, msg.Body)
	return nil
}
