package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

var _ domain.Notifier = (*TelegramNotifier)(nil)

// sentKeyPrefix namespaces the tag -> message id records in the slot store.
const sentKeyPrefix = "notify_"

// sender is the slice of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type dialFunc func(token string) (sender, error)

func dialBotAPI(token string) (sender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Telegram notifier authorized as @%s", bot.Self.UserName)
	return bot, nil
}

// TelegramNotifier delivers notifications to one chat. A renotify message
// replaces the previous message sent with the same tag. The id of that message
// is kept in the store so separate processes replace each other's messages.
//
// The bot connects on the first Notify; a failed connection is retried on the
// next one.
type TelegramNotifier struct {
	token  string
	chatID int64
	store  domain.KeyValueStore
	dial   dialFunc

	mu  sync.Mutex
	bot sender
}

func NewTelegramNotifier(token string, chatID int64, store domain.KeyValueStore) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
		store:  store,
		dial:   dialBotAPI,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bot == nil {
		bot, err := n.dial(n.token)
		if err != nil {
			return fmt.Errorf("%w: telegram: %v", domain.ErrNotificationUnavailable, err)
		}
		n.bot = bot
	}

	if msg.Tag != "" && msg.Renotify {
		n.removePrevious(ctx, msg.Tag)
	}

	out := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("*%s*\n%s", msg.Title, msg.Body))
	out.ParseMode = tgbotapi.ModeMarkdown
	out.DisableNotification = !msg.Renotify

	sent, err := n.bot.Send(out)
	if err != nil {
		return fmt.Errorf("%w: telegram send: %v", domain.ErrNotificationUnavailable, err)
	}

	if msg.Tag != "" {
		value := []byte(strconv.Itoa(sent.MessageID))
		if err := n.store.Set(ctx, sentKeyPrefix+msg.Tag, value); err != nil {
			logrus.Warnf("[NOTIFY] Could not record %s message %d: %v", msg.Tag, sent.MessageID, err)
		}
	}
	return nil
}

func (n *TelegramNotifier) removePrevious(ctx context.Context, tag string) {
	key := sentKeyPrefix + tag

	raw, err := n.store.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return
	}
	if err != nil {
		logrus.Warnf("[NOTIFY] Could not look up previous %s message: %v", tag, err)
		return
	}

	previous, err := strconv.Atoi(string(raw))
	if err != nil {
		logrus.Warnf("[NOTIFY] Dropping unreadable %s message id %q", tag, raw)
	} else if _, err := n.bot.Request(tgbotapi.NewDeleteMessage(n.chatID, previous)); err != nil {
		logrus.Debugf("[NOTIFY] Could not remove previous %s message %d: %v", tag, previous, err)
	}

	if err := n.store.Delete(ctx, key); err != nil {
		logrus.Warnf("[NOTIFY] Could not clear %s message record: %v", tag, err)
	}
}
