package domain

import (
	"context"
	"errors"
)

var (
	ErrNotificationUnavailable = errors.New("notification channel unavailable")
)

const (
	ReminderTitle = "Workout Reminder"
	ReminderBody  = "Don't forget to log your workout today!"
	ReminderTag   = "workout-reminder"
	ReminderIcon  = "/icon-192x192.png"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`

	// Tag identifies the notification. With Renotify set, a new notification
	// carrying the same tag replaces the previous one and alerts again.
	Tag      string `json:"tag"`
	Renotify bool   `json:"renotify"`
}

func NewWorkoutReminder() Notification {
	return Notification{
		Title:    ReminderTitle,
		Body:     ReminderBody,
		Icon:     ReminderIcon,
		Badge:    ReminderIcon,
		Tag:      ReminderTag,
		Renotify: true,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
