package services

import (
	"errors"
	"strings"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/notify"
)

// Notifier appends notifications to the feed. *notify.Store satisfies it.
type Notifier interface {
	Add(n notify.Notification) notify.Notification
}

// NotificationService exposes the in-app feed to authenticated users
type NotificationService interface {
	List(actor auth.Actor) []notify.Notification
	UnreadCount(actor auth.Actor) int
	MarkAsRead(actor auth.Actor, id string) error
	MarkAllAsRead(actor auth.Actor) int
	Delete(actor auth.Actor, id string) error
	Broadcast(req *dto.BroadcastRequest) notify.Notification
}

type notificationService struct {
	store *notify.Store
}

// NewNotificationService creates a new NotificationService over store
func NewNotificationService(store *notify.Store) NotificationService {
	return &notificationService{store: store}
}

// AudienceOf maps an actor onto the feed audience it may see
func AudienceOf(actor auth.Actor) notify.Audience {
	return notify.Audience{UserID: actor.UserID, Role: string(actor.Role)}
}

func (s *notificationService) List(actor auth.Actor) []notify.Notification {
	return s.store.List(AudienceOf(actor))
}

func (s *notificationService) UnreadCount(actor auth.Actor) int {
	return s.store.UnreadCount(AudienceOf(actor))
}

// visible fetches a notification, hiding those the actor may not see
func (s *notificationService) visible(actor auth.Actor, id string) (notify.Notification, error) {
	n, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			return n, apperrors.ErrNotificationNotFound
		}
		return n, err
	}
	if !n.VisibleTo(AudienceOf(actor)) {
		return n, apperrors.ErrNotificationNotFound
	}
	return n, nil
}

// MarkAsRead on a role-wide or global notification only affects the caller.
func (s *notificationService) MarkAsRead(actor auth.Actor, id string) error {
	if _, err := s.visible(actor, id); err != nil {
		return err
	}
	if err := s.store.MarkReadFor(AudienceOf(actor), id); err != nil {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(actor auth.Actor) int {
	return s.store.MarkAllAsRead(AudienceOf(actor))
}

// Delete removes the caller's own notifications. Shared ones are removed for
// everyone only by an admin; anyone else just dismisses them from their feed.
func (s *notificationService) Delete(actor auth.Actor, id string) error {
	n, err := s.visible(actor, id)
	if err != nil {
		return err
	}
	if n.UserID == actor.UserID || actor.IsAdmin() {
		err = s.store.Delete(id)
	} else {
		err = s.store.Hide(AudienceOf(actor), id)
	}
	if err != nil {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// Broadcast posts an admin announcement to a role, or to everyone
func (s *notificationService) Broadcast(req *dto.BroadcastRequest) notify.Notification {
	return s.store.Add(notify.Notification{
		Type:    notify.TypeSystem,
		Title:   strings.TrimSpace(req.Title),
		Message: strings.TrimSpace(req.Message),
		Link:    req.Link,
		Role:    req.Role,
	})
}

// notifyUser posts a notification to a single user when they have a login
func notifyUser(n Notifier, userID *int64, typ notify.Type, title, message, link string) {
	if n == nil || userID == nil {
		return
	}
	n.Add(notify.Notification{Type: typ, Title: title, Message: message, Link: link, UserID: *userID})
}
