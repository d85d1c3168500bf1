package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/notify"
)

func TestNotificationService_Scoping(t *testing.T) {
	store := notify.NewStore()
	svc := NewNotificationService(store)

	asha := auth.Actor{UserID: 10, Role: models.RoleStudent}
	bob := auth.Actor{UserID: 11, Role: models.RoleStudent}
	recruiter := auth.Actor{UserID: 20, Role: models.RoleCompany}

	notifyUser(store, ptr(int64(10)), notify.TypeApplication, "Shortlisted", "You were shortlisted", "")
	svc.Broadcast(&dto.BroadcastRequest{Title: " Drive ", Message: "Campus drive on Friday", Role: string(models.RoleStudent)})
	svc.Broadcast(&dto.BroadcastRequest{Title: "Maintenance", Message: "Portal down at 2am"})

	assert.Len(t, svc.List(asha), 3)
	assert.Len(t, svc.List(bob), 2)
	assert.Len(t, svc.List(recruiter), 1)
	var titles []string
	for _, n := range svc.List(bob) {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"Drive", "Maintenance"}, titles)

	private := store.List(notify.Audience{UserID: 10, Role: string(models.RoleStudent)})
	var privateID string
	for _, n := range private {
		if n.UserID == 10 {
			privateID = n.ID
		}
	}
	require.NotEmpty(t, privateID)

	assert.ErrorIs(t, svc.MarkAsRead(bob, privateID), apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, svc.Delete(bob, privateID), apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(asha, "missing"), apperrors.ErrNotificationNotFound)

	require.NoError(t, svc.MarkAsRead(asha, privateID))
	assert.Equal(t, 2, svc.UnreadCount(asha))

	svc.MarkAllAsRead(asha)
	assert.Zero(t, svc.UnreadCount(asha))
	assert.Equal(t, 2, svc.UnreadCount(bob), "shared notifications keep per-user read state")

	require.NoError(t, svc.Delete(asha, privateID))
	assert.Len(t, svc.List(asha), 2)
}

func TestNotificationService_SharedNotificationsArePerUser(t *testing.T) {
	store := notify.NewStore()
	svc := NewNotificationService(store)

	asha := auth.Actor{UserID: 10, Role: models.RoleStudent}
	bob := auth.Actor{UserID: 11, Role: models.RoleStudent}
	admin := auth.Actor{UserID: 1, Role: models.RoleAdmin}

	drive := svc.Broadcast(&dto.BroadcastRequest{Title: "Drive", Message: "Campus drive on Friday", Role: string(models.RoleStudent)})
	notice := svc.Broadcast(&dto.BroadcastRequest{Title: "Holiday", Message: "Office closed Monday"})

	require.NoError(t, svc.MarkAsRead(asha, drive.ID))
	assert.Equal(t, 1, svc.UnreadCount(asha))
	assert.Equal(t, 2, svc.UnreadCount(bob))

	require.NoError(t, svc.Delete(asha, drive.ID))
	assert.Len(t, svc.List(asha), 1)
	require.Len(t, svc.List(bob), 2, "a student dismissing a broadcast leaves it for everyone else")
	assert.ErrorIs(t, svc.Delete(asha, drive.ID), apperrors.ErrNotificationNotFound)

	require.NoError(t, svc.Delete(admin, notice.ID))
	assert.Empty(t, svc.List(asha))
	assert.Len(t, svc.List(bob), 1)
	_, err := store.Get(notice.ID)
	assert.ErrorIs(t, err, notify.ErrNotFound)
}

func TestNotifyUser_SkipsUsersWithoutLogin(t *testing.T) {
	n := &recordingNotifier{}
	notifyUser(n, nil, notify.TypeSystem, "t", "m", "")
	notifyUser(nil, ptr(int64(1)), notify.TypeSystem, "t", "m", "")
	assert.Empty(t, n.all())
}
