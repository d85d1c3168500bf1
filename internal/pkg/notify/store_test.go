package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_AddAndList(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s := NewStore(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))

	first := s.Add(Notification{Title: "first"})
	second := s.Add(Notification{Title: "second", Read: true})

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.Read, "new notifications start unread")

	list := s.List(Everyone)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
}

func TestStore_AudienceScoping(t *testing.T) {
	s := NewStore()
	s.Add(Notification{Title: "broadcast"})
	s.Add(Notification{Title: "students", Role: "STUDENT"})
	s.Add(Notification{Title: "user 7", UserID: 7})
	s.Add(Notification{Title: "admins", Role: "ADMIN"})

	student := Audience{UserID: 7, Role: "STUDENT"}
	other := Audience{UserID: 8, Role: "STUDENT"}
	admin := Audience{UserID: 1, Role: "ADMIN"}

	assert.Len(t, s.List(student), 3)
	assert.Len(t, s.List(other), 2)
	assert.Len(t, s.List(admin), 2)
	assert.Len(t, s.List(Everyone), 4)

	assert.Equal(t, 3, s.UnreadCount(student))
}

func TestStore_MarkAllAsReadClearsUnread(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.Add(Notification{Title: "n"})
	}
	require.Equal(t, 5, s.UnreadCount(Everyone))

	changed := s.MarkAllAsRead(Everyone)
	assert.Equal(t, 5, changed)
	assert.Equal(t, 0, s.UnreadCount(Everyone))
	for _, n := range s.List(Everyone) {
		assert.True(t, n.Read)
	}
}

func TestStore_MarkAllAsReadOnlyTouchesAudience(t *testing.T) {
	s := NewStore()
	s.Add(Notification{Title: "mine", UserID: 1})
	s.Add(Notification{Title: "theirs", UserID: 2})

	assert.Equal(t, 1, s.MarkAllAsRead(Audience{UserID: 1}))
	assert.Equal(t, 0, s.UnreadCount(Audience{UserID: 1}))
	assert.Equal(t, 1, s.UnreadCount(Audience{UserID: 2}))
}

func TestStore_MarkAsReadAndDelete(t *testing.T) {
	s := NewStore()
	n := s.Add(Notification{Title: "x"})

	require.NoError(t, s.MarkAsRead(n.ID))
	got, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	require.NoError(t, s.Delete(n.ID))
	assert.ErrorIs(t, s.Delete(n.ID), ErrNotFound)
	assert.ErrorIs(t, s.MarkAsRead("missing"), ErrNotFound)
	assert.Empty(t, s.List(Everyone))
}

func TestStore_SharedStateIsPerUser(t *testing.T) {
	s := NewStore(WithCapacity(2))
	alice := Audience{UserID: 1, Role: "STUDENT"}
	bob := Audience{UserID: 2, Role: "STUDENT"}
	n := s.Add(Notification{Title: "drive", Role: "STUDENT"})

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, s.MarkReadFor(alice, n.ID))
	assert.Zero(t, s.UnreadCount(alice))
	assert.Equal(t, 1, s.UnreadCount(bob))
	got, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.False(t, got.Read, "the shared entry itself stays unread")

	require.NoError(t, s.Hide(bob, n.ID))
	assert.Empty(t, s.List(bob))
	assert.Len(t, s.List(alice), 1)

	require.Len(t, events, 2)
	assert.Equal(t, alice, events[0].Audience)
	assert.Equal(t, EventDeleted, events[1].Kind)
	assert.Equal(t, bob, events[1].Audience)
	assert.Equal(t, 0, s.MarkAllAsRead(bob))

	personal := s.Add(Notification{Title: "offer", UserID: 1})
	require.NoError(t, s.Hide(alice, personal.ID))
	_, err = s.Get(personal.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Hide(alice, "missing"), ErrNotFound)

	s.Add(Notification{Title: "a"})
	s.Add(Notification{Title: "b"})
	assert.Empty(t, s.readBy, "evicted entries drop their per-user state")
	assert.Empty(t, s.hiddenFrom)
}

func TestStore_Capacity(t *testing.T) {
	s := NewStore(WithCapacity(3))
	for _, title := range []string{"a", "b", "c", "d"} {
		s.Add(Notification{Title: title})
	}
	titles := []string{}
	for _, n := range s.List(Everyone) {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"b", "c", "d"}, titles)
}

func TestStore_SubscribeReceivesEveryMutation(t *testing.T) {
	s := NewStore()

	var kinds []EventKind
	unsubscribe := s.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
	})

	n := s.Add(Notification{Title: "a"})
	require.NoError(t, s.MarkAsRead(n.ID))
	s.MarkAllAsRead(Everyone)
	require.NoError(t, s.Delete(n.ID))

	assert.Equal(t, []EventKind{EventAdded, EventRead, EventAllRead, EventDeleted}, kinds)

	unsubscribe()
	unsubscribe()
	s.Add(Notification{Title: "b"})
	assert.Len(t, kinds, 4, "no events after unsubscribe")
	assert.Equal(t, 0, s.Subscribers())
}

func TestStore_ListenerMayReadStore(t *testing.T) {
	s := NewStore()
	var seen int
	defer s.Subscribe(func(Event) { seen = s.UnreadCount(Everyone) })()

	s.Add(Notification{Title: "a"})
	assert.Equal(t, 1, seen)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	defer s.Subscribe(func(Event) {})()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				n := s.Add(Notification{Title: "c"})
				_ = s.MarkAsRead(n.ID)
				s.UnreadCount(Everyone)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.List(Everyone), 400)
}

func TestSimulator_StartStopIdempotent(t *testing.T) {
	s := NewStore()
	sim := NewSimulator(s, 5*time.Millisecond)

	sim.Start(context.Background())
	sim.Start(context.Background())
	assert.True(t, sim.Running())

	assert.Eventually(t, func() bool {
		return len(s.List(Everyone)) > 0
	}, time.Second, 5*time.Millisecond)

	sim.Stop()
	sim.Stop()
	assert.False(t, sim.Running())

	count := len(s.List(Everyone))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, count, len(s.List(Everyone)))
}

func TestSimulator_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sim := NewSimulator(NewStore(), time.Hour)
	sim.Start(ctx)
	cancel()
	sim.Stop()
}

func TestSimulator_EmitUsesTemplates(t *testing.T) {
	s := NewStore()
	sim := NewSimulator(s, 0, Template{Type: TypeJob, Title: "only", Role: "STUDENT"})

	n := sim.Emit()
	assert.Equal(t, "only", n.Title)
	assert.Equal(t, TypeJob, n.Type)
	assert.Equal(t, 1, s.UnreadCount(Audience{Role: "STUDENT"}))
	assert.Equal(t, 0, s.UnreadCount(Audience{Role: "COMPANY"}))
}
