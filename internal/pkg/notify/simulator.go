package notify

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/pkg/logger"
)

// DefaultInterval is how often the simulator emits a notification.
const DefaultInterval = 15 * time.Second

// Template is a canned notification the simulator can emit.
type Template struct {
	Type    Type
	Title   string
	Message string
	Role    string
}

// DefaultTemplates is the stock set of simulated activity.
var DefaultTemplates = []Template{
	{Type: TypeJob, Title: "New job posted", Message: "A new opening matching your department is live.", Role: "STUDENT"},
	{Type: TypeInterview, Title: "Interview reminder", Message: "You have an interview scheduled in the next 24 hours.", Role: "STUDENT"},
	{Type: TypeApplication, Title: "New applications", Message: "Students have applied to one of your postings.", Role: "COMPANY"},
	{Type: TypePlacement, Title: "Placement drive update", Message: "Placement statistics were refreshed.", Role: "ADMIN"},
	{Type: TypeSystem, Title: "Profile reminder", Message: "Keep your profile and resume up to date."},
}

// Simulator periodically adds a random template to a Store.
type Simulator struct {
	store     *Store
	interval  time.Duration
	templates []Template
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSimulator creates a stopped simulator. A non-positive interval falls back
// to DefaultInterval and an empty template list to DefaultTemplates.
func NewSimulator(store *Store, interval time.Duration, templates ...Template) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if len(templates) == 0 {
		templates = DefaultTemplates
	}
	return &Simulator{
		store:     store,
		interval:  interval,
		templates: templates,
		log:       logger.Component("notify-simulator"),
	}
}

// Start launches the ticker goroutine. Calling Start on a running simulator
// does nothing.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	s.log.Info().Dur("interval", s.interval).Msg("Notification simulator started")
}

// Stop halts the simulator and waits for its goroutine to exit. It is safe to
// call on a stopped simulator.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info().Msg("Notification simulator stopped")
}

// Running reports whether the ticker goroutine is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Emit()
		}
	}
}

// Emit adds one random template to the store immediately.
func (s *Simulator) Emit() Notification {
	t := s.templates[rand.IntN(len(s.templates))]
	return s.store.Add(Notification{
		Type:    t.Type,
		Title:   t.Title,
		Message: t.Message,
		Role:    t.Role,
	})
}
