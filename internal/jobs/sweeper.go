package jobs

import (
	"context"
	"log"
	"time"

	"challengeboard/internal/service"
	"challengeboard/internal/websocket"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically runs the leaderboard sweep and fans recomputed
// boards out to websocket clients. Each tick is independent; boards with no
// new activity cost one timestamp comparison and nothing else.
type Sweeper struct {
	service  *service.LeaderboardService
	hub      *websocket.Hub
	interval time.Duration
	sched    gocron.Scheduler
}

// NewSweeper creates a new sweeper. hub may be nil when no push fan-out is wanted.
func NewSweeper(svc *service.LeaderboardService, hub *websocket.Hub, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Sweeper{
		service:  svc,
		hub:      hub,
		interval: interval,
	}
}

// Start schedules the sweep job and begins ticking.
func (s *Sweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	if _, err := sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	); err != nil {
		return err
	}

	sched.Start()
	log.Printf("🚀 Leaderboard sweeper started (interval %v)", s.interval)
	return nil
}

// Stop shuts the scheduler down; an in-flight sweep finishes its boards.
func (s *Sweeper) Stop() {
	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("⚠️ Sweeper shutdown error: %v", err)
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	changed, err := s.service.Calculate(ctx)
	if err != nil {
		log.Printf("❌ Leaderboard sweep failed: %v", err)
		return
	}
	if len(changed) == 0 {
		return
	}

	log.Printf("📡 Sweep recomputed %d board(s)", len(changed))
	if s.hub != nil {
		s.hub.BroadcastBoards(changed)
	}
}
