package workers

import (
	"context"
	"log"
	"time"

	"github.com/staffhubio/staffhub/services"
)

// CoverageWorker keeps the cached coverage reports warm so dashboards read
// from Redis instead of recomputing on every poll.
type CoverageWorker struct {
	CoverageService *services.CoverageService
	Interval        time.Duration
}

func NewCoverageWorker(coverageService *services.CoverageService, interval time.Duration) *CoverageWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CoverageWorker{
		CoverageService: coverageService,
		Interval:        interval,
	}
}

// StartCoverageWorker refreshes the coverage caches once at startup and
// then on the configured interval.
func (w *CoverageWorker) StartCoverageWorker() {
	log.Println("Coverage worker started, refreshing coverage caches...")

	w.refresh()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for range ticker.C {
		w.refresh()
	}
}

func (w *CoverageWorker) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := w.CoverageService.RefreshCache(ctx); err != nil {
		log.Printf("Coverage worker: refresh failed: %v", err)
	}
}
