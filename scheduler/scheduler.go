package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"housefinder/config"
	"housefinder/services"
)

// Scheduler keeps the local cache warm in daemon mode by re-fetching the
// default recommendation set on a cron expression or a fixed interval.
type Scheduler struct {
	cfg     *config.SchedulerConfig
	service *services.RecommendationService
	cron    *cron.Cron
	ticker  *time.Ticker
	stopCh  chan struct{}
}

func New(cfg *config.SchedulerConfig, service *services.RecommendationService) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		service: service,
		cron:    cron.New(),
		stopCh:  make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		log.Printf("Starting refresh scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			if err := s.service.RefreshDefault(ctx); err != nil {
				log.Printf("Scheduled refresh error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Interval > 0 {
		log.Printf("Starting refresh scheduler with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if err := s.service.RefreshDefault(ctx); err != nil {
						log.Printf("Scheduled refresh error: %v", err)
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	log.Println("No refresh schedule configured")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// TriggerNow forces an immediate refresh.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.service.RefreshDefault(ctx)
}
