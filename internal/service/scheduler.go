package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/config"
)

type Scheduler struct {
	config  *config.SchedulerConfig
	logger  *zap.Logger
	crawler *CrawlerService
	ticker  *time.Ticker
	stopCh  chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, crawler *CrawlerService) *Scheduler {
	return &Scheduler{
		config:  cfg,
		logger:  logger,
		crawler: crawler,
		stopCh:  make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.CrawlInterval)
	if err != nil {
		s.logger.Error("Invalid crawl interval", zap.String("interval", s.config.CrawlInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("crawl_interval", s.config.CrawlInterval))

	s.ticker = time.NewTicker(interval)

	// Run first crawl immediately
	go func() {
		s.logger.Info("Running initial crawl")
		if err := s.runCrawl(ctx); err != nil {
			s.logger.Error("Initial crawl failed", zap.Error(err))
		}
	}()

	// Start periodic crawls
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.logger.Info("Running scheduled crawl")
				if err := s.runCrawl(ctx); err != nil {
					s.logger.Error("Scheduled crawl failed", zap.Error(err))
				}
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runCrawl(ctx context.Context) error {
	start := time.Now()
	result, err := s.crawler.Crawl(ctx, "")
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Crawl failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return err
	}

	s.logger.Info("Crawl completed",
		zap.String("status", string(result.Status)),
		zap.Int("new_items", result.NewItemsSaved),
		zap.Duration("duration", duration))
	return nil
}
