package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"stayhook/internal/adapters/email"
	"stayhook/internal/adapters/observability"
	"stayhook/internal/app"
	"stayhook/internal/domain"
	"stayhook/internal/shared"
	mysqlrepo "stayhook/internal/storage/mysql"
)

// disabledMailer fails every send so deliveries are recorded FAILED and
// retried once a key is configured.
type disabledMailer struct{}

func (disabledMailer) Send(context.Context, domain.Message) (string, error) {
	return "", errors.New("email delivery disabled: EMAIL_API_KEY not set")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	log.Info().
		Int("workers", cfg.Workers).
		Int("batch", cfg.Batch).
		Dur("poll", cfg.PollInterval).
		Int("min_confidence", cfg.MinConfidence).
		Msg("processor starting")

	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	var mailer domain.Mailer = disabledMailer{}
	if cfg.EmailKey != "" {
		client, err := email.New(cfg.EmailBase, cfg.EmailKey, cfg.EmailFrom, cfg.EmailRPS, cfg.EmailTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize email client")
		}
		mailer = client
	}

	proc := app.NewEventProcessor(repo, mailer, app.ProcessorConfig{
		MinConfidence:      cfg.MinConfidence,
		DeliveryWindow:     cfg.DeliveryWindow,
		SendTimeout:        cfg.EmailTimeout,
		GuideBaseURL:       cfg.GuideBaseURL,
		Language:           cfg.GuideLanguage,
		DedupeReservations: cfg.DedupeReservations,
	})

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		n, err := drain(ctx, repo, proc, sem, cfg.Batch)
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("poll failed")
		}
		// A full batch means more may be waiting; poll again right away.
		if n == cfg.Batch && ctx.Err() == nil {
			continue
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("processor stopped")
			return
		case <-ticker.C:
		}
	}
}

// drain runs one batch of PENDING events with at most sem's weight in flight
// and waits for all of them.
func drain(ctx context.Context, events domain.EventStore, proc *app.EventProcessor, sem *semaphore.Weighted, batch int) (int, error) {
	pending, err := events.ListPending(ctx, batch)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var g errgroup.Group
	for _, ev := range pending {
		// acquire before launching the goroutine; release inside it.
		// On shutdown Acquire fails, so nothing new is claimed while
		// g.Wait lets claimed events finish.
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		id := ev.ID
		g.Go(func() error {
			defer sem.Release(1)
			st, err := proc.Process(ctx, id)
			if err != nil {
				log.Warn().Str("event_id", id).Err(err).Msg("process failed")
				return nil
			}
			log.Debug().Str("event_id", id).Str("status", string(st)).Msg("event done")
			return nil
		})
	}
	_ = g.Wait()
	return len(pending), nil
}
