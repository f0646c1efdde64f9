package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/config"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/database"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/queue"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/service"
)

// storeAdapter narrows *repository.Store to the service.Store interface:
// Begin must return the service-level Tx rather than the concrete type.
type storeAdapter struct {
	*repository.Store
}

func (a storeAdapter) Begin(ctx context.Context) (service.Tx, error) {
	return a.Store.Begin(ctx)
}

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	zerolog.TimeFieldFormat = time.RFC3339
	log := zerolog.New(os.Stdout).With().Timestamp().Str("app", "nexevent-worker").Logger()

	cfg := config.Load()
	log.Info().Str("env", cfg.Env).Msg("starting worker")

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpen,
		MaxIdleConns:    cfg.DBMaxIdle,
		ConnMaxLifetime: time.Duration(cfg.DBConnLifeMin) * time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer func() { _ = db.Close() }()
	log.Info().Msg("database connected")

	cache := config.NewRedisClient(&log)

	store := repository.NewStore(db, &log)
	adapted := storeAdapter{store}

	settlement := service.NewSettlementService(adapted, &log)
	sweep := service.NewSweepService(adapted, &log, time.Duration(cfg.PaymentTTLMin)*time.Minute)
	accreditation := service.NewAccreditationService(adapted, cache, &log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := queue.StartSettlementConsumer(ctx, cfg.AMQPURL, settlement, &log); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("settlement consumer stopped")
		}
	}()

	go runSweep(ctx, sweep, time.Duration(cfg.SweepIntervalMin)*time.Minute, &log)

	if cache != nil {
		go warmCounters(ctx, store, accreditation, &log)
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
}

// runSweep reclaims stale awaiting-payment registrations on a fixed
// cadence until the context is cancelled.
func runSweep(ctx context.Context, sweep *service.SweepService, every time.Duration, log *zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sweep.Reclaim(ctx); err != nil {
				log.Error().Err(err).Msg("reclaim sweep failed")
			}
		}
	}
}

// warmCounters keeps the per-event checked-in counters hot in Redis so
// dashboard reads rarely fall through to the database.
func warmCounters(ctx context.Context, store *repository.Store, accreditation *service.AccreditationService, log *zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := store.EnabledEventIDs(ctx)
			if err != nil {
				log.Error().Err(err).Msg("listing enabled events failed")
				continue
			}
			for _, id := range ids {
				if _, err := accreditation.CheckedIn(ctx, id); err != nil {
					log.Warn().Err(err).Uint64("event_id", id).Msg("counter warm failed")
				}
			}
		}
	}
}
