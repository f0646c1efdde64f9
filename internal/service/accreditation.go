package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

// HistoryPageSize is the number of entries per accreditation history page.
const HistoryPageSize = 20

// checkedInTTL bounds how stale the cached dashboard counter may be.
const checkedInTTL = 30 * time.Second

// HistoryPageResult is one page of accreditation history.
type HistoryPageResult struct {
	Entries []model.HistoricEntry `json:"entries"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
	Total   int                   `json:"total"`
}

// AccreditationService records check-in/check-out transitions and
// serves the history and dashboard reads.  The Redis client may be
// nil; counter reads then always hit the database.  Authorization of
// the calling staff member happens at the boundary, before this
// service is invoked.
type AccreditationService struct {
	store Store
	cache *redis.Client
	log   *zerolog.Logger
}

// NewAccreditationService constructs an AccreditationService.
func NewAccreditationService(store Store, cache *redis.Client, log *zerolog.Logger) *AccreditationService {
	return &AccreditationService{store: store, cache: cache, log: log}
}

// Accredit toggles the participant's accreditation state: when the
// newest historic row is CHECK_IN the new row is CHECK_OUT, otherwise
// (no rows, or newest is CHECK_OUT) it is CHECK_IN.  Prior rows are
// never mutated, so repeated calls alternate instead of erroring.
// Fails with ErrEventDisabled while the event is DISABLE and with
// ErrNotFound when the participant does not belong to the event.
func (s *AccreditationService) Accredit(ctx context.Context, eventID, participantID uint64) (model.HistoricStatus, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ev, err := tx.EventByID(ctx, eventID)
	if err != nil {
		return "", err
	}
	if ev.Status == model.EventDisable {
		return "", repository.ErrEventDisabled
	}
	participant, err := tx.ParticipantByID(ctx, participantID)
	if err != nil {
		return "", err
	}
	if participant.EventID != eventID || participant.DeletedAt != nil {
		return "", repository.ErrNotFound
	}

	next := model.HistoricCheckIn
	latest, err := tx.LatestHistoric(ctx, participantID)
	if err == nil && latest.Status == model.HistoricCheckIn {
		next = model.HistoricCheckOut
	} else if err != nil && !isNotFound(err) {
		return "", err
	}

	if _, err := tx.AppendHistoric(ctx, participantID, next); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true

	s.invalidateCounter(ctx, eventID)
	return next, nil
}

// History returns one page of accreditation history for the event,
// newest first.
func (s *AccreditationService) History(ctx context.Context, eventID uint64, page int) (*HistoryPageResult, error) {
	if _, err := s.store.EventByID(ctx, eventID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	entries, total, err := s.store.HistoryPage(ctx, eventID, page, HistoryPageSize)
	if err != nil {
		return nil, err
	}
	return &HistoryPageResult{Entries: entries, Page: page, PerPage: HistoryPageSize, Total: total}, nil
}

// CheckedIn returns the number of participants currently checked in at
// the event, served from the Redis counter cache when warm.
func (s *AccreditationService) CheckedIn(ctx context.Context, eventID uint64) (int, error) {
	key := checkedInKey(eventID)
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, key).Result(); err == nil {
			if n, convErr := strconv.Atoi(v); convErr == nil {
				return n, nil
			}
		}
	}
	n, err := s.store.CheckedInCount(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.Itoa(n), checkedInTTL).Err(); err != nil {
			s.log.Debug().Err(err).Uint64("event_id", eventID).Msg("checked-in cache set failed")
		}
	}
	return n, nil
}

func (s *AccreditationService) invalidateCounter(ctx context.Context, eventID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, checkedInKey(eventID)).Err(); err != nil {
		s.log.Debug().Err(err).Uint64("event_id", eventID).Msg("checked-in cache invalidation failed")
	}
}

func checkedInKey(eventID uint64) string {
	return fmt.Sprintf("accreditation:checkedin:%d", eventID)
}
