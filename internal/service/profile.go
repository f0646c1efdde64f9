package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

// ProfileService applies the user-profile mutations that can unblock a
// gating status: facial uploads and social-network submissions.  After
// every mutation the status of each active participant of the user is
// re-derived in the same unit of work.
type ProfileService struct {
	store          Store
	comparer       FacialComparer
	objects        ObjectStore
	log            *zerolog.Logger
	facialTTL      time.Duration
	matchThreshold float64
}

// NewProfileService constructs a ProfileService.  facialTTL is how long
// an accepted facial record stays valid; matchThreshold is the minimum
// similarity percentage accepted when rotating an existing record.
func NewProfileService(store Store, comparer FacialComparer, objects ObjectStore, log *zerolog.Logger, facialTTL time.Duration, matchThreshold float64) *ProfileService {
	return &ProfileService{
		store:          store,
		comparer:       comparer,
		objects:        objects,
		log:            log,
		facialTTL:      facialTTL,
		matchThreshold: matchThreshold,
	}
}

// AttachFacial stores a new reference photo for the user identified by
// email and re-derives participant statuses.  When a previous facial
// record exists the new photo must match it: a similarity below the
// threshold or a not-comparable signal rejects the upload with
// ErrValidation.  The first photo of a user is accepted as-is.
func (s *ProfileService) AttachFacial(ctx context.Context, email string, photo []byte) (*model.UserFacial, error) {
	if len(photo) == 0 {
		return nil, fmt.Errorf("%w: empty photo", repository.ErrValidation)
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	user, err := tx.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	previous, err := tx.LatestFacial(ctx, user.ID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if previous != nil {
		reference, err := s.objects.Get(ctx, previous.Path)
		if err != nil {
			return nil, err
		}
		similarity, err := s.comparer.Compare(ctx, reference, photo)
		if err != nil {
			if errors.Is(err, ErrNotComparable) {
				return nil, fmt.Errorf("%w: photo not comparable", repository.ErrValidation)
			}
			return nil, err
		}
		if similarity < s.matchThreshold {
			return nil, fmt.Errorf("%w: facial similarity %.1f below threshold", repository.ErrValidation, similarity)
		}
	}

	token, err := repository.RandomToken(16)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("facials/%d/%s.jpg", user.ID, token)
	if err := s.objects.Put(ctx, path, photo); err != nil {
		return nil, err
	}

	facial := &model.UserFacial{
		UserID:    user.ID,
		Path:      path,
		ExpiresAt: time.Now().UTC().Add(s.facialTTL),
	}
	if err := tx.AddFacial(ctx, facial); err != nil {
		return nil, err
	}

	if err := rederiveParticipants(ctx, tx, user.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return facial, nil
}

// AttachSocial records a social-network handle for the user and
// re-derives participant statuses, unblocking the network gate.
func (s *ProfileService) AttachSocial(ctx context.Context, email, network, username string) (*model.UserSocial, error) {
	if network == "" || username == "" {
		return nil, fmt.Errorf("%w: network and username are required", repository.ErrValidation)
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	user, err := tx.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	social := &model.UserSocial{UserID: user.ID, Network: network, Username: username}
	if err := tx.AddSocial(ctx, social); err != nil {
		return nil, err
	}
	if err := rederiveParticipants(ctx, tx, user.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return social, nil
}

// rederiveParticipants recomputes the gating status of every active
// participant of the user whose state a profile mutation can change.
// AWAITING_PAYMENT is left alone: only settlement clears it.
func rederiveParticipants(ctx context.Context, tx Tx, userID uint64) error {
	gates, err := tx.UserGates(ctx, userID)
	if err != nil {
		return err
	}
	participants, err := tx.ActiveParticipantsByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range participants {
		p := &participants[i].Participant
		if p.Status == model.StatusAwaitingPayment || p.Status == model.StatusComplete {
			continue
		}
		next := DeriveStatus(participants[i].Gates, gates, p)
		if next != p.Status {
			if err := tx.SetParticipantStatus(ctx, p.ID, next); err != nil {
				return err
			}
		}
	}
	return nil
}
