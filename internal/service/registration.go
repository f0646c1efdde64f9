package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/validate"
)

// Profile is the user profile supplied with a registration when the
// email does not resolve to an existing account.  Password is optional;
// invitation-created accounts may set one later.
type Profile struct {
	Name     string `validate:"required,fullname"`
	Document string `validate:"required,cpf"`
	Phone    string `validate:"omitempty,min=8,max=20"`
	Address  string `validate:"omitempty,max=255"`
	Password string `validate:"omitempty,min=8"`
}

// RegistrationResult is returned on successful registration.
type RegistrationResult struct {
	ParticipantID uint64
	QRCode        string
	Sequential    int
	Status        model.ParticipantStatus
}

// RegistrationService creates participants against invitation links.
// Each call runs as one unit of work: the link capacity flip and the
// participant insert commit or roll back together.
type RegistrationService struct {
	store      Store
	publisher  Publisher
	log        *zerolog.Logger
	bcryptCost int
}

// NewRegistrationService constructs a RegistrationService.  The
// publisher may be nil; registration events are then skipped.
func NewRegistrationService(store Store, publisher Publisher, log *zerolog.Logger, bcryptCost int) *RegistrationService {
	return &RegistrationService{store: store, publisher: publisher, log: log, bcryptCost: bcryptCost}
}

// CreateParticipant registers the user identified by email against the
// invitation link.  The email is lowercased; an unknown address creates
// an account from the supplied profile after validation.  Fails with
// ErrLinkOrTicketFull when the link or ticket has no capacity left,
// ErrTicketAlreadyUsed when the user already holds an active
// registration on the ticket, and ErrParticipantNotVerified when the
// event carries a signature-requiring term and the user is unverified.
func (s *RegistrationService) CreateParticipant(ctx context.Context, email string, linkID uint64, profile Profile) (*RegistrationResult, error) {
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

	res, ev, err := s.registerInTx(ctx, tx, email, linkID, profile, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publishRegistered(ctx, ev)
	return res, nil
}

// registerInTx runs the full registration sequence (resolve the user,
// consume the link, reject duplicates, assign the sequential, derive the
// status, insert the participant) inside an existing unit of work, so
// that checkout can register a self-purchase in the same transaction as
// the purchase itself.  forcePayment pins the initial status to
// AWAITING_PAYMENT for paid batches.
func (s *RegistrationService) registerInTx(ctx context.Context, tx Tx, email string, linkID uint64, profile Profile, forcePayment bool) (*RegistrationResult, ParticipantRegisteredEvent, error) {
	var none ParticipantRegisteredEvent

	user, err := s.resolveUser(ctx, tx, email, profile)
	if err != nil {
		return nil, none, err
	}

	detail, err := consumeLink(ctx, tx, linkID)
	if err != nil {
		return nil, none, err
	}

	if _, err := tx.ActiveParticipantByUserAndTicket(ctx, user.ID, detail.Ticket.ID); err == nil {
		return nil, none, repository.ErrTicketAlreadyUsed
	} else if !isNotFound(err) {
		return nil, none, err
	}

	if detail.HasSignatureTerm() && !user.Verified() {
		return nil, none, repository.ErrParticipantNotVerified
	}

	qrcode, err := repository.RandomToken(32)
	if err != nil {
		return nil, none, err
	}

	// The event row lock serializes sequential assignment per event.
	if err := tx.LockEvent(ctx, detail.Event.ID); err != nil {
		return nil, none, err
	}
	count, err := tx.CountEventParticipants(ctx, detail.Event.ID)
	if err != nil {
		return nil, none, err
	}
	sequential := count + 1

	var status model.ParticipantStatus
	if forcePayment {
		status = model.StatusAwaitingPayment
	} else {
		gates, err := tx.UserGates(ctx, user.ID)
		if err != nil {
			return nil, none, err
		}
		status = DeriveStatus(detail.Gates(), gates, nil)
	}

	participant := &model.EventParticipant{
		EventID:            detail.Event.ID,
		EventTicketID:      detail.Ticket.ID,
		EventTicketPriceID: detail.Link.EventTicketPriceID,
		EventTicketLinkID:  detail.Link.ID,
		UserID:             user.ID,
		QRCode:             qrcode,
		Sequential:         sequential,
		Status:             status,
		SearchKey:          detail.Event.Title + " " + detail.Ticket.Title,
	}
	if err := tx.CreateParticipant(ctx, participant); err != nil {
		return nil, none, err
	}

	res := &RegistrationResult{
		ParticipantID: participant.ID,
		QRCode:        qrcode,
		Sequential:    sequential,
		Status:        status,
	}
	ev := ParticipantRegisteredEvent{
		ParticipantID: participant.ID,
		EventID:       detail.Event.ID,
		EventTitle:    detail.Event.Title,
		TicketID:      detail.Ticket.ID,
		TicketTitle:   detail.Ticket.Title,
		UserID:        user.ID,
		UserEmail:     user.Email,
		Sequential:    sequential,
		Status:        string(status),
		RegisteredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	return res, ev, nil
}

// resolveUser finds the account for the lowercased email or creates one
// from the profile.  Creation validates the document checksum and the
// two-part name and hashes the optional password.
func (s *RegistrationService) resolveUser(ctx context.Context, tx Tx, email string, profile Profile) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := tx.UserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	if err := validate.Struct(ctx, profile); err != nil {
		return nil, err
	}
	var hash string
	if profile.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(profile.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}
	user = &model.User{
		Email:        email,
		Name:         strings.TrimSpace(profile.Name),
		Document:     stripDocument(profile.Document),
		Phone:        profile.Phone,
		Address:      profile.Address,
		PasswordHash: hash,
	}
	if err := tx.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, ev ParticipantRegisteredEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.ParticipantRegistered(ctx, ev); err != nil {
		s.log.Warn().Err(err).Uint64("participant_id", ev.ParticipantID).Msg("publish participant.registered failed")
	}
}

// stripDocument keeps only the digits of a document number.
func stripDocument(doc string) string {
	var b strings.Builder
	for _, r := range doc {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
