package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

// SelectionItem is one requested batch of a checkout.  RecipientEmail
// names the participant for this line; when it matches the buyer's own
// address (or is empty) the purchase is a self-purchase and the buyer
// is registered immediately.  Otherwise a recipient invitation link is
// minted and the recipient registers later through it.
type SelectionItem struct {
	PriceID        uint64
	Quantity       int
	RecipientEmail string
	Profile        Profile
}

// CheckoutResult reports the outcome of a sale.  URL is empty when no
// payment was required.
type CheckoutResult struct {
	URL          string
	SessionID    *string
	TotalAmount  uint32
	Participants []RegistrationResult
	LinkIDs      []uint64
}

// CheckoutService sells tickets across price batches, mints bonus links
// and records the balance ledger.  The whole sale is one unit of work:
// a capacity or not-found failure on any batch aborts every write,
// including links and registrations already processed for earlier
// batches.
type CheckoutService struct {
	store        Store
	payments     PaymentProvider
	registration *RegistrationService
	log          *zerolog.Logger
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(store Store, payments PaymentProvider, registration *RegistrationService, log *zerolog.Logger) *CheckoutService {
	return &CheckoutService{store: store, payments: payments, registration: registration, log: log}
}

// SellTickets processes a selection for the buyer.  For each batch it
// verifies availability (ErrNotFound / ErrBatchLimitReached), collects
// paid line items, registers the buyer or mints a recipient link, and
// expands every bonus rule of the batch into an extra invitation link.
// When any paid items were collected a single checkout session covers
// them all, and one ledger row per batch references it.
func (s *CheckoutService) SellTickets(ctx context.Context, buyerID uint64, selection []SelectionItem) (*CheckoutResult, error) {
	if len(selection) == 0 {
		return nil, repository.ErrValidation
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

	buyer, err := tx.UserByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{}
	var lineItems []LineItem
	var registered []ParticipantRegisteredEvent
	type pendingBalance struct {
		price    *model.EventTicketPrice
		eventID  uint64
		quantity int
	}
	var balances []pendingBalance

	for _, item := range selection {
		if item.Quantity <= 0 {
			return nil, repository.ErrValidation
		}
		price, err := tx.PriceByID(ctx, item.PriceID)
		if err != nil {
			return nil, err
		}
		taken, err := tx.CountBatchParticipants(ctx, price.ID)
		if err != nil {
			return nil, err
		}
		if price.Guests-taken < item.Quantity {
			return nil, repository.ErrBatchLimitReached
		}
		ticket, err := tx.TicketByID(ctx, price.EventTicketID)
		if err != nil {
			return nil, err
		}

		if price.PriceCents > 0 {
			lineItems = append(lineItems, LineItem{PriceRef: price.ID, Quantity: item.Quantity})
		}

		link := &model.EventTicketLink{
			EventTicketID:      ticket.ID,
			EventTicketPriceID: price.ID,
			OwnerUserID:        buyerID,
			Invite:             item.Quantity,
			Status:             model.LinkOpen,
		}
		if err := tx.CreateLink(ctx, link); err != nil {
			return nil, err
		}
		result.LinkIDs = append(result.LinkIDs, link.ID)

		if isSelfPurchase(buyer.Email, item.RecipientEmail) {
			res, ev, err := s.registration.registerInTx(ctx, tx, buyer.Email, link.ID, item.Profile, price.PriceCents > 0)
			if err != nil {
				return nil, err
			}
			result.Participants = append(result.Participants, *res)
			registered = append(registered, ev)
		}

		bonuses, err := tx.BonusesByPrice(ctx, price.ID)
		if err != nil {
			return nil, err
		}
		for _, bonus := range bonuses {
			bonusLink := &model.EventTicketLink{
				EventTicketID:      bonus.TargetTicketID,
				EventTicketPriceID: bonus.TargetPriceID,
				OwnerUserID:        buyerID,
				Invite:             bonus.Quantity,
				Status:             model.LinkOpen,
			}
			if err := tx.CreateLink(ctx, bonusLink); err != nil {
				return nil, err
			}
			result.LinkIDs = append(result.LinkIDs, bonusLink.ID)
		}

		balances = append(balances, pendingBalance{price: price, eventID: ticket.EventID, quantity: item.Quantity})
	}

	var sessionID *string
	if len(lineItems) > 0 {
		session, err := s.payments.CreateCheckoutSession(ctx, lineItems)
		if err != nil {
			return nil, err
		}
		sessionID = &session.SessionID
		result.URL = session.URL
		result.SessionID = sessionID
		result.TotalAmount = session.TotalAmount
	}

	for _, pb := range balances {
		status := model.BalancePaid
		var rowSession *string
		if pb.price.PriceCents > 0 {
			status = model.BalancePending
			rowSession = sessionID
		}
		row := &model.EventBalance{
			UserID:      buyerID,
			EventID:     pb.eventID,
			TicketID:    pb.price.EventTicketID,
			PriceID:     pb.price.ID,
			Quantity:    pb.quantity,
			AmountCents: pb.price.PriceCents * uint32(pb.quantity),
			SessionID:   rowSession,
			Status:      status,
		}
		if err := tx.CreateBalance(ctx, row); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	for _, ev := range registered {
		s.registration.publishRegistered(ctx, ev)
	}
	return result, nil
}

func isSelfPurchase(buyerEmail, recipientEmail string) bool {
	recipient := strings.ToLower(strings.TrimSpace(recipientEmail))
	return recipient == "" || recipient == strings.ToLower(buyerEmail)
}
