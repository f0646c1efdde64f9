package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

// fakeStore is an in-memory Store.  A single mutex is held for the
// lifetime of each unit of work, which gives the serializable behavior
// the MySQL row locks provide in production; Rollback restores the
// snapshot taken at Begin.
type fakeStore struct {
	mu    sync.Mutex
	state *fakeState
}

type fakeState struct {
	nextID uint64

	users     map[uint64]model.User
	facials   []model.UserFacial
	socials   []model.UserSocial
	events    map[uint64]model.Event
	configs   map[uint64]model.EventConfig // keyed by event id
	terms     map[uint64][]model.EventTerm // keyed by event id
	tickets   map[uint64]model.EventTicket
	prices    map[uint64]model.EventTicketPrice
	links     map[uint64]model.EventTicketLink
	bonuses   []model.EventTicketBonus
	parts     map[uint64]model.EventParticipant
	historics []model.EventParticipantHistoric
	balances  []model.EventBalance
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: &fakeState{
		users:   map[uint64]model.User{},
		events:  map[uint64]model.Event{},
		configs: map[uint64]model.EventConfig{},
		terms:   map[uint64][]model.EventTerm{},
		tickets: map[uint64]model.EventTicket{},
		prices:  map[uint64]model.EventTicketPrice{},
		links:   map[uint64]model.EventTicketLink{},
		parts:   map[uint64]model.EventParticipant{},
	}}
}

func (st *fakeState) id() uint64 {
	st.nextID++
	return st.nextID
}

func (st *fakeState) clone() *fakeState {
	c := &fakeState{
		nextID:    st.nextID,
		users:     map[uint64]model.User{},
		events:    map[uint64]model.Event{},
		configs:   map[uint64]model.EventConfig{},
		terms:     map[uint64][]model.EventTerm{},
		tickets:   map[uint64]model.EventTicket{},
		prices:    map[uint64]model.EventTicketPrice{},
		links:     map[uint64]model.EventTicketLink{},
		parts:     map[uint64]model.EventParticipant{},
		facials:   append([]model.UserFacial(nil), st.facials...),
		socials:   append([]model.UserSocial(nil), st.socials...),
		bonuses:   append([]model.EventTicketBonus(nil), st.bonuses...),
		historics: append([]model.EventParticipantHistoric(nil), st.historics...),
		balances:  append([]model.EventBalance(nil), st.balances...),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.events {
		c.events[k] = v
	}
	for k, v := range st.configs {
		c.configs[k] = v
	}
	for k, v := range st.terms {
		c.terms[k] = append([]model.EventTerm(nil), v...)
	}
	for k, v := range st.tickets {
		c.tickets[k] = v
	}
	for k, v := range st.prices {
		c.prices[k] = v
	}
	for k, v := range st.links {
		c.links[k] = v
	}
	for k, v := range st.parts {
		c.parts[k] = v
	}
	return c
}

// Seeding helpers.  All take the lock so they are safe to call between
// transactions.

func (f *fakeStore) seedEvent(ev model.Event, cfg model.EventConfig, terms ...model.EventTerm) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.ID == 0 {
		ev.ID = f.state.id()
	}
	if ev.Status == "" {
		ev.Status = model.EventEnable
	}
	f.state.events[ev.ID] = ev
	cfg.EventID = ev.ID
	f.state.configs[ev.ID] = cfg
	for i := range terms {
		terms[i].EventID = ev.ID
	}
	f.state.terms[ev.ID] = terms
	return ev.ID
}

func (f *fakeStore) seedTicket(t model.EventTicket) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.state.id()
	}
	if t.Status == "" {
		t.Status = model.TicketOpen
	}
	f.state.tickets[t.ID] = t
	return t.ID
}

func (f *fakeStore) seedPrice(p model.EventTicketPrice) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		p.ID = f.state.id()
	}
	f.state.prices[p.ID] = p
	return p.ID
}

func (f *fakeStore) seedLink(l model.EventTicketLink) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == 0 {
		l.ID = f.state.id()
	}
	if l.Status == "" {
		l.Status = model.LinkOpen
	}
	f.state.links[l.ID] = l
	return l.ID
}

func (f *fakeStore) seedUser(u model.User) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.state.id()
	}
	f.state.users[u.ID] = u
	return u.ID
}

func (f *fakeStore) seedFacial(userID uint64, expiresAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.facials = append(f.state.facials, model.UserFacial{
		ID:        f.state.id(),
		UserID:    userID,
		Path:      fmt.Sprintf("facials/%d/seed.jpg", userID),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
}

func (f *fakeStore) seedSocial(userID uint64, network string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.socials = append(f.state.socials, model.UserSocial{
		ID:       f.state.id(),
		UserID:   userID,
		Network:  network,
		Username: "handle",
	})
}

// backdateParticipant rewrites a participant's creation time so sweep
// tests can age rows without sleeping.
func (f *fakeStore) backdateParticipant(id uint64, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.state.parts[id]
	p.CreatedAt = createdAt
	f.state.parts[id] = p
}

func (f *fakeStore) seedBonus(b model.EventTicketBonus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == 0 {
		b.ID = f.state.id()
	}
	f.state.bonuses = append(f.state.bonuses, b)
}

func (f *fakeStore) link(id uint64) model.EventTicketLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.links[id]
}

func (f *fakeStore) ticket(id uint64) model.EventTicket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.tickets[id]
}

func (f *fakeStore) participant(id uint64) model.EventParticipant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.parts[id]
}

func (f *fakeStore) allBalances() []model.EventBalance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.EventBalance(nil), f.state.balances...)
}

// Store interface.

func (f *fakeStore) Begin(ctx context.Context) (Tx, error) {
	f.mu.Lock()
	return &fakeTx{store: f, snapshot: f.state.clone()}, nil
}

func (f *fakeStore) HistoryPage(ctx context.Context, eventID uint64, page, perPage int) ([]model.HistoricEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.HistoricEntry
	for i := len(f.state.historics) - 1; i >= 0; i-- {
		h := f.state.historics[i]
		p, ok := f.state.parts[h.ParticipantID]
		if !ok || p.EventID != eventID {
			continue
		}
		u := f.state.users[p.UserID]
		t := f.state.tickets[p.EventTicketID]
		all = append(all, model.HistoricEntry{
			ID:            h.ID,
			ParticipantID: h.ParticipantID,
			Status:        h.Status,
			Sequential:    p.Sequential,
			UserName:      u.Name,
			UserEmail:     u.Email,
			TicketTitle:   t.Title,
			CreatedAt:     h.CreatedAt,
		})
	}
	total := len(all)
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeStore) CheckedInCount(ctx context.Context, eventID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, p := range f.state.parts {
		if p.EventID != eventID || p.DeletedAt != nil {
			continue
		}
		var latest *model.EventParticipantHistoric
		for i := range f.state.historics {
			if f.state.historics[i].ParticipantID == id {
				latest = &f.state.historics[i]
			}
		}
		if latest != nil && latest.Status == model.HistoricCheckIn {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) EventByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.state.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ev, nil
}

// fakeTx is one unit of work over the fake state.  The store mutex is
// held from Begin until Commit or Rollback.
type fakeTx struct {
	store    *fakeStore
	snapshot *fakeState
	done     bool
}

func (t *fakeTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.state = t.snapshot
	t.store.mu.Unlock()
	return nil
}

func (t *fakeTx) st() *fakeState { return t.store.state }

func (t *fakeTx) LockLink(ctx context.Context, linkID uint64) (*model.EventTicketLink, error) {
	l, ok := t.st().links[linkID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (t *fakeTx) LinkDetail(ctx context.Context, link *model.EventTicketLink) (*model.LinkDetail, error) {
	st := t.st()
	ticket, ok := st.tickets[link.EventTicketID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ev, ok := st.events[ticket.EventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cfg, ok := st.configs[ev.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.LinkDetail{
		Link:   *link,
		Ticket: ticket,
		Event:  ev,
		Config: cfg,
		Terms:  append([]model.EventTerm(nil), st.terms[ev.ID]...),
	}, nil
}

func (t *fakeTx) CountLinkParticipants(ctx context.Context, linkID uint64) (int, error) {
	n := 0
	for _, p := range t.st().parts {
		if p.EventTicketLinkID == linkID && p.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) CountTicketParticipants(ctx context.Context, ticketID uint64) (int, error) {
	n := 0
	for _, p := range t.st().parts {
		if p.EventTicketID == ticketID && p.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) CountBatchParticipants(ctx context.Context, priceID uint64) (int, error) {
	n := 0
	for _, p := range t.st().parts {
		if p.EventTicketPriceID == priceID && p.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) SetLinkStatus(ctx context.Context, linkID uint64, status model.LinkStatus) error {
	l, ok := t.st().links[linkID]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	t.st().links[linkID] = l
	return nil
}

func (t *fakeTx) SetTicketStatus(ctx context.Context, ticketID uint64, status model.TicketStatus) error {
	tk, ok := t.st().tickets[ticketID]
	if !ok {
		return repository.ErrNotFound
	}
	tk.Status = status
	t.st().tickets[ticketID] = tk
	return nil
}

func (t *fakeTx) CreateLink(ctx context.Context, link *model.EventTicketLink) error {
	link.ID = t.st().id()
	link.CreatedAt = time.Now().UTC()
	t.st().links[link.ID] = *link
	return nil
}

func (t *fakeTx) PriceByID(ctx context.Context, priceID uint64) (*model.EventTicketPrice, error) {
	p, ok := t.st().prices[priceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t *fakeTx) TicketByID(ctx context.Context, ticketID uint64) (*model.EventTicket, error) {
	tk, ok := t.st().tickets[ticketID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tk, nil
}

func (t *fakeTx) BonusesByPrice(ctx context.Context, priceID uint64) ([]model.EventTicketBonus, error) {
	var out []model.EventTicketBonus
	for _, b := range t.st().bonuses {
		if b.EventTicketPriceID == priceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *fakeTx) EventByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, ok := t.st().events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ev, nil
}

func (t *fakeTx) LockEvent(ctx context.Context, eventID uint64) error {
	if _, ok := t.st().events[eventID]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (t *fakeTx) CountEventParticipants(ctx context.Context, eventID uint64) (int, error) {
	n := 0
	for _, p := range t.st().parts {
		if p.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range t.st().users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *fakeTx) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := t.st().users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (t *fakeTx) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = t.st().id()
	u.CreatedAt = time.Now().UTC()
	t.st().users[u.ID] = *u
	return nil
}

func (t *fakeTx) UserGates(ctx context.Context, userID uint64) (model.UserGates, error) {
	g := model.UserGates{}
	for _, s := range t.st().socials {
		if s.UserID == userID {
			g.SocialCount++
		}
	}
	for i := range t.st().facials {
		fc := t.st().facials[i]
		if fc.UserID == userID {
			exp := fc.ExpiresAt
			g.LatestFacialExpires = &exp
		}
	}
	return g, nil
}

func (t *fakeTx) LatestFacial(ctx context.Context, userID uint64) (*model.UserFacial, error) {
	var latest *model.UserFacial
	for i := range t.st().facials {
		if t.st().facials[i].UserID == userID {
			fc := t.st().facials[i]
			latest = &fc
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (t *fakeTx) AddFacial(ctx context.Context, fc *model.UserFacial) error {
	fc.ID = t.st().id()
	fc.CreatedAt = time.Now().UTC()
	t.st().facials = append(t.st().facials, *fc)
	return nil
}

func (t *fakeTx) AddSocial(ctx context.Context, s *model.UserSocial) error {
	s.ID = t.st().id()
	t.st().socials = append(t.st().socials, *s)
	return nil
}

func (t *fakeTx) ActiveParticipantByUserAndTicket(ctx context.Context, userID, ticketID uint64) (*model.EventParticipant, error) {
	for _, p := range t.st().parts {
		if p.UserID == userID && p.EventTicketID == ticketID && p.DeletedAt == nil {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *fakeTx) CreateParticipant(ctx context.Context, p *model.EventParticipant) error {
	p.ID = t.st().id()
	p.CreatedAt = time.Now().UTC()
	t.st().parts[p.ID] = *p
	return nil
}

func (t *fakeTx) ParticipantByID(ctx context.Context, id uint64) (*model.EventParticipant, error) {
	p, ok := t.st().parts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t *fakeTx) SetParticipantStatus(ctx context.Context, id uint64, status model.ParticipantStatus) error {
	p, ok := t.st().parts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	t.st().parts[id] = p
	return nil
}

func (t *fakeTx) ActiveParticipantsByUser(ctx context.Context, userID uint64) ([]repository.ParticipantGates, error) {
	st := t.st()
	var out []repository.ParticipantGates
	for _, p := range st.parts {
		if p.UserID != userID || p.DeletedAt != nil {
			continue
		}
		cfg := st.configs[p.EventID]
		hasTerm := false
		for _, term := range st.terms[p.EventID] {
			if term.Signature {
				hasTerm = true
			}
		}
		out = append(out, repository.ParticipantGates{
			Participant: p,
			Gates: model.EventGates{
				CredentialType:      cfg.CredentialType,
				ParticipantNetworks: cfg.ParticipantNetworks,
				HasSignatureTerm:    hasTerm,
			},
		})
	}
	return out, nil
}

func (t *fakeTx) StaleAwaitingPayment(ctx context.Context, cutoff time.Time) ([]model.EventParticipant, error) {
	var out []model.EventParticipant
	for _, p := range t.st().parts {
		if p.Status == model.StatusAwaitingPayment && p.DeletedAt == nil && p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *fakeTx) SoftDeleteParticipant(ctx context.Context, id uint64) error {
	p, ok := t.st().parts[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	t.st().parts[id] = p
	return nil
}

func (t *fakeTx) LatestHistoric(ctx context.Context, participantID uint64) (*model.EventParticipantHistoric, error) {
	var latest *model.EventParticipantHistoric
	for i := range t.st().historics {
		if t.st().historics[i].ParticipantID == participantID {
			h := t.st().historics[i]
			latest = &h
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (t *fakeTx) AppendHistoric(ctx context.Context, participantID uint64, status model.HistoricStatus) (*model.EventParticipantHistoric, error) {
	h := model.EventParticipantHistoric{
		ID:            t.st().id(),
		ParticipantID: participantID,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	t.st().historics = append(t.st().historics, h)
	return &h, nil
}

func (t *fakeTx) CreateBalance(ctx context.Context, b *model.EventBalance) error {
	b.ID = t.st().id()
	b.CreatedAt = time.Now().UTC()
	t.st().balances = append(t.st().balances, *b)
	return nil
}

func (t *fakeTx) BalancesBySession(ctx context.Context, sessionID string) ([]model.EventBalance, error) {
	var out []model.EventBalance
	for _, b := range t.st().balances {
		if b.SessionID != nil && *b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *fakeTx) SetBalancesStatus(ctx context.Context, sessionID string, status model.BalanceStatus) error {
	for i := range t.st().balances {
		b := &t.st().balances[i]
		if b.SessionID != nil && *b.SessionID == sessionID {
			b.Status = status
		}
	}
	return nil
}

// fakePayments returns one session per call.
type fakePayments struct {
	sessions  int
	lastItems []LineItem
}

func (p *fakePayments) CreateCheckoutSession(ctx context.Context, items []LineItem) (*CheckoutSession, error) {
	p.sessions++
	p.lastItems = items
	var total uint32
	for _, it := range items {
		total += uint32(it.Quantity) * 100
	}
	return &CheckoutSession{
		URL:         fmt.Sprintf("https://pay.example/session-%d", p.sessions),
		SessionID:   fmt.Sprintf("sess-%d", p.sessions),
		TotalAmount: total,
	}, nil
}

// fakePublisher records published registration events.
type fakePublisher struct {
	mu     sync.Mutex
	events []ParticipantRegisteredEvent
}

func (p *fakePublisher) ParticipantRegistered(ctx context.Context, ev ParticipantRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}
