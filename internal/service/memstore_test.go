package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/events"
	"github.com/spec-kit/stay-service/internal/repository"
)

// memStore is an in-memory stand-in for postgres. memTx serializes units of work
// and restores a snapshot when one fails, which is what the real tx manager guarantees.
type memStore struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	listings     map[string]domain.Listing
	reservations map[string]domain.Reservation
	coupons      map[string]domain.Coupon
	usages       map[string]bool
	tickets      map[string]domain.Ticket
	roleChanges  map[string]domain.RoleChangeRequest

	failReservationCreate error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     map[string]domain.Account{},
		listings:     map[string]domain.Listing{},
		reservations: map[string]domain.Reservation{},
		coupons:      map[string]domain.Coupon{},
		usages:       map[string]bool{},
		tickets:      map[string]domain.Ticket{},
		roleChanges:  map[string]domain.RoleChangeRequest{},
	}
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memStore{
		accounts:     copyMap(s.accounts),
		listings:     copyMap(s.listings),
		reservations: copyMap(s.reservations),
		coupons:      copyMap(s.coupons),
		usages:       copyMap(s.usages),
		tickets:      copyMap(s.tickets),
		roleChanges:  copyMap(s.roleChanges),
	}
}

func (s *memStore) restore(from *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = from.accounts
	s.listings = from.listings
	s.reservations = from.reservations
	s.coupons = from.coupons
	s.usages = from.usages
	s.tickets = from.tickets
	s.roleChanges = from.roleChanges
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *memStore) addAccount(balance string, role domain.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.accounts[id] = domain.Account{ID: id, Name: string(role), Balance: decimal.RequireFromString(balance), Role: role}
	return id
}

func (s *memStore) addListing(hostID, price string, maxGuests int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.listings[id] = domain.Listing{
		ID:            id,
		HostID:        hostID,
		Title:         "Seaside flat",
		PricePerNight: decimal.RequireFromString(price),
		MaxGuests:     maxGuests,
		Available:     true,
	}
	return id
}

func (s *memStore) addCoupon(coupon domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[coupon.Code] = coupon
}

func (s *memStore) balance(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *memStore) couponUsed(code, accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usages[code+"|"+accountID]
}

type memTx struct {
	mu    sync.Mutex
	store *memStore
}

func (t *memTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	before := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(before)
		return err
	}
	return nil
}

type memAccounts struct{ s *memStore }

func (r memAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (r memAccounts) DeductIfSufficient(_ context.Context, id string, amount decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if a.Balance.LessThan(amount) {
		return false, nil
	}
	a.Balance = a.Balance.Sub(amount)
	r.s.accounts[id] = a
	return true, nil
}

func (r memAccounts) AddToBalance(_ context.Context, id string, delta decimal.Decimal) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a.Balance = a.Balance.Add(delta)
	r.s.accounts[id] = a
	return &a, nil
}

func (r memAccounts) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Role = role
	r.s.accounts[id] = a
	return nil
}

type memListings struct{ s *memStore }

func (r memListings) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &l, nil
}

func (r memListings) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

type memReservations struct{ s *memStore }

func (r memReservations) Create(_ context.Context, res *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failReservationCreate != nil {
		return r.s.failReservationCreate
	}
	for _, existing := range r.s.reservations {
		if existing.ListingID == res.ListingID && existing.Stay().Overlaps(res.Stay()) {
			return repository.ErrOverlappingReservation
		}
	}
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now().UTC()
	r.s.reservations[res.ID] = *res
	return nil
}

func (r memReservations) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &res, nil
}

func (r memReservations) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.reservations, id)
	return nil
}

func (r memReservations) ExistsOverlapping(_ context.Context, listingID string, stay domain.DateRange) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reservations {
		if existing.ListingID == listingID && existing.Stay().Overlaps(stay) {
			return true, nil
		}
	}
	return false, nil
}

type memCoupons struct{ s *memStore }

func (r memCoupons) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r memCoupons) HasConsumer(_ context.Context, code, accountID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.usages[code+"|"+accountID], nil
}

func (r memCoupons) AddConsumer(_ context.Context, code, accountID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := code + "|" + accountID
	if r.s.usages[key] {
		return repository.ErrCouponAlreadyConsumed
	}
	r.s.usages[key] = true
	return nil
}

type memTickets struct{ s *memStore }

func (r memTickets) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.s.tickets[t.ID] = *t
	return nil
}

func (r memTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r memTickets) UpdateStatus(_ context.Context, t *domain.Ticket, expected domain.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tickets[t.ID]
	if !ok || stored.Status != expected {
		return repository.ErrStatusChanged
	}
	r.s.tickets[t.ID] = *t
	return nil
}

type memRoleChanges struct{ s *memStore }

func (r memRoleChanges) Create(_ context.Context, req *domain.RoleChangeRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	r.s.roleChanges[req.ID] = *req
	return nil
}

func (r memRoleChanges) GetByID(_ context.Context, id string) (*domain.RoleChangeRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.roleChanges[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &req, nil
}

func (r memRoleChanges) UpdateDecision(_ context.Context, req *domain.RoleChangeRequest, expected domain.RoleChangeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.roleChanges[req.ID]
	if !ok || stored.Status != expected {
		return repository.ErrStatusChanged
	}
	r.s.roleChanges[req.ID] = *req
	return nil
}

// recordingDispatcher captures published events synchronously.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) SubscribeAll(events.EventHandler) {}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var (
	_ repository.AccountRepository     = memAccounts{}
	_ repository.ListingRepository     = memListings{}
	_ repository.ReservationRepository = memReservations{}
	_ repository.CouponRepository      = memCoupons{}
	_ repository.TicketRepository      = memTickets{}
	_ repository.RoleChangeRepository  = memRoleChanges{}
	_ events.Dispatcher                = (*recordingDispatcher)(nil)
)
