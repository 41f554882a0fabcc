package service_test

import (
	"context"
	"strings"
	"sync"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

// fakeLedger backs every repository with plain maps so the managers can be
// exercised without a live store. The tx manager serializes transactions
// with a mutex and restores a snapshot when the function fails, which gives
// the same observable behavior as row locks plus rollback.
type fakeLedger struct {
	mu sync.Mutex

	users     map[int]*model.User
	events    map[int]*model.Event
	bookings  map[int]*model.Booking
	payments  map[int]*model.Payment
	reviews   map[int]*model.Review
	referrals map[int]*model.ReferralCode

	nextID int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:     make(map[int]*model.User),
		events:    make(map[int]*model.Event),
		bookings:  make(map[int]*model.Booking),
		payments:  make(map[int]*model.Payment),
		reviews:   make(map[int]*model.Review),
		referrals: make(map[int]*model.ReferralCode),
		nextID:    0,
	}
}

func (l *fakeLedger) id() int {
	l.nextID++
	return l.nextID
}

func (l *fakeLedger) addUser(points float64) *model.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	user := &model.User{ID: l.id(), Username: "user", Email: "user@example.com", Role: model.RoleUser, Points: points}
	l.users[user.ID] = user
	return cloneUser(user)
}

func (l *fakeLedger) addEvent(price float64, tickets int, eventType model.EventType) *model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	event := &model.Event{ID: l.id(), Name: "event", Price: price, TicketAvailable: tickets, EventType: eventType}
	l.events[event.ID] = event
	return cloneEvent(event)
}

func (l *fakeLedger) addBooking(userID, eventID int, amount float64, status model.BookingStatus) *model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	booking := &model.Booking{ID: l.id(), UserID: userID, EventID: eventID, Quantity: 1, Amount: amount, Status: status}
	l.bookings[booking.ID] = booking
	return cloneBooking(booking)
}

func (l *fakeLedger) addPayment(bookingID int, amount float64) *model.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	payment := &model.Payment{ID: l.id(), BookingID: bookingID, TotalAmount: amount, PaymentStatus: model.PaymentStatusCompleted}
	l.payments[payment.ID] = payment
	return clonePayment(payment)
}

func (l *fakeLedger) userPoints(id int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.users[id].Points
}

func (l *fakeLedger) eventTickets(id int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[id].TicketAvailable
}

func (l *fakeLedger) bookingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bookings)
}

func cloneUser(u *model.User) *model.User    { c := *u; return &c }
func cloneEvent(e *model.Event) *model.Event { c := *e; return &c }

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	c.Event = nil
	c.Payment = nil
	return &c
}
func clonePayment(p *model.Payment) *model.Payment {
	c := *p
	c.Booking = nil
	return &c
}

// snapshot deep-copies the mutable tables for rollback.
func (l *fakeLedger) snapshot() *fakeLedger {
	s := newFakeLedger()
	s.nextID = l.nextID
	for id, u := range l.users {
		s.users[id] = cloneUser(u)
	}
	for id, e := range l.events {
		s.events[id] = cloneEvent(e)
	}
	for id, b := range l.bookings {
		s.bookings[id] = cloneBooking(b)
	}
	for id, p := range l.payments {
		s.payments[id] = clonePayment(p)
	}
	for id, r := range l.reviews {
		c := *r
		s.reviews[id] = &c
	}
	for id, r := range l.referrals {
		c := *r
		s.referrals[id] = &c
	}
	return s
}

func (l *fakeLedger) restore(s *fakeLedger) {
	l.users = s.users
	l.events = s.events
	l.bookings = s.bookings
	l.payments = s.payments
	l.reviews = s.reviews
	l.referrals = s.referrals
	l.nextID = s.nextID
}

// fakeTxManager runs the transaction body under the ledger mutex and rolls
// the ledger back when the body returns an error.
type fakeTxManager struct {
	ledger *fakeLedger
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()

	before := m.ledger.snapshot()
	if err := fn(nil); err != nil {
		m.ledger.restore(before)
		return err
	}
	return nil
}

// Repository fakes. Transaction methods assume the ledger mutex is already
// held by the tx manager; pool methods take it themselves.

type fakeEventRepo struct{ ledger *fakeLedger }

func (r *fakeEventRepo) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	c := *event
	c.ID = r.ledger.id()
	r.ledger.events[c.ID] = &c
	return cloneEvent(&c), nil
}

func (r *fakeEventRepo) List(ctx context.Context, offset, limit int) ([]*model.Event, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var events []*model.Event
	for _, e := range r.ledger.events {
		events = append(events, cloneEvent(e))
	}
	return events, nil
}

func (r *fakeEventRepo) Search(ctx context.Context, params model.SearchEventsParams) ([]*model.Event, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var events []*model.Event
	for _, e := range r.ledger.events {
		if params.Term != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(params.Term)) {
			continue
		}
		if params.Type != nil && e.EventType != *params.Type {
			continue
		}
		events = append(events, cloneEvent(e))
	}
	return events, nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id int) (*model.Event, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	e, ok := r.ledger.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	e, ok := r.ledger.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	if params.Name != nil {
		e.Name = *params.Name
	}
	if params.EventType != nil {
		e.EventType = *params.EventType
	}
	if params.Price != nil {
		e.Price = *params.Price
	}
	if params.TicketAvailable != nil {
		e.TicketAvailable = *params.TicketAvailable
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) CountByType(ctx context.Context) ([]model.EventTypeCount, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	counts := make(map[model.EventType]int)
	for _, e := range r.ledger.events {
		counts[e.EventType]++
	}
	var result []model.EventTypeCount
	for eventType, count := range counts {
		result = append(result, model.EventTypeCount{EventType: eventType, Count: count})
	}
	return result, nil
}

func (r *fakeEventRepo) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error) {
	e, ok := r.ledger.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) DecrementTickets(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	e, ok := r.ledger.events[id]
	if !ok || e.TicketAvailable < quantity {
		return apperrors.ErrNoTicketsAvailable
	}
	e.TicketAvailable -= quantity
	return nil
}

func (r *fakeEventRepo) IncrementTickets(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	e, ok := r.ledger.events[id]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	e.TicketAvailable += quantity
	return nil
}

func (r *fakeEventRepo) SetDiscountedPrice(ctx context.Context, tx pgx.Tx, id int, price float64) error {
	e, ok := r.ledger.events[id]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	e.DiscountedPrice = &price
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	if _, ok := r.ledger.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.ledger.events, id)
	return nil
}

type fakeUserRepo struct{ ledger *fakeLedger }

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	u, ok := r.ledger.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, u := range r.ledger.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) SetRefreshToken(ctx context.Context, id int, token *string) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	u, ok := r.ledger.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	count := 0
	for _, u := range r.ledger.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, tx pgx.Tx, user *model.User) (*model.User, error) {
	for _, existing := range r.ledger.users {
		if existing.Email == user.Email {
			return nil, apperrors.ErrEmailAlreadyRegistered
		}
	}
	c := *user
	c.ID = r.ledger.id()
	r.ledger.users[c.ID] = &c
	return cloneUser(&c), nil
}

func (r *fakeUserRepo) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.User, error) {
	u, ok := r.ledger.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) SetPoints(ctx context.Context, tx pgx.Tx, id int, points float64) error {
	u, ok := r.ledger.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Points = points
	return nil
}

func (r *fakeUserRepo) IncrementPoints(ctx context.Context, tx pgx.Tx, id int, delta float64) error {
	u, ok := r.ledger.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Points += delta
	return nil
}

type fakeBookingRepo struct{ ledger *fakeLedger }

func (r *fakeBookingRepo) FindByID(ctx context.Context, id int) (*model.Booking, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	b, ok := r.ledger.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) ListByUserID(ctx context.Context, userID int) ([]*model.Booking, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var bookings []*model.Booking
	for _, b := range r.ledger.bookings {
		if b.UserID == userID {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	return bookings, nil
}

func (r *fakeBookingRepo) Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error) {
	c := *booking
	c.ID = r.ledger.id()
	r.ledger.bookings[c.ID] = &c
	return cloneBooking(&c), nil
}

func (r *fakeBookingRepo) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error) {
	b, ok := r.ledger.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error) {
	b, ok := r.ledger.bookings[id]
	if !ok || b.Status != model.BookingStatusDraft {
		return nil, apperrors.ErrBookingAlreadyPaid
	}
	b.Status = model.BookingStatusCompleted
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	if _, ok := r.ledger.bookings[id]; !ok {
		return apperrors.ErrBookingNotFound
	}
	delete(r.ledger.bookings, id)
	return nil
}

func (r *fakeBookingRepo) DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error {
	for id, b := range r.ledger.bookings {
		if b.EventID == eventID {
			delete(r.ledger.bookings, id)
		}
	}
	return nil
}

type fakePaymentRepo struct{ ledger *fakeLedger }

func (r *fakePaymentRepo) List(ctx context.Context) ([]*model.Payment, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var payments []*model.Payment
	for _, p := range r.ledger.payments {
		payments = append(payments, clonePayment(p))
	}
	return payments, nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id int) (*model.Payment, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	p, ok := r.ledger.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (r *fakePaymentRepo) MonthlyTotals(ctx context.Context) ([]model.MonthlyRevenue, error) {
	return nil, nil
}

func (r *fakePaymentRepo) TotalPaidAmount(ctx context.Context) (float64, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	total := 0.0
	for _, p := range r.ledger.payments {
		total += p.TotalAmount
	}
	return total, nil
}

func (r *fakePaymentRepo) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error) {
	for _, existing := range r.ledger.payments {
		if existing.BookingID == payment.BookingID {
			return nil, apperrors.ErrBookingAlreadyPaid
		}
	}
	c := *payment
	c.ID = r.ledger.id()
	r.ledger.payments[c.ID] = &c
	return clonePayment(&c), nil
}

func (r *fakePaymentRepo) FindByIDForReview(ctx context.Context, tx pgx.Tx, id int) (*model.Payment, error) {
	p, ok := r.ledger.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	payment := clonePayment(p)
	booking, ok := r.ledger.bookings[p.BookingID]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	payment.Booking = cloneBooking(booking)
	if event, ok := r.ledger.events[booking.EventID]; ok {
		payment.Booking.Event = cloneEvent(event)
	}
	return payment, nil
}

func (r *fakePaymentRepo) DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error {
	for id, p := range r.ledger.payments {
		if b, ok := r.ledger.bookings[p.BookingID]; ok && b.EventID == eventID {
			delete(r.ledger.payments, id)
		}
	}
	return nil
}

type fakeReviewRepo struct{ ledger *fakeLedger }

func (r *fakeReviewRepo) List(ctx context.Context, offset, limit int) ([]*model.Review, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var reviews []*model.Review
	for _, rev := range r.ledger.reviews {
		c := *rev
		reviews = append(reviews, &c)
	}
	return reviews, nil
}

func (r *fakeReviewRepo) Create(ctx context.Context, tx pgx.Tx, review *model.Review) (*model.Review, error) {
	for _, existing := range r.ledger.reviews {
		if existing.PaymentID == review.PaymentID && existing.UserID == review.UserID {
			return nil, apperrors.ErrReviewAlreadyExists
		}
	}
	c := *review
	c.ID = r.ledger.id()
	r.ledger.reviews[c.ID] = &c
	return &c, nil
}

func (r *fakeReviewRepo) Exists(ctx context.Context, tx pgx.Tx, paymentID, userID int) (bool, error) {
	for _, rev := range r.ledger.reviews {
		if rev.PaymentID == paymentID && rev.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error {
	for id, rev := range r.ledger.reviews {
		if rev.EventID == eventID {
			delete(r.ledger.reviews, id)
		}
	}
	return nil
}

type fakeReferralRepo struct{ ledger *fakeLedger }

func (r *fakeReferralRepo) FindByCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, ref := range r.ledger.referrals {
		if ref.Code == code {
			c := *ref
			return &c, nil
		}
	}
	return nil, apperrors.ErrInvalidReferralCode
}

func (r *fakeReferralRepo) FindByUserID(ctx context.Context, userID int) (*model.ReferralCode, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, ref := range r.ledger.referrals {
		if ref.UserID == userID {
			c := *ref
			return &c, nil
		}
	}
	return nil, apperrors.ErrInvalidReferralCode
}

func (r *fakeReferralRepo) Create(ctx context.Context, tx pgx.Tx, referral *model.ReferralCode) (*model.ReferralCode, error) {
	c := *referral
	c.ID = r.ledger.id()
	r.ledger.referrals[c.ID] = &c
	return &c, nil
}

func (r *fakeReferralRepo) CodeExists(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	for _, ref := range r.ledger.referrals {
		if ref.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReferralRepo) IncrementUsage(ctx context.Context, tx pgx.Tx, id int) error {
	ref, ok := r.ledger.referrals[id]
	if !ok {
		return apperrors.ErrInvalidReferralCode
	}
	ref.CountUsed++
	return nil
}
