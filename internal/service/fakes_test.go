package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	"github.com/AmrAnter44/sys-body-sub000/pkg/config"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

var testToday = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func testRules() StatusRules {
	return StatusRules{Location: time.UTC, Now: func() time.Time { return testToday }}
}

func intPtr(v int) *int { return &v }

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// fakeLedger is an in-memory store whose writes honour the same conditional rules as the
// SQL repositories. Every method holds one lock so concurrent callers serialise.
type fakeLedger struct {
	mu           sync.Mutex
	subs         map[string]*models.Subscription
	codes        map[string]*models.AccessCode
	attendance   map[string]*models.SessionAttendance
	payments     []models.Payment
	members      map[string]*models.Member
	history      []models.PointsEntry
	receipt      int64
	summaryCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		subs:       make(map[string]*models.Subscription),
		codes:      make(map[string]*models.AccessCode),
		attendance: make(map[string]*models.SessionAttendance),
		members:    make(map[string]*models.Member),
		receipt:    999,
	}
}

func (l *fakeLedger) subscriptions() *ledgerSubscriptions { return &ledgerSubscriptions{l} }
func (l *fakeLedger) paymentStore() *ledgerPayments       { return &ledgerPayments{l} }
func (l *fakeLedger) sessionStore() *ledgerSessions       { return &ledgerSessions{l} }

func (l *fakeLedger) seed(sub models.Subscription) *models.Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Code == "" {
		sub.Code = fmt.Sprintf("CARD%04d", len(l.subs)+1)
	}
	l.subs[sub.ID] = &sub
	l.codes[sub.Code] = &models.AccessCode{Code: sub.Code, Kind: models.CodeKindSubscription, ServiceType: sub.ServiceType, SubscriptionID: sub.ID}
	cp := sub
	return &cp
}

func (l *fakeLedger) seedMember(member models.Member) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	l.members[member.ID] = &member
}

func (l *fakeLedger) snapshot(id string) models.Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.subs[id]
}

func (l *fakeLedger) attendanceFor(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, row := range l.attendance {
		if row.SubscriptionID == id {
			count++
		}
	}
	return count
}

func (l *fakeLedger) memberPoints(number int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		if m.MemberNumber == number {
			return m.Points
		}
	}
	return -1
}

func (l *fakeLedger) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sub, ok := l.subs[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (l *fakeLedger) FindByNumber(ctx context.Context, serviceType models.ServiceType, number int) (*models.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, sub := range l.subs {
		if sub.ServiceType == serviceType && sub.Number == number && number >= 0 {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (l *fakeLedger) FindByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ac, ok := l.codes[code]; ok {
		cp := *ac
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (l *fakeLedger) debit(redemption *models.PointsRedemption) error {
	if redemption == nil {
		return nil
	}
	member, ok := l.members[redemption.MemberID]
	if !ok || member.Points < redemption.Points {
		return repository.ErrInsufficientPoints
	}
	member.Points -= redemption.Points
	l.history = append(l.history, models.PointsEntry{MemberID: member.ID, Points: -redemption.Points, Action: models.PointsRedeemed, Description: redemption.Description})
	return nil
}

func (l *fakeLedger) record(sub *models.Subscription, payment *models.Payment) {
	if payment == nil {
		return
	}
	l.receipt++
	payment.ID = uuid.NewString()
	payment.ReceiptNumber = l.receipt
	payment.SubscriptionID = sub.ID
	payment.ServiceType = sub.ServiceType
	payment.SubscriptionNumber = sub.Number
	l.payments = append(l.payments, *payment)
}

func (l *fakeLedger) mint(source repository.CodeSource) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := source.Next()
		if err != nil {
			return "", err
		}
		if _, taken := l.codes[code]; !taken {
			return code, nil
		}
	}
	return "", repository.ErrCodeSpaceExhausted
}

type ledgerSubscriptions struct{ *fakeLedger }

func (l *ledgerSubscriptions) List(ctx context.Context, filter models.SubscriptionFilter) ([]models.Subscription, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Subscription
	for _, sub := range l.subs {
		if sub.ServiceType == filter.ServiceType {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, len(out), nil
}

func (l *ledgerSubscriptions) Create(ctx context.Context, sub *models.Subscription, params repository.CreateSubscriptionParams) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if params.AutoNumber {
		next := 1
		for _, existing := range l.subs {
			if existing.ServiceType == sub.ServiceType && existing.Number >= next {
				next = existing.Number + 1
			}
		}
		sub.Number = next
	} else if sub.Number >= 0 {
		for _, existing := range l.subs {
			if existing.ServiceType == sub.ServiceType && existing.Number == sub.Number {
				return fmt.Errorf("create subscription: %w", repository.ErrDuplicateNumber)
			}
		}
	}
	code, err := l.mint(params.Codes)
	if err != nil {
		return err
	}
	if err := l.debit(params.Redemption); err != nil {
		return err
	}
	sub.ID = uuid.NewString()
	sub.Code = code
	sub.CreatedAt, sub.UpdatedAt = testToday, testToday
	stored := *sub
	l.subs[sub.ID] = &stored
	l.codes[code] = &models.AccessCode{Code: code, Kind: models.CodeKindSubscription, ServiceType: sub.ServiceType, SubscriptionID: sub.ID}
	l.record(sub, params.Payment)
	return nil
}

func (l *ledgerSubscriptions) Update(ctx context.Context, id string, patch models.SubscriptionPatch) (*models.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sub, ok := l.subs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if patch.ClientName != nil {
		sub.ClientName = *patch.ClientName
	}
	if patch.ProviderName != nil {
		sub.ProviderName = *patch.ProviderName
	}
	if patch.SessionsRemaining != nil {
		sub.SessionsRemaining = *patch.SessionsRemaining
	}
	if patch.RemainingAmount != nil {
		sub.RemainingAmount = *patch.RemainingAmount
	}
	if patch.ExpiryDate != nil {
		sub.ExpiryDate = patch.ExpiryDate
	}
	if patch.StartDate != nil {
		sub.StartDate = patch.StartDate
	}
	cp := *sub
	return &cp, nil
}

func (l *ledgerSubscriptions) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(l.subs, id)
	for key, row := range l.attendance {
		if row.SubscriptionID == id {
			delete(l.attendance, key)
		}
	}
	for key, ac := range l.codes {
		if ac.SubscriptionID == id {
			delete(l.codes, key)
		}
	}
	return nil
}

func (l *ledgerSubscriptions) Renew(ctx context.Context, id string, renewal models.SubscriptionRenewal, payment *models.Payment, redemption *models.PointsRedemption) (*models.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sub, ok := l.subs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if err := l.debit(redemption); err != nil {
		return nil, err
	}
	previous := sub.RemainingAmount
	sub.SessionsPurchased += renewal.AddSessions
	sub.SessionsRemaining += renewal.AddSessions
	sub.PricePerSession = renewal.PricePerSession
	sub.RemainingAmount = sub.RemainingAmount.Add(renewal.AddRemaining)
	if renewal.ProviderName != nil {
		sub.ProviderName = *renewal.ProviderName
	}
	if renewal.ExpiryDate != nil {
		sub.StartDate, sub.ExpiryDate = renewal.StartDate, renewal.ExpiryDate
	}
	payment.PreviousRemaining = previous
	payment.NewRemaining = sub.RemainingAmount
	l.record(sub, payment)
	cp := *sub
	return &cp, nil
}

func (l *ledgerSubscriptions) Summary(ctx context.Context, serviceType models.ServiceType, today, soonUntil time.Time) (*models.SubscriptionSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summaryCalls++
	summary := &models.SubscriptionSummary{ServiceType: serviceType, OutstandingBalance: decimal.Zero}
	for _, sub := range l.subs {
		if sub.ServiceType != serviceType {
			continue
		}
		summary.Total++
		summary.SessionsRemaining += sub.SessionsRemaining
		summary.OutstandingBalance = summary.OutstandingBalance.Add(sub.RemainingAmount)
	}
	return summary, nil
}

type ledgerPayments struct{ *fakeLedger }

func (l *ledgerPayments) ApplyBalancePayment(ctx context.Context, subscriptionID string, payment *models.Payment, redemption *models.PointsRedemption) (*models.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sub, ok := l.subs[subscriptionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if sub.RemainingAmount.LessThan(payment.Amount) {
		return nil, repository.ErrBalanceExceeded
	}
	if err := l.debit(redemption); err != nil {
		return nil, err
	}
	payment.Kind = models.PaymentBalance
	payment.PreviousRemaining = sub.RemainingAmount
	sub.RemainingAmount = sub.RemainingAmount.Sub(payment.Amount)
	payment.NewRemaining = sub.RemainingAmount
	l.record(sub, payment)
	cp := *sub
	return &cp, nil
}

func (l *ledgerPayments) List(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Payment
	for _, p := range l.payments {
		if p.ServiceType == filter.ServiceType && (filter.SubscriptionID == "" || p.SubscriptionID == filter.SubscriptionID) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (l *fakeLedger) FindMemberByNumber(number int) (*models.Member, error) {
	for _, m := range l.members {
		if m.MemberNumber == number {
			cp := *m
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type ledgerMembers struct{ *fakeLedger }

func (l *ledgerMembers) FindByNumber(ctx context.Context, number int) (*models.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.FindMemberByNumber(number)
}

func (l *ledgerMembers) FindByPhone(ctx context.Context, phone string) (*models.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		if m.Phone == phone {
			cp := *m
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type ledgerSessions struct{ *fakeLedger }

func (l *ledgerSessions) Consume(ctx context.Context, params repository.ConsumeParams) (*repository.ConsumeResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sub, ok := l.subs[params.SubscriptionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if sub.SessionsRemaining <= 0 {
		return nil, repository.ErrNoSessionsRemaining
	}

	entry := *params.Attendance
	entry.ID = uuid.NewString()
	entry.SubscriptionID = sub.ID
	entry.ServiceType = sub.ServiceType
	entry.SubscriptionNumber = sub.Number
	entry.ClientName = sub.ClientName
	if entry.ProviderName == "" {
		entry.ProviderName = sub.ProviderName
	}
	if entry.SessionDate.IsZero() {
		entry.SessionDate = testToday
	}

	result := &repository.ConsumeResult{}
	if params.Codes != nil {
		code, err := l.mint(params.Codes)
		if err != nil {
			return nil, err
		}
		attendanceID := entry.ID
		l.codes[code] = &models.AccessCode{Code: code, Kind: models.CodeKindSession, ServiceType: sub.ServiceType, SubscriptionID: sub.ID, AttendanceID: &attendanceID, Used: true}
		result.Code = code
	}
	sub.SessionsRemaining--
	l.attendance[entry.ID] = &entry
	result.Subscription = *sub
	result.Attendance = entry
	return result, nil
}

func (l *ledgerSessions) List(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.SessionAttendance
	for _, row := range l.attendance {
		if row.ServiceType == filter.ServiceType && (filter.SubscriptionID == "" || row.SubscriptionID == filter.SubscriptionID) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionDate.After(out[j].SessionDate) })
	return out, len(out), nil
}

func (l *ledgerSessions) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.attendance[id]; !ok {
		return sql.ErrNoRows
	}
	delete(l.attendance, id)
	return nil
}

// fakeRoster keeps staff and shifts and applies the toggle rules under one lock.
type fakeRoster struct {
	mu     sync.Mutex
	staff  map[string]*models.Staff
	shifts []models.StaffAttendance
}

func newFakeRoster(staff ...models.Staff) *fakeRoster {
	r := &fakeRoster{staff: make(map[string]*models.Staff)}
	for i := range staff {
		s := staff[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		r.staff[s.ID] = &s
	}
	return r
}

func (r *fakeRoster) add(s models.Staff) *models.Staff {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.staff[s.ID] = &s
	cp := s
	return &cp
}

func (r *fakeRoster) FindByNumber(ctx context.Context, number int) (*models.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.staff {
		if s.StaffNumber == number {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeRoster) Toggle(ctx context.Context, staffID string, now time.Time, rules repository.ShiftRules) (*repository.ToggleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.staff[staffID]
	if !ok || !staff.IsActive {
		return nil, sql.ErrNoRows
	}
	result := &repository.ToggleResult{}
	for i := range r.shifts {
		shift := &r.shifts[i]
		if shift.StaffID != staffID || !shift.Open() {
			continue
		}
		stale := rules.MaxShift > 0 && now.Sub(shift.CheckIn) > rules.MaxShift
		out := now
		if stale {
			out = shift.CheckIn.Add(rules.MaxShift)
		}
		minutes := int(out.Sub(shift.CheckIn).Minutes())
		shift.CheckOut, shift.DurationMinutes, shift.AutoClosed = &out, &minutes, stale
		if !stale {
			result.Action, result.Shift = repository.ToggleCheckOut, *shift
			return result, nil
		}
		closed := *shift
		result.AutoClosed = &closed
	}
	if rules.Cooldown > 0 {
		for _, shift := range r.shifts {
			if shift.StaffID == staffID && shift.CheckOut != nil && !shift.AutoClosed {
				if elapsed := now.Sub(*shift.CheckOut); elapsed < rules.Cooldown {
					return nil, &repository.CooldownError{Remaining: rules.Cooldown - elapsed}
				}
			}
		}
	}
	shift := models.StaffAttendance{ID: uuid.NewString(), StaffID: staffID, StaffName: staff.Name, StaffNumber: staff.StaffNumber, CheckIn: now, CreatedAt: now}
	r.shifts = append(r.shifts, shift)
	result.Action, result.Shift = repository.ToggleCheckIn, shift
	return result, nil
}

func (r *fakeRoster) openShifts(staffID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, shift := range r.shifts {
		if shift.StaffID == staffID && shift.Open() {
			count++
		}
	}
	return count
}

// memoryCache is a map backed summaryStore.
type memoryCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMemoryCache() *memoryCache { return &memoryCache{items: make(map[string]interface{})} }

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	summary, ok := value.(*models.SubscriptionSummary)
	if !ok {
		return fmt.Errorf("unexpected cached type %T", value)
	}
	*(dest.(*models.SubscriptionSummary)) = *summary
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

type testWorld struct {
	ledger   *fakeLedger
	roster   *fakeRoster
	cache    *memoryCache
	registry *CodeRegistry
	gate     *ServiceGate
	metrics  *MetricsService
	subs     *SubscriptionService
	payments *PaymentService
	checkIn  *CheckInService
	guard    *MemoryScanGuard
}

type worldOption func(*worldConfig)

type worldConfig struct {
	services config.ServicesConfig
	points   config.PointsConfig
	checkIn  CheckInConfig
}

func withServices(services config.ServicesConfig) worldOption {
	return func(c *worldConfig) { c.services = services }
}

func withPoints(enabled bool, value string) worldOption {
	return func(c *worldConfig) { c.points = config.PointsConfig{Enabled: enabled, ValueInEGP: money(value)} }
}

func withDedupe(window time.Duration) worldOption {
	return func(c *worldConfig) { c.checkIn.DedupeWindow = window }
}

func withShiftRules(rules repository.ShiftRules) worldOption {
	return func(c *worldConfig) { c.checkIn.Shift = rules }
}

func newTestWorld(opts ...worldOption) *testWorld {
	cfg := worldConfig{
		services: config.ServicesConfig{NutritionEnabled: true, PhysiotherapyEnabled: true, GroupClassEnabled: true},
		points:   config.PointsConfig{Enabled: true, ValueInEGP: money("0.1")},
		checkIn:  CheckInConfig{ScanTimeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.checkIn.Rules = testRules()

	w := &testWorld{ledger: newFakeLedger(), roster: newFakeRoster(), cache: newMemoryCache(), metrics: NewMetricsService()}
	logger := zap.NewNop()
	w.registry = NewCodeRegistry(nil, w.ledger, logger)
	w.gate = NewServiceGate(cfg.services)
	cache := NewSummaryCache(w.cache, w.metrics, time.Minute, logger, true)
	w.payments = NewPaymentService(w.ledger.paymentStore(), w.ledger, &ledgerMembers{w.ledger}, w.gate, cache, w.metrics,
		PaymentServiceConfig{Points: cfg.points, Rules: testRules()}, validator.New(), logger)
	w.subs = NewSubscriptionService(w.ledger.subscriptions(), w.payments, w.registry, w.gate, cache, w.metrics,
		SubscriptionServiceConfig{Rules: testRules()}, validator.New(), logger)
	w.guard = NewMemoryScanGuard()
	w.guard.now = func() time.Time { return testToday }
	w.checkIn = NewCheckInService(w.ledger.sessionStore(), w.ledger, w.roster, w.roster, w.registry, w.gate, w.guard, cache, w.metrics,
		cfg.checkIn, validator.New(), logger)
	return w
}

func assertErrorCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want.Code, appErrors.FromError(err).Code, err.Error())
}
