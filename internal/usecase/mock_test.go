//go:build !integration

// File: internal/usecase/mock_test.go
package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/adapter"
	"training-enrollment-platform/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- In-memory PaymentRepository ----

type MockPaymentRepo struct {
	mu       sync.Mutex
	store    map[string]*model.Payment
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.Reference == reference || p.ProviderReference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) FindLatestByApplication(ctx context.Context, tx repository.Tx, applicationID string, typ model.PaymentType) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Payment
	for _, p := range m.store {
		if p.ApplicationID != applicationID || p.Type != typ {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// MarkCompleted mirrors the conditional UPDATE of the real repository: the
// status check and the write happen under one lock, so exactly one of any
// number of concurrent callers wins.
func (m *MockPaymentRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id string, providerRef string, raw map[string]interface{}, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, nil
	}
	if p.Status == model.PaymentStatusCompleted {
		return false, nil
	}
	p.Status = model.PaymentStatusCompleted
	if providerRef != "" {
		p.ProviderReference = providerRef
	}
	p.Raw = raw
	p.PaidAt = &paidAt
	p.UpdatedAt = paidAt
	return true, nil
}

func (m *MockPaymentRepo) SetProviderReference(ctx context.Context, tx repository.Tx, id, providerRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ProviderReference = providerRef
	return nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---- In-memory ApplicationRepository ----

type MockApplicationRepo struct {
	mu    sync.Mutex
	store map[string]*model.Application
	// regNumbers mirrors the partial unique index on registration_number.
	regNumbers map[string]bool

	SetRegistrationCompleteErr error
}

func NewMockApplicationRepo() *MockApplicationRepo {
	return &MockApplicationRepo{
		store:      make(map[string]*model.Application),
		regNumbers: make(map[string]bool),
	}
}

var _ repository.ApplicationRepository = (*MockApplicationRepo)(nil)

func (m *MockApplicationRepo) Save(ctx context.Context, tx repository.Tx, a *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *MockApplicationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockApplicationRepo) SetApplicationFeePaid(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ApplicationFeePaid = true
	return nil
}

func (m *MockApplicationRepo) SetRegistrationComplete(ctx context.Context, tx repository.Tx, id, registrationNumber string) error {
	if m.SetRegistrationCompleteErr != nil {
		return m.SetRegistrationCompleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if m.regNumbers[registrationNumber] {
		return domain.ErrUniqueViolation
	}
	m.regNumbers[registrationNumber] = true
	a.RegistrationFeePaid = true
	a.RegistrationNumber = &registrationNumber
	return nil
}

// ---- In-memory ProgramRepository ----

type MockProgramRepo struct {
	mu    sync.Mutex
	store map[string]*model.Program
}

func NewMockProgramRepo() *MockProgramRepo {
	return &MockProgramRepo{store: make(map[string]*model.Program)}
}

var _ repository.ProgramRepository = (*MockProgramRepo)(nil)

func (m *MockProgramRepo) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockProgramRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProgramRepo) IncrementEnrolled(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.EnrolledCount++
	return nil
}

func (m *MockProgramRepo) EnrolledCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.store[id]; ok {
		return p.EnrolledCount
	}
	return 0
}

// ---- In-memory ReceiptRepository ----

type MockReceiptRepo struct {
	mu        sync.Mutex
	byPayment map[string]*model.Receipt
	numbers   map[string]bool
}

func NewMockReceiptRepo() *MockReceiptRepo {
	return &MockReceiptRepo{
		byPayment: make(map[string]*model.Receipt),
		numbers:   make(map[string]bool),
	}
}

var _ repository.ReceiptRepository = (*MockReceiptRepo)(nil)

func (m *MockReceiptRepo) Save(ctx context.Context, tx repository.Tx, r *model.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byPayment[r.PaymentID]; dup {
		return domain.ErrUniqueViolation
	}
	if m.numbers[r.ReceiptNumber] {
		return domain.ErrUniqueViolation
	}
	cp := *r
	m.byPayment[r.PaymentID] = &cp
	m.numbers[r.ReceiptNumber] = true
	return nil
}

func (m *MockReceiptRepo) FindByPayment(ctx context.Context, tx repository.Tx, paymentID string) (*model.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byPayment[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockReceiptRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPayment)
}

// ---- In-memory NotificationRepository ----

type MockNotificationRepo struct {
	mu    sync.Mutex
	store []*model.Notification
}

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{}
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func (m *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.store = append(m.store, &cp)
	return nil
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for i := len(m.store) - 1; i >= 0; i-- {
		if m.store[i].UserID != userID {
			continue
		}
		cp := *m.store[i]
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, tx repository.Tx, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.store {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cnt := 0
	for _, n := range m.store {
		if n.UserID == userID && !n.Read {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockNotificationRepo) ByUser(userID string) []*model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.store {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

// ---- In-memory TraineeRepository ----

type MockTraineeRepo struct {
	mu    sync.Mutex
	store map[string]*model.Trainee
}

func NewMockTraineeRepo() *MockTraineeRepo {
	return &MockTraineeRepo{store: make(map[string]*model.Trainee)}
}

var _ repository.TraineeRepository = (*MockTraineeRepo)(nil)

func (m *MockTraineeRepo) Add(t *model.Trainee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
}

func (m *MockTraineeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Trainee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTraineeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Trainee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Trainee, 0, len(m.store))
	for _, t := range m.store {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	NameVal        string
	InitializeFunc func(ctx context.Context, req adapter.InitRequest) (adapter.InitResult, error)
	VerifyFunc     func(ctx context.Context, reference string) (adapter.VerifyResult, error)

	mu          sync.Mutex
	verifyCalls int
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (g *MockPaymentGateway) Name() string {
	if g.NameVal != "" {
		return g.NameVal
	}
	return "mock"
}

func (g *MockPaymentGateway) Initialize(ctx context.Context, req adapter.InitRequest) (adapter.InitResult, error) {
	if g.InitializeFunc != nil {
		return g.InitializeFunc(ctx, req)
	}
	return adapter.InitResult{AuthorizationURL: "https://checkout.example/" + req.Reference}, nil
}

func (g *MockPaymentGateway) Verify(ctx context.Context, reference string) (adapter.VerifyResult, error) {
	g.mu.Lock()
	g.verifyCalls++
	g.mu.Unlock()
	if g.VerifyFunc != nil {
		return g.VerifyFunc(ctx, reference)
	}
	return adapter.VerifyResult{Success: true}, nil
}

func (g *MockPaymentGateway) VerifyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyCalls
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc          func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	WithinSavepointFunc func(ctx context.Context, tx repository.Tx, fn func(tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction; assign
// WithTxFunc to exercise rollback paths.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// WithinSavepoint runs fn directly; assign WithinSavepointFunc to observe
// savepoint rollbacks.
func (m *MockTxManager) WithinSavepoint(ctx context.Context, tx repository.Tx, fn func(tx repository.Tx) error) error {
	if m.WithinSavepointFunc != nil {
		return m.WithinSavepointFunc(ctx, tx, fn)
	}
	return fn(tx)
}

// ---- Mock Pusher and Mailer ----

type MockPusher struct {
	mu     sync.Mutex
	pushes []pushRecord
}

type pushRecord struct {
	UserID  string
	Event   string
	Payload interface{}
}

var _ adapter.Pusher = (*MockPusher)(nil)

func (p *MockPusher) Push(userID, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushRecord{UserID: userID, Event: event, Payload: payload})
}

func (p *MockPusher) Pushes() []pushRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pushRecord, len(p.pushes))
	copy(out, p.pushes)
	return out
}

type MockMailer struct {
	mu      sync.Mutex
	SendErr error
	sent    []string // recipient addresses
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(to, subject, body string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func (m *MockMailer) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}
