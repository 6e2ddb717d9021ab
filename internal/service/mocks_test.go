package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"minecraft-store/internal/client"
	"minecraft-store/internal/model"
	"minecraft-store/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

type mockStorage struct {
	m      sync.RWMutex
	values map[string]string
	err    error
}

func newMockStorage() *mockStorage {
	return &mockStorage{values: make(map[string]string)}
}

func (m *mockStorage) Get(_ context.Context, sessionID, key string) (string, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[sessionID+"/"+key]
	if !ok {
		return "", repository.ErrEntryNotFound
	}
	return v, nil
}

func (m *mockStorage) Set(_ context.Context, sessionID, key, value string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[sessionID+"/"+key] = value
	return nil
}

func (m *mockStorage) Remove(_ context.Context, sessionID, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.values, sessionID+"/"+key)
	return nil
}

func (m *mockStorage) raw(sessionID, key string) (string, bool) {
	m.m.RLock()
	defer m.m.RUnlock()
	v, ok := m.values[sessionID+"/"+key]
	return v, ok
}

// slowStorage widens the gap between a read and the following write.
type slowStorage struct {
	*mockStorage
	delay time.Duration
}

func (s *slowStorage) Get(ctx context.Context, sessionID, key string) (string, error) {
	v, err := s.mockStorage.Get(ctx, sessionID, key)
	time.Sleep(s.delay)
	return v, err
}

type mockCheckoutRepo struct {
	m       sync.Mutex
	records []*model.CheckoutRecord
}

func (m *mockCheckoutRepo) Create(_ context.Context, record *model.CheckoutRecord) error {
	m.m.Lock()
	defer m.m.Unlock()
	record.ID = uint(len(m.records) + 1)
	m.records = append(m.records, record)
	return nil
}

func (m *mockCheckoutRepo) ListBySession(_ context.Context, sessionID string) ([]*model.CheckoutRecord, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*model.CheckoutRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].SessionID == sessionID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *mockCheckoutRepo) MarkPaid(context.Context, *gorm.DB, string, string) (int64, error) {
	return 0, nil
}

// mockBasketClient keeps baskets in memory and lets tests fail individual operations.
type mockBasketClient struct {
	m       sync.Mutex
	baskets map[string]*model.Basket
	calls   map[string]int
	seq     int

	createFallback bool
	getFallback    bool
	failAdd        map[model.PackageID]bool
	auth           *model.AuthResult
	authFallback   bool
	couponErr      bool
	packages       []model.Package
	packagesFail   bool
	lastCreate     *client.CreateBasketRequest
	lastReturnURL  string

	// onAdd runs before each AddPackage, outside the client lock
	onAdd func(packageID model.PackageID)
}

func newMockBasketClient() *mockBasketClient {
	return &mockBasketClient{
		baskets: make(map[string]*model.Basket),
		calls:   make(map[string]int),
		failAdd: make(map[model.PackageID]bool),
		auth:    &model.AuthResult{Success: true},
	}
}

func (m *mockBasketClient) count(op string) int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls[op]
}

func (m *mockBasketClient) totalCalls() int {
	m.m.Lock()
	defer m.m.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func emptyBasket(ident string) *model.Basket {
	return &model.Basket{
		Ident:      ident,
		BasePrice:  decimal.Zero,
		SalesTax:   decimal.Zero,
		TotalPrice: decimal.Zero,
		Currency:   "USD",
		Packages:   []model.BasketPackage{},
		Coupons:    []model.Coupon{},
	}
}

func (m *mockBasketClient) CreateBasket(_ context.Context, req *client.CreateBasketRequest) client.Result[*model.Basket] {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["create"]++
	m.lastCreate = req
	m.seq++
	if m.createFallback {
		return client.Fallback(emptyBasket(fmt.Sprintf("%sbasket-%d", client.MockPrefix, m.seq)))
	}
	b := emptyBasket(fmt.Sprintf("basket-%d", m.seq))
	m.baskets[b.Ident] = b
	return client.Real(b)
}

func (m *mockBasketClient) GetBasket(_ context.Context, ident string) (client.Result[*model.Basket], error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["get"]++
	b, ok := m.baskets[ident]
	if !ok || m.getFallback {
		return client.Fallback(emptyBasket(ident)), nil
	}
	return client.Real(b), nil
}

func (m *mockBasketClient) AddPackage(_ context.Context, ident string, packageID model.PackageID, quantity int) (client.Result[*model.Basket], error) {
	if m.onAdd != nil {
		m.onAdd(packageID)
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["add"]++
	b, ok := m.baskets[ident]
	if !ok || m.failAdd[packageID] {
		return client.Fallback(emptyBasket(ident)), nil
	}
	b.Packages = append(b.Packages, model.BasketPackage{
		ID:       packageID,
		InBasket: model.InBasket{Quantity: quantity, Price: decimal.Zero},
	})
	return client.Real(b), nil
}

func (m *mockBasketClient) RemovePackage(_ context.Context, ident string, packageID model.PackageID) (client.Result[*model.Basket], error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["remove"]++
	b, ok := m.baskets[ident]
	if !ok {
		return client.Fallback(emptyBasket(ident)), nil
	}
	kept := b.Packages[:0]
	for _, p := range b.Packages {
		if p.ID != packageID {
			kept = append(kept, p)
		}
	}
	b.Packages = kept
	return client.Real(b), nil
}

func (m *mockBasketClient) ApplyCoupon(_ context.Context, ident string, code string) (client.Result[*model.Basket], error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["coupon"]++
	b, ok := m.baskets[ident]
	if !ok || m.couponErr {
		mock := emptyBasket(ident)
		mock.Coupons = []model.Coupon{{Code: code}}
		return client.Fallback(mock), nil
	}
	b.Coupons = append(b.Coupons, model.Coupon{Code: code})
	return client.Real(b), nil
}

func (m *mockBasketClient) GetAuthLinks(_ context.Context, _ string, returnURL string) (client.Result[*model.AuthResult], error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["auth"]++
	m.lastReturnURL = returnURL
	if m.authFallback {
		return client.Fallback(&model.AuthResult{Success: true}), nil
	}
	res := *m.auth
	return client.Real(&res), nil
}

func (m *mockBasketClient) ListPackages(context.Context) client.Result[[]model.Package] {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls["packages"]++
	if m.packagesFail {
		return client.Fallback([]model.Package{{ID: client.MockPrefix + "vip", Name: "VIP Rank"}})
	}
	return client.Real(m.packages)
}
