package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"minecraft-store/internal/model"
	"minecraft-store/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	keyShoppingCart = "shopping_cart"
	keyCartOpen     = "cart_open"
)

// CartService is the shopper's working selection, kept in session local storage.
// Reads never fail: a missing or corrupt cart is an empty cart.
type CartService interface {
	AddItem(ctx context.Context, sessionID string, item model.CartItem) error
	RemoveItem(ctx context.Context, sessionID string, id string) error
	RemoveItems(ctx context.Context, sessionID string, ids []string) error
	Clear(ctx context.Context, sessionID string) error
	Items(ctx context.Context, sessionID string) []model.CartItem
	Total(ctx context.Context, sessionID string) string
	Contains(ctx context.Context, sessionID string, id string) bool
	Count(ctx context.Context, sessionID string) int
	IsOpen(ctx context.Context, sessionID string) bool
	SetOpen(ctx context.Context, sessionID string, open bool) error
}

// Mutations are read-modify-write on one storage entry, so they are serialized per session.
type cartServiceImpl struct {
	storage repository.StorageRepository
	log     logrus.FieldLogger
	locks   sessionLocks
}

func NewCartService(storage repository.StorageRepository, log logrus.FieldLogger) CartService {
	return &cartServiceImpl{
		storage: storage,
		log:     log,
		locks:   sessionLocks{held: make(map[string]*sessionLock)},
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, sessionID string, item model.CartItem) error {
	if item.ID == "" {
		return fmt.Errorf("%w: cart item id is required", ErrInvalidInput)
	}

	unlock := s.locks.lock(sessionID)
	items := s.load(ctx, sessionID)
	if !containsItem(items, item.ID) {
		items = append(items, item)
		if err := s.save(ctx, sessionID, items); err != nil {
			unlock()
			return err
		}
	}
	unlock()

	return s.SetOpen(ctx, sessionID, true)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, sessionID string, id string) error {
	return s.RemoveItems(ctx, sessionID, []string{id})
}

// RemoveItems drops exactly the given ids and keeps anything else, including items added
// after the caller last read the cart.
func (s *cartServiceImpl) RemoveItems(ctx context.Context, sessionID string, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	items := s.load(ctx, sessionID)
	kept := make([]model.CartItem, 0, len(items))
	for _, item := range items {
		if _, ok := drop[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	return s.save(ctx, sessionID, kept)
}

func (s *cartServiceImpl) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	return s.save(ctx, sessionID, []model.CartItem{})
}

func (s *cartServiceImpl) Items(ctx context.Context, sessionID string) []model.CartItem {
	return s.load(ctx, sessionID)
}

func (s *cartServiceImpl) Total(ctx context.Context, sessionID string) string {
	return TotalOf(s.load(ctx, sessionID))
}

func (s *cartServiceImpl) Contains(ctx context.Context, sessionID string, id string) bool {
	return containsItem(s.load(ctx, sessionID), id)
}

func (s *cartServiceImpl) Count(ctx context.Context, sessionID string) int {
	return len(s.load(ctx, sessionID))
}

func (s *cartServiceImpl) IsOpen(ctx context.Context, sessionID string) bool {
	v, err := s.storage.Get(ctx, sessionID, keyCartOpen)
	return err == nil && v == "true"
}

func (s *cartServiceImpl) SetOpen(ctx context.Context, sessionID string, open bool) error {
	value := "false"
	if open {
		value = "true"
	}
	if err := s.storage.Set(ctx, sessionID, keyCartOpen, value); err != nil {
		return fmt.Errorf("store cart open flag: %w", err)
	}
	return nil
}

func (s *cartServiceImpl) load(ctx context.Context, sessionID string) []model.CartItem {
	raw, err := s.storage.Get(ctx, sessionID, keyShoppingCart)
	if err != nil {
		if !errors.Is(err, repository.ErrEntryNotFound) {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("load cart failed, using empty cart")
		}
		return []model.CartItem{}
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("corrupt cart in storage, using empty cart")
		return []model.CartItem{}
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items
}

func (s *cartServiceImpl) save(ctx context.Context, sessionID string, items []model.CartItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.storage.Set(ctx, sessionID, keyShoppingCart, string(b)); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}

func containsItem(items []model.CartItem, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session and forgets it once nobody holds or waits on it.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	sl, ok := l.held[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.held[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.held, sessionID)
		}
		l.mu.Unlock()
	}
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// TotalOf sums display prices ("$9.99", "£4.99", "1,299.00 SEK") and returns a two-decimal string.
// Prices that still don't parse after stripping count as zero.
func TotalOf(items []model.CartItem) string {
	total := decimal.Zero
	for _, item := range items {
		amount, err := decimal.NewFromString(nonNumeric.ReplaceAllString(item.Price, ""))
		if err != nil {
			continue
		}
		total = total.Add(amount)
	}
	return total.StringFixed(2)
}
