package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"minecraft-store/internal/client"
	"minecraft-store/internal/model"
	"minecraft-store/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	keyBasketIdent = "tebex_basket_ident"
	keyCheckoutURL = "tebex_checkout_url"
)

type StateName string

const (
	StateNoBasket       StateName = "NO_BASKET"
	StateBasketCreated  StateName = "BASKET_CREATED"
	StatePackagesSynced StateName = "PACKAGES_SYNCED"
	StateAuthenticating StateName = "AUTHENTICATING"
	StateAuthenticated  StateName = "AUTHENTICATED"
	StateCheckoutReady  StateName = "CHECKOUT_READY"
	StateError          StateName = "ERROR"
)

// AuthError carries the gateway's rejection text unchanged. It matches ErrAuthFailed.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthFailed
}

type CheckoutState struct {
	State        StateName     `json:"state"`
	Error        string        `json:"error,omitempty"`
	CheckoutURL  string        `json:"checkout_url,omitempty"`
	Basket       *model.Basket `json:"basket,omitempty"`
	BasketSource string        `json:"basket_source,omitempty"`
}

type CheckoutResult struct {
	CheckoutURL string   `json:"checkout_url"`
	BasketIdent string   `json:"basket_ident"`
	FailedItems []string `json:"failed_items"`
}

type BasketOptions struct {
	BaseURL string
	PayHost string
}

type BasketService interface {
	GetOrCreateBasket(ctx context.Context, sessionID string) (client.Result[*model.Basket], error)
	CheckoutCart(ctx context.Context, sessionID, username string, edition model.Edition, returnURL string) (*CheckoutResult, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (client.Result[*model.Basket], error)
	ResetBasket(ctx context.Context, sessionID string) (client.Result[*model.Basket], error)
	RemovePackage(ctx context.Context, sessionID, packageID string) error
	State(ctx context.Context, sessionID string) CheckoutState
	History(ctx context.Context, sessionID string) ([]*model.CheckoutRecord, error)
}

type sessionState struct {
	state  StateName
	err    string
	basket *model.Basket
	source client.Source
}

type basketServiceImpl struct {
	basketClient client.BasketClient
	cart         CartService
	storage      repository.StorageRepository
	checkoutRepo repository.CheckoutRepository
	opts         BasketOptions
	log          logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewBasketService(
	basketClient client.BasketClient,
	cart CartService,
	storage repository.StorageRepository,
	checkoutRepo repository.CheckoutRepository,
	opts BasketOptions,
	log logrus.FieldLogger,
) BasketService {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	if opts.PayHost == "" {
		opts.PayHost = "pay.tebex.io"
	}
	return &basketServiceImpl{
		basketClient: basketClient,
		cart:         cart,
		storage:      storage,
		checkoutRepo: checkoutRepo,
		opts:         opts,
		log:          log,
		sessions:     make(map[string]*sessionState),
	}
}

// GetOrCreateBasket re-validates the cached ident against the gateway and replaces it when the
// basket can't be confirmed.
func (s *basketServiceImpl) GetOrCreateBasket(ctx context.Context, sessionID string) (client.Result[*model.Basket], error) {
	ident := s.cachedIdent(ctx, sessionID)
	if ident != "" {
		res, err := s.basketClient.GetBasket(ctx, ident)
		if err != nil {
			return res, err
		}
		if !res.IsFallback() && !res.Data.Complete {
			s.update(sessionID, func(st *sessionState) {
				if st.state == StateNoBasket {
					st.state = StateBasketCreated
				}
				st.basket = res.Data
				st.source = res.Source
			})
			return res, nil
		}

		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"ident":      ident,
			"complete":   res.Data.Complete,
		}).Info("cached basket is no longer usable, creating a new one")
		if err := s.storage.Remove(ctx, sessionID, keyBasketIdent); err != nil {
			return client.Result[*model.Basket]{}, fmt.Errorf("discard basket ident: %w", err)
		}
	}

	return s.createBasket(ctx, sessionID)
}

func (s *basketServiceImpl) createBasket(ctx context.Context, sessionID string) (client.Result[*model.Basket], error) {
	res := s.basketClient.CreateBasket(ctx, &client.CreateBasketRequest{
		CompleteURL:          s.opts.BaseURL + "/checkout/complete",
		CancelURL:            s.opts.BaseURL + "/store",
		CompleteAutoRedirect: true,
		Custom:               map[string]string{"session_id": sessionID},
	})

	if err := s.storage.Set(ctx, sessionID, keyBasketIdent, res.Data.Ident); err != nil {
		return client.Result[*model.Basket]{}, fmt.Errorf("store basket ident: %w", err)
	}

	s.update(sessionID, func(st *sessionState) {
		st.state = StateBasketCreated
		st.err = ""
		st.basket = res.Data
		st.source = res.Source
	})

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"ident":      res.Data.Ident,
		"source":     res.Source.String(),
	}).Info("basket created")

	return res, nil
}

func (s *basketServiceImpl) CheckoutCart(ctx context.Context, sessionID, username string, edition model.Edition, returnURL string) (*CheckoutResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	items := s.cart.Items(ctx, sessionID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	basketRes, err := s.GetOrCreateBasket(ctx, sessionID)
	if err != nil {
		s.fail(sessionID, err.Error())
		return nil, err
	}
	ident := basketRes.Data.Ident
	log := s.log.WithFields(logrus.Fields{"session_id": sessionID, "ident": ident})

	// one at a time, in cart order, so a failure is attributable to its item
	latest := basketRes
	var failed []string
	for _, item := range items {
		res, err := s.basketClient.AddPackage(ctx, ident, model.PackageID(item.ID), 1)
		if err != nil || res.IsFallback() {
			log.WithError(err).WithField("package_id", item.ID).Warn("package did not attach to basket")
			failed = append(failed, item.ID)
			continue
		}
		latest = res
	}
	if len(failed) > 0 {
		log.WithField("failed_items", len(failed)).Warn("continuing checkout with a partially synced basket")
	}

	s.update(sessionID, func(st *sessionState) {
		st.state = StatePackagesSynced
		st.basket = latest.Data
		st.source = latest.Source
	})

	s.setState(sessionID, StateAuthenticating)
	authRes, err := s.basketClient.GetAuthLinks(ctx, ident, s.returnURL(returnURL))
	if err != nil {
		s.fail(sessionID, err.Error())
		return nil, err
	}
	if !authRes.Data.Success {
		msg := authRes.Data.Error
		s.fail(sessionID, msg)
		s.record(ctx, &model.CheckoutRecord{
			SessionID:   sessionID,
			BasketIdent: ident,
			Username:    username,
			Edition:     string(edition),
			Status:      model.CheckoutStatusFailed,
			FailedItems: len(failed),
			Error:       msg,
		})
		return nil, &AuthError{Message: msg}
	}
	s.setState(sessionID, StateAuthenticated)

	checkoutURL, err := buildCheckoutURL(authRes.Data.PrimaryAuthLink, s.opts.PayHost, ident, model.FormatUsername(username, edition))
	if err != nil {
		s.fail(sessionID, err.Error())
		return nil, err
	}

	// the remote basket is the source of truth from here on, unless nothing made it there
	if len(failed) == len(items) {
		log.Warn("no package attached to basket, keeping cart")
	} else if err := s.cart.RemoveItems(ctx, sessionID, itemIDs(items)); err != nil {
		log.WithError(err).Warn("clear cart after checkout failed")
	}
	if err := s.storage.Set(ctx, sessionID, keyCheckoutURL, checkoutURL); err != nil {
		log.WithError(err).Warn("store checkout url failed")
	}
	s.setState(sessionID, StateCheckoutReady)

	s.record(ctx, &model.CheckoutRecord{
		SessionID:   sessionID,
		BasketIdent: ident,
		Username:    username,
		Edition:     string(edition),
		CheckoutURL: checkoutURL,
		Status:      model.CheckoutStatusReady,
		FailedItems: len(failed),
	})

	if failed == nil {
		failed = []string{}
	}
	return &CheckoutResult{
		CheckoutURL: checkoutURL,
		BasketIdent: ident,
		FailedItems: failed,
	}, nil
}

// ApplyCoupon does not roll back anything already in the basket when the coupon fails.
func (s *basketServiceImpl) ApplyCoupon(ctx context.Context, sessionID, code string) (client.Result[*model.Basket], error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return client.Result[*model.Basket]{}, fmt.Errorf("%w: coupon code is required", ErrInvalidInput)
	}

	basketRes, err := s.GetOrCreateBasket(ctx, sessionID)
	if err != nil {
		return client.Result[*model.Basket]{}, err
	}

	res, err := s.basketClient.ApplyCoupon(ctx, basketRes.Data.Ident, code)
	if err != nil {
		return res, err
	}

	s.update(sessionID, func(st *sessionState) {
		st.basket = res.Data
		st.source = res.Source
	})
	return res, nil
}

func (s *basketServiceImpl) ResetBasket(ctx context.Context, sessionID string) (client.Result[*model.Basket], error) {
	if err := s.storage.Remove(ctx, sessionID, keyBasketIdent); err != nil {
		return client.Result[*model.Basket]{}, fmt.Errorf("discard basket ident: %w", err)
	}
	if err := s.storage.Remove(ctx, sessionID, keyCheckoutURL); err != nil {
		return client.Result[*model.Basket]{}, fmt.Errorf("discard checkout url: %w", err)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return s.createBasket(ctx, sessionID)
}

// RemovePackage drops the item from the cart and, when a basket is already open, from the basket too.
func (s *basketServiceImpl) RemovePackage(ctx context.Context, sessionID, packageID string) error {
	if packageID == "" {
		return fmt.Errorf("%w: package id is required", ErrInvalidInput)
	}
	if err := s.cart.RemoveItem(ctx, sessionID, packageID); err != nil {
		return err
	}

	ident := s.cachedIdent(ctx, sessionID)
	if ident == "" {
		return nil
	}

	res, err := s.basketClient.RemovePackage(ctx, ident, model.PackageID(packageID))
	if err != nil {
		return err
	}
	if res.IsFallback() {
		return nil
	}
	s.update(sessionID, func(st *sessionState) {
		st.basket = res.Data
		st.source = res.Source
	})
	return nil
}

func (s *basketServiceImpl) State(ctx context.Context, sessionID string) CheckoutState {
	st := s.snapshot(sessionID)
	out := CheckoutState{
		State:  st.state,
		Error:  st.err,
		Basket: st.basket,
	}
	if st.basket != nil {
		out.BasketSource = st.source.String()
	}

	if v, err := s.storage.Get(ctx, sessionID, keyCheckoutURL); err == nil {
		out.CheckoutURL = v
	}
	if out.State == StateNoBasket && s.cachedIdent(ctx, sessionID) != "" {
		out.State = StateBasketCreated
	}
	return out
}

func (s *basketServiceImpl) History(ctx context.Context, sessionID string) ([]*model.CheckoutRecord, error) {
	records, err := s.checkoutRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list checkout records: %w", err)
	}
	return records, nil
}

// returnURL only lets the gateway redirect back to this store; anything else gets the store page.
func (s *basketServiceImpl) returnURL(requested string) string {
	fallback := s.opts.BaseURL + "/store"
	if requested == "" {
		return fallback
	}

	base, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return fallback
	}
	u, err := url.Parse(requested)
	if err != nil || u.Host != base.Host || (u.Scheme != "http" && u.Scheme != "https") {
		s.log.WithField("return_url", requested).Warn("ignoring foreign return url")
		return fallback
	}
	return u.String()
}

func itemIDs(items []model.CartItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func (s *basketServiceImpl) cachedIdent(ctx context.Context, sessionID string) string {
	ident, err := s.storage.Get(ctx, sessionID, keyBasketIdent)
	if err != nil {
		if !errors.Is(err, repository.ErrEntryNotFound) {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("read basket ident failed")
		}
		return ""
	}
	return strings.TrimSpace(ident)
}

func (s *basketServiceImpl) record(ctx context.Context, rec *model.CheckoutRecord) {
	if err := s.checkoutRepo.Create(ctx, rec); err != nil {
		s.log.WithError(err).WithField("ident", rec.BasketIdent).Warn("store checkout record failed")
	}
}

func (s *basketServiceImpl) update(sessionID string, fn func(st *sessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		st = &sessionState{state: StateNoBasket}
		s.sessions[sessionID] = st
	}
	fn(st)
}

func (s *basketServiceImpl) setState(sessionID string, state StateName) {
	s.update(sessionID, func(st *sessionState) {
		st.state = state
		st.err = ""
	})
}

func (s *basketServiceImpl) fail(sessionID, msg string) {
	s.update(sessionID, func(st *sessionState) {
		st.state = StateError
		st.err = msg
	})
}

func (s *basketServiceImpl) snapshot(sessionID string) sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.sessions[sessionID]; ok {
		return *st
	}
	return sessionState{state: StateNoBasket}
}

// buildCheckoutURL prefers the gateway's auth link when it is an absolute https URL and falls back
// to the direct pay page for the basket. username is appended unless the link already carries one;
// the link's own query is left byte for byte as issued.
func buildCheckoutURL(authLink, payHost, ident, username string) (string, error) {
	target := "https://" + payHost + "/" + url.PathEscape(ident)
	if u, err := url.Parse(authLink); err == nil && u.Scheme == "https" && u.Host != "" {
		target = authLink
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse checkout url: %w", err)
	}
	if u.Query().Has("username") {
		return target, nil
	}

	param := url.Values{"username": {username}}.Encode()
	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String(), nil
}
