package client

import (
	"context"
	"errors"
	"fmt"

	"minecraft-store/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MockPrefix marks identifiers that were synthesized because the gateway was unreachable.
const MockPrefix = "mock-"

// ErrInvalidInput is returned before any network attempt when a required argument is missing.
var ErrInvalidInput = errors.New("invalid input")

type Source int

const (
	SourceReal Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceFallback {
		return "fallback"
	}
	return "real"
}

// Result carries either gateway data or the mock substituted for it.
type Result[T any] struct {
	Data   T
	Source Source
}

func Real[T any](data T) Result[T] {
	return Result[T]{Data: data, Source: SourceReal}
}

func Fallback[T any](data T) Result[T] {
	return Result[T]{Data: data, Source: SourceFallback}
}

func (r Result[T]) IsFallback() bool {
	return r.Source == SourceFallback
}

// BasketClient never surfaces gateway failures: it logs them and hands back mock data of the same
// shape. Only missing arguments produce an error.
type BasketClient interface {
	CreateBasket(ctx context.Context, req *CreateBasketRequest) Result[*model.Basket]
	GetBasket(ctx context.Context, ident string) (Result[*model.Basket], error)
	AddPackage(ctx context.Context, ident string, packageID model.PackageID, quantity int) (Result[*model.Basket], error)
	RemovePackage(ctx context.Context, ident string, packageID model.PackageID) (Result[*model.Basket], error)
	ApplyCoupon(ctx context.Context, ident string, code string) (Result[*model.Basket], error)
	GetAuthLinks(ctx context.Context, ident string, returnURL string) (Result[*model.AuthResult], error)
	ListPackages(ctx context.Context) Result[[]model.Package]
}

type basketClientImpl struct {
	tebex TebexClient
	log   logrus.FieldLogger
}

func NewBasketClient(tebex TebexClient, log logrus.FieldLogger) BasketClient {
	return &basketClientImpl{
		tebex: tebex,
		log:   log,
	}
}

func (c *basketClientImpl) CreateBasket(ctx context.Context, req *CreateBasketRequest) Result[*model.Basket] {
	if req == nil {
		req = &CreateBasketRequest{}
	}
	basket, err := c.tebex.CreateBasket(ctx, req)
	if err != nil {
		mock := mockBasket(MockPrefix + "basket-" + uuid.NewString())
		c.fallback("create_basket", mock.Ident, err)
		return Fallback(mock)
	}
	return Real(basket)
}

func (c *basketClientImpl) GetBasket(ctx context.Context, ident string) (Result[*model.Basket], error) {
	if ident == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: basket ident is required", ErrInvalidInput)
	}

	basket, err := c.tebex.GetBasket(ctx, ident)
	if err != nil {
		c.fallback("get_basket", ident, err)
		return Fallback(mockBasket(ident)), nil
	}
	return Real(basket), nil
}

func (c *basketClientImpl) AddPackage(ctx context.Context, ident string, packageID model.PackageID, quantity int) (Result[*model.Basket], error) {
	if ident == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: basket ident is required", ErrInvalidInput)
	}
	if packageID == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: package id is required", ErrInvalidInput)
	}
	if quantity <= 0 {
		quantity = 1
	}

	basket, err := c.tebex.AddPackage(ctx, ident, packageID, quantity)
	if err != nil {
		c.fallback("add_package", ident, err)
		mock := mockBasket(ident)
		mock.Packages = []model.BasketPackage{{
			ID:       packageID,
			InBasket: model.InBasket{Quantity: quantity, Price: decimal.Zero},
		}}
		return Fallback(mock), nil
	}
	return Real(basket), nil
}

func (c *basketClientImpl) RemovePackage(ctx context.Context, ident string, packageID model.PackageID) (Result[*model.Basket], error) {
	if ident == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: basket ident is required", ErrInvalidInput)
	}
	if packageID == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: package id is required", ErrInvalidInput)
	}

	basket, err := c.tebex.RemovePackage(ctx, ident, packageID)
	if err != nil {
		c.fallback("remove_package", ident, err)
		return Fallback(mockBasket(ident)), nil
	}
	return Real(basket), nil
}

func (c *basketClientImpl) ApplyCoupon(ctx context.Context, ident string, code string) (Result[*model.Basket], error) {
	if ident == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: basket ident is required", ErrInvalidInput)
	}
	if code == "" {
		return Result[*model.Basket]{}, fmt.Errorf("%w: coupon code is required", ErrInvalidInput)
	}

	basket, err := c.tebex.ApplyCoupon(ctx, ident, code)
	if err != nil {
		c.fallback("apply_coupon", ident, err)
		mock := mockBasket(ident)
		mock.Coupons = []model.Coupon{{Code: code}}
		return Fallback(mock), nil
	}
	return Real(basket), nil
}

// GetAuthLinks is the one call whose gateway rejection is reported instead of mocked: a non-2xx
// reply becomes an unsuccessful AuthResult with the gateway's message. Transport and decode
// failures still fall back, to a successful result with no link.
func (c *basketClientImpl) GetAuthLinks(ctx context.Context, ident string, returnURL string) (Result[*model.AuthResult], error) {
	if ident == "" {
		return Result[*model.AuthResult]{}, fmt.Errorf("%w: basket ident is required", ErrInvalidInput)
	}

	links, err := c.tebex.GetAuthLinks(ctx, ident, returnURL)
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			c.log.WithError(err).WithField("ident", ident).Warn("tebex rejected basket auth")
			return Real(&model.AuthResult{Success: false, Error: gwErr.Message}), nil
		}
		c.fallback("get_auth_links", ident, err)
		return Fallback(&model.AuthResult{Success: true}), nil
	}

	result := &model.AuthResult{Success: true}
	for _, link := range links {
		if link.URL != "" {
			result.PrimaryAuthLink = link.URL
			break
		}
	}
	return Real(result), nil
}

func (c *basketClientImpl) ListPackages(ctx context.Context) Result[[]model.Package] {
	packages, err := c.tebex.ListPackages(ctx)
	if err != nil {
		c.fallback("list_packages", "", err)
		return Fallback(mockPackages())
	}
	return Real(packages)
}

func (c *basketClientImpl) fallback(op, ident string, err error) {
	c.log.WithError(err).WithFields(logrus.Fields{
		"op":    op,
		"ident": ident,
	}).Warn("tebex call failed, using mock data")
}

func mockBasket(ident string) *model.Basket {
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

func mockPackages() []model.Package {
	return []model.Package{
		{
			ID:          MockPrefix + "vip",
			Name:        "VIP Rank",
			Description: "Colored name, /kit vip and two extra homes.",
			Type:        "single",
			Category:    model.Category{ID: 1, Name: "Ranks"},
			TotalPrice:  decimal.RequireFromString("9.99"),
			Currency:    "USD",
		},
		{
			ID:          MockPrefix + "mvp",
			Name:        "MVP Rank",
			Description: "Everything in VIP plus /fly in the lobby.",
			Type:        "single",
			Category:    model.Category{ID: 1, Name: "Ranks"},
			TotalPrice:  decimal.RequireFromString("19.99"),
			Currency:    "USD",
		},
		{
			ID:          MockPrefix + "crate-keys",
			Name:        "5 Crate Keys",
			Description: "Five keys for the vote crate.",
			Type:        "single",
			Category:    model.Category{ID: 2, Name: "Crates"},
			TotalPrice:  decimal.RequireFromString("4.99"),
			Currency:    "USD",
		},
	}
}
