package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// PackageID is numeric at the gateway but a string everywhere else (cart items, routes).
type PackageID string

func (p *PackageID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PackageID(s)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return err
	}
	*p = PackageID(n.String())
	return nil
}

func (p PackageID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(p), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(p))
}

type Coupon struct {
	Code string `json:"coupon_code"`
}

type InBasket struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type BasketPackage struct {
	ID          PackageID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	InBasket    InBasket  `json:"in_basket"`
}

func (p BasketPackage) Subtotal() decimal.Decimal {
	return p.InBasket.Price.Mul(decimal.NewFromInt(int64(p.InBasket.Quantity)))
}

type BasketLinks struct {
	Payment  string `json:"payment,omitempty"`
	Checkout string `json:"checkout,omitempty"`
	Auth     string `json:"auth,omitempty"`
}

type Basket struct {
	Ident      string          `json:"ident"`
	Complete   bool            `json:"complete"`
	Username   string          `json:"username,omitempty"`
	BasePrice  decimal.Decimal `json:"base_price"`
	SalesTax   decimal.Decimal `json:"sales_tax"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
	Packages   []BasketPackage `json:"packages"`
	Coupons    []Coupon        `json:"coupons"`
	Links      BasketLinks     `json:"links"`
}

// AuthLink is one entry of the gateway's basket auth response.
type AuthLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type AuthResult struct {
	Success         bool   `json:"success"`
	PrimaryAuthLink string `json:"primary_auth_link,omitempty"`
	Error           string `json:"error,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Package struct {
	ID          PackageID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	Type        string          `json:"type"`
	Category    Category        `json:"category"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Currency    string          `json:"currency"`
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// DisplayPrice renders the price the way cart items carry it ("$9.99", "12.50 SEK").
func (p Package) DisplayPrice() string {
	amount := p.TotalPrice.StringFixed(2)
	if sym, ok := currencySymbols[p.Currency]; ok {
		return sym + amount
	}
	if p.Currency == "" {
		return amount
	}
	return amount + " " + p.Currency
}

// WebhookPayload is the envelope the gateway posts to /api/tebex/webhook.
type WebhookPayload struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Date    string         `json:"date"`
	Subject WebhookSubject `json:"subject"`
}

type WebhookSubject struct {
	TransactionID string            `json:"transaction_id"`
	Custom        map[string]string `json:"custom"`
}
