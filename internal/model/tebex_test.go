package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageID_AcceptsNumberAndString(t *testing.T) {
	var pkgs []BasketPackage
	err := json.Unmarshal([]byte(`[{"id": 6123456, "name": "VIP"}, {"id": "rank-mvp", "name": "MVP"}]`), &pkgs)
	require.NoError(t, err)

	assert.Equal(t, PackageID("6123456"), pkgs[0].ID)
	assert.Equal(t, PackageID("rank-mvp"), pkgs[1].ID)
}

func TestPackageID_MarshalsNumericIDsAsNumbers(t *testing.T) {
	b, err := json.Marshal(map[string]PackageID{"package_id": "42", "other": "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"package_id": 42, "other": "abc"}`, string(b))
}

func TestBasketPackage_Subtotal(t *testing.T) {
	p := BasketPackage{InBasket: InBasket{Quantity: 3, Price: decimal.RequireFromString("4.99")}}
	assert.Equal(t, "14.97", p.Subtotal().StringFixed(2))
}

func TestPackage_DisplayPrice(t *testing.T) {
	assert.Equal(t, "$9.99", Package{TotalPrice: decimal.RequireFromString("9.99"), Currency: "USD"}.DisplayPrice())
	assert.Equal(t, "£5.00", Package{TotalPrice: decimal.NewFromInt(5), Currency: "GBP"}.DisplayPrice())
	assert.Equal(t, "120.00 SEK", Package{TotalPrice: decimal.NewFromInt(120), Currency: "SEK"}.DisplayPrice())
}

func TestFormatUsername(t *testing.T) {
	assert.Equal(t, ".Steve", FormatUsername("Steve", EditionBedrock))
	assert.Equal(t, "Steve", FormatUsername("Steve", EditionJava))
	assert.Equal(t, "Steve", FormatUsername("Steve", Edition("")))
}
