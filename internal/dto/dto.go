package dto

import "minecraft-store/internal/model"

type AddCartItemRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image"`
}

type SetCartOpenRequest struct {
	Open bool `json:"open"`
}

type CartResponse struct {
	Items []model.CartItem `json:"items"`
	Total string           `json:"total"`
	Count int              `json:"count"`
	Open  bool             `json:"open"`
}

type BasketResponse struct {
	Basket *model.Basket `json:"basket"`
	Source string        `json:"source"`
}

type CouponRequest struct {
	Code string `json:"coupon_code"`
}

type CheckoutRequest struct {
	Username  string `json:"username"`
	Edition   string `json:"edition"`
	ReturnURL string `json:"return_url"`
}

type CheckoutHistoryItem struct {
	BasketIdent   string `json:"basket_ident"`
	Username      string `json:"username"`
	Edition       string `json:"edition"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
	FailedItems   int    `json:"failed_items"`
	Error         string `json:"error,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type PackageView struct {
	model.Package
	DisplayPrice string `json:"display_price"`
}

type PackagesResponse struct {
	Packages []PackageView `json:"packages"`
	Source   string        `json:"source"`
}

type PostsResponse struct {
	Posts []model.Post `json:"posts"`
}
