package model

import "time"

// StorageEntry is one per-session local storage slot (shopping cart, basket ident, ...).
type StorageEntry struct {
	SessionID string `gorm:"primaryKey;size:64;not null"`
	Key       string `gorm:"primaryKey;size:64;not null"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

type CheckoutStatus string

const (
	CheckoutStatusReady  CheckoutStatus = "CHECKOUT_READY"
	CheckoutStatusFailed CheckoutStatus = "FAILED"
	CheckoutStatusPaid   CheckoutStatus = "PAID"
)

type CheckoutRecord struct {
	ID            uint           `gorm:"primaryKey"`
	SessionID     string         `gorm:"size:64;index;not null"`
	BasketIdent   string         `gorm:"size:128;index;not null"`
	Username      string         `gorm:"size:32;not null"`
	Edition       string         `gorm:"size:16;not null"`
	CheckoutURL   string         `gorm:"size:512"`
	Status        CheckoutStatus `gorm:"size:32;index;not null"` // CHECKOUT_READY, FAILED, PAID
	FailedItems   int            `gorm:"not null;default:0"`
	Error         string         `gorm:"size:512"`
	TransactionID string         `gorm:"size:128"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
