package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"minecraft-store/internal/model"
	"minecraft-store/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	SignatureHeader = "X-Signature"

	EventValidation       = "validation.webhook"
	EventPaymentCompleted = "payment.completed"
)

type WebhookResult struct {
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"-"`
}

type WebhookService interface {
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookResult, error)
}

type webhookServiceImpl struct {
	db               *gorm.DB
	secret           string
	checkoutRepo     repository.CheckoutRepository
	webhookEventRepo repository.WebhookEventRepository
	log              logrus.FieldLogger
}

func NewWebhookService(
	db *gorm.DB,
	secret string,
	checkoutRepo repository.CheckoutRepository,
	webhookEventRepo repository.WebhookEventRepository,
	log logrus.FieldLogger,
) WebhookService {
	return &webhookServiceImpl{
		db:               db,
		secret:           secret,
		checkoutRepo:     checkoutRepo,
		webhookEventRepo: webhookEventRepo,
		log:              log,
	}
}

func (s *webhookServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookResult, error) {
	if !VerifySignature(s.secret, headers.Get(SignatureHeader), body) {
		return nil, ErrInvalidSignature
	}

	var event model.WebhookPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: decode webhook payload: %v", ErrInvalidInput, err)
	}
	if event.ID == "" {
		return nil, fmt.Errorf("%w: webhook id is required", ErrInvalidInput)
	}

	log := s.log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	if event.Type == EventValidation {
		log.Info("webhook endpoint validated")
		return &WebhookResult{ID: event.ID}, nil
	}

	result := &WebhookResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := s.webhookEventRepo.Exists(ctx, tx, event.ID)
		if err != nil {
			return fmt.Errorf("check webhook event: %w", err)
		}
		if seen {
			result.Duplicate = true
			return nil
		}

		if event.Type == EventPaymentCompleted {
			if err := s.handlePaymentCompleted(ctx, tx, &event, log); err != nil {
				return err
			}
		}

		if err := s.webhookEventRepo.MarkProcessed(ctx, tx, event.ID, event.Type); err != nil {
			return fmt.Errorf("store webhook event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		log.Info("webhook already processed")
	}
	return result, nil
}

func (s *webhookServiceImpl) handlePaymentCompleted(ctx context.Context, tx *gorm.DB, event *model.WebhookPayload, log logrus.FieldLogger) error {
	sessionID := event.Subject.Custom["session_id"]
	if sessionID == "" {
		log.Warn("payment without session id, nothing to mark")
		return nil
	}

	rows, err := s.checkoutRepo.MarkPaid(ctx, tx, sessionID, event.Subject.TransactionID)
	if err != nil {
		return fmt.Errorf("mark checkout paid: %w", err)
	}

	log.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"transaction_id": event.Subject.TransactionID,
		"rows":           rows,
	}).Info("payment completed")
	return nil
}

// VerifySignature checks hex(HMAC-SHA256(secret, hex(sha256(body)))). An empty secret rejects everything.
func VerifySignature(secret, signature string, body []byte) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func Sign(secret string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(hex.EncodeToString(bodyHash[:])))
	return hex.EncodeToString(mac.Sum(nil))
}
