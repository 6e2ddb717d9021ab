package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"minecraft-store/internal/client"
	"minecraft-store/internal/config"
	"minecraft-store/internal/model"
	"minecraft-store/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "whsec-test"

func setupWebhookService(t *testing.T) (WebhookService, repository.CheckoutRepository, *gorm.DB) {
	t.Helper()
	db, err := client.InitDBClient(config.Database{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	checkoutRepo := repository.NewCheckoutRepository(db)
	svc := NewWebhookService(db, testSecret, checkoutRepo, repository.NewWebhookEventRepository(db), newTestLogger())
	return svc, checkoutRepo, db
}

func signedHeaders(body []byte) http.Header {
	h := http.Header{}
	h.Set(SignatureHeader, Sign(testSecret, body))
	return h
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	svc, _, _ := setupWebhookService(t)
	body := []byte(`{"id":"evt-1","type":"validation.webhook"}`)

	h := http.Header{}
	h.Set(SignatureHeader, Sign("other-secret", body))
	_, err := svc.HandleWebhook(context.Background(), h, body)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = svc.HandleWebhook(context.Background(), http.Header{}, body)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhook_Validation(t *testing.T) {
	svc, _, _ := setupWebhookService(t)
	body := []byte(`{"id":"evt-validate","type":"validation.webhook"}`)

	res, err := svc.HandleWebhook(context.Background(), signedHeaders(body), body)
	require.NoError(t, err)
	assert.Equal(t, "evt-validate", res.ID)
}

func TestWebhook_MalformedPayload(t *testing.T) {
	svc, _, _ := setupWebhookService(t)
	body := []byte(`{not json`)

	_, err := svc.HandleWebhook(context.Background(), signedHeaders(body), body)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWebhook_PaymentCompletedIsIdempotent(t *testing.T) {
	svc, checkoutRepo, _ := setupWebhookService(t)
	ctx := context.Background()

	require.NoError(t, checkoutRepo.Create(ctx, &model.CheckoutRecord{
		SessionID: "s1", BasketIdent: "b1", Username: "Steve", Edition: "java", Status: model.CheckoutStatusReady,
	}))

	body := []byte(`{
		"id": "evt-pay-1",
		"type": "payment.completed",
		"date": "2025-01-01T00:00:00Z",
		"subject": {"transaction_id": "tbx-99", "custom": {"session_id": "s1"}}
	}`)

	res, err := svc.HandleWebhook(ctx, signedHeaders(body), body)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	records, err := checkoutRepo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CheckoutStatusPaid, records[0].Status)
	assert.Equal(t, "tbx-99", records[0].TransactionID)

	// a second ready checkout must not be touched by the replay
	require.NoError(t, checkoutRepo.Create(ctx, &model.CheckoutRecord{
		SessionID: "s1", BasketIdent: "b2", Username: "Steve", Edition: "java", Status: model.CheckoutStatusReady,
	}))

	res, err = svc.HandleWebhook(ctx, signedHeaders(body), body)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	records, err = checkoutRepo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.CheckoutStatusReady, records[0].Status)
}

func TestWebhook_UnknownTypeAcknowledged(t *testing.T) {
	svc, _, _ := setupWebhookService(t)
	body := []byte(`{"id":"evt-x","type":"recurring-payment.started"}`)

	res, err := svc.HandleWebhook(context.Background(), signedHeaders(body), body)
	require.NoError(t, err)
	assert.Empty(t, res.ID)
}

func TestVerifySignature_EmptySecret(t *testing.T) {
	body := []byte(`{}`)
	assert.False(t, VerifySignature("", Sign("", body), body))
	assert.True(t, VerifySignature("k", Sign("k", body), body))
}
