package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"minecraft-store/internal/config"
	"minecraft-store/internal/model"
)

// TebexClient is the raw transport to the headless billing gateway. Every failure is returned;
// BasketClient decides what to do with it.
type TebexClient interface {
	CreateBasket(ctx context.Context, req *CreateBasketRequest) (*model.Basket, error)
	GetBasket(ctx context.Context, ident string) (*model.Basket, error)
	AddPackage(ctx context.Context, ident string, packageID model.PackageID, quantity int) (*model.Basket, error)
	RemovePackage(ctx context.Context, ident string, packageID model.PackageID) (*model.Basket, error)
	ApplyCoupon(ctx context.Context, ident string, code string) (*model.Basket, error)
	GetAuthLinks(ctx context.Context, ident string, returnURL string) ([]model.AuthLink, error)
	ListPackages(ctx context.Context) ([]model.Package, error)
}

type CreateBasketRequest struct {
	CompleteURL          string            `json:"complete_url"`
	CancelURL            string            `json:"cancel_url"`
	CompleteAutoRedirect bool              `json:"complete_auto_redirect"`
	Custom               map[string]string `json:"custom,omitempty"`
}

// GatewayError is a non-2xx reply. Message holds the gateway's own error text.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("tebex error %d: %s", e.StatusCode, e.Message)
}

type tebexClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	webstoreToken string
	privateKey    string
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Detail  string `json:"detail"`
	Title   string `json:"title"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewTebexClient(tebexCfg *config.Tebex) TebexClient {
	return NewTebexClientWithHTTP(tebexCfg, &http.Client{
		Timeout: tebexCfg.Timeout,
	})
}

func NewTebexClientWithHTTP(tebexCfg *config.Tebex, httpClient *http.Client) TebexClient {
	return &tebexClientImpl{
		httpClient:    httpClient,
		baseApiURL:    strings.TrimSuffix(tebexCfg.BaseApiURL, "/"),
		webstoreToken: tebexCfg.WebstoreToken,
		privateKey:    tebexCfg.PrivateKey,
	}
}

func (c *tebexClientImpl) accountURL() string {
	if c.webstoreToken == "" {
		return c.baseApiURL
	}
	return c.baseApiURL + "/accounts/" + url.PathEscape(c.webstoreToken)
}

func (c *tebexClientImpl) basketURL(ident string) string {
	return c.accountURL() + "/baskets/" + url.PathEscape(ident)
}

func (c *tebexClientImpl) CreateBasket(ctx context.Context, req *CreateBasketRequest) (*model.Basket, error) {
	var basket model.Basket
	if err := c.do(ctx, http.MethodPost, c.accountURL()+"/baskets", req, &basket); err != nil {
		return nil, fmt.Errorf("create basket: %w", err)
	}
	if basket.Ident == "" {
		return nil, fmt.Errorf("create basket: response has no ident")
	}
	return &basket, nil
}

func (c *tebexClientImpl) GetBasket(ctx context.Context, ident string) (*model.Basket, error) {
	var basket model.Basket
	if err := c.do(ctx, http.MethodGet, c.basketURL(ident), nil, &basket); err != nil {
		return nil, fmt.Errorf("get basket %s: %w", ident, err)
	}
	return &basket, nil
}

func (c *tebexClientImpl) AddPackage(ctx context.Context, ident string, packageID model.PackageID, quantity int) (*model.Basket, error) {
	payload := map[string]interface{}{
		"package_id": packageID,
		"quantity":   quantity,
	}

	var basket model.Basket
	if err := c.do(ctx, http.MethodPost, c.basketURL(ident)+"/packages", payload, &basket); err != nil {
		return nil, fmt.Errorf("add package %s to basket %s: %w", packageID, ident, err)
	}
	return &basket, nil
}

func (c *tebexClientImpl) RemovePackage(ctx context.Context, ident string, packageID model.PackageID) (*model.Basket, error) {
	target := c.basketURL(ident) + "/packages/" + url.PathEscape(string(packageID))

	var basket model.Basket
	if err := c.do(ctx, http.MethodDelete, target, nil, &basket); err != nil {
		return nil, fmt.Errorf("remove package %s from basket %s: %w", packageID, ident, err)
	}
	return &basket, nil
}

func (c *tebexClientImpl) ApplyCoupon(ctx context.Context, ident string, code string) (*model.Basket, error) {
	payload := map[string]string{
		"coupon_code": code,
	}

	var basket model.Basket
	if err := c.do(ctx, http.MethodPost, c.basketURL(ident)+"/coupons", payload, &basket); err != nil {
		return nil, fmt.Errorf("apply coupon to basket %s: %w", ident, err)
	}
	return &basket, nil
}

func (c *tebexClientImpl) GetAuthLinks(ctx context.Context, ident string, returnURL string) ([]model.AuthLink, error) {
	target := c.basketURL(ident) + "/auth?returnUrl=" + url.QueryEscape(returnURL)

	var links []model.AuthLink
	if err := c.do(ctx, http.MethodGet, target, nil, &links); err != nil {
		return nil, fmt.Errorf("get auth links for basket %s: %w", ident, err)
	}
	return links, nil
}

func (c *tebexClientImpl) ListPackages(ctx context.Context) ([]model.Package, error) {
	var packages []model.Package
	if err := c.do(ctx, http.MethodGet, c.accountURL()+"/packages", nil, &packages); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

// do sends the request and decodes the body into out. The gateway wraps most replies in
// {"data": ...}; bare arrays (auth links) are decoded as is.
func (c *tebexClientImpl) do(ctx context.Context, method, target string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.privateKey != "" {
		req.SetBasicAuth(c.webstoreToken, c.privateKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(resp.StatusCode, raw),
		}
	}

	data := json.RawMessage(raw)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
			data = env.Data
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode tebex response: %w", err)
	}
	return nil
}

func extractErrorMessage(status int, raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		for _, msg := range []string{eb.Detail, eb.Title, eb.Error, eb.Message} {
			if msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 256 {
		return text
	}
	return http.StatusText(status)
}
