package paylao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	PartnerID string `json:"partnerId" mapstructure:"partner_id"`
	ClientID  string `json:"clientId" mapstructure:"client_id"`
	ClientKey string `json:"clientKey" mapstructure:"client_key"`
	HMACKey   string `json:"hmacKey" mapstructure:"hmac_key"`
}

// Client is the HTTP transport to the PayLao backend. Requests carry a
// bearer access token and an HMAC-SHA256 body signature; the token is
// refreshed in the background before it expires.
type Client struct {
	baseURL   string
	partnerID string
	clientID  string
	clientKey string
	hmacKey   string

	// accessToken authenticates requests; guarded by mu.
	accessToken string
	mu          sync.Mutex

	// toggleTokenRefresher wakes the refresher after a 401.
	toggleTokenRefresher chan struct{}

	hc *http.Client
}

func newClient(_ context.Context, c *ClientConfig) *Client {
	return &Client{
		baseURL:   c.BaseURL,
		partnerID: c.PartnerID,
		clientID:  c.ClientID,
		clientKey: c.ClientKey,
		hmacKey:   c.HMACKey,

		// buffered so a 401 handler never blocks.
		toggleTokenRefresher: make(chan struct{}, 1),

		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// connect exchanges the client credentials for an access token.
func (c *Client) connect(ctx context.Context) (string, error) {
	body := map[string]string{
		"partnerId": c.partnerID,
		"clientId":  c.clientID,
		"clientKey": c.clientKey,
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	if err := c.postUnsigned(ctx, "/v1/auth/token", body, &resp); err != nil {
		return "", fmt.Errorf("paylao connect: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("paylao connect: empty access token")
	}
	return resp.AccessToken, nil
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) getAccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// notifyAccessTokenExpired renews the token periodically and whenever a
// request hits a 401. Runs until ctx is cancelled.
func (c *Client) notifyAccessTokenExpired(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.toggleTokenRefresher:
		}

		token, err := c.connect(ctx)
		if err != nil {
			slog.Error("paylao token refresh failed", "error", err)
			continue
		}
		c.setAccessToken(token)
	}
}

// post sends a signed, authenticated request and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.getAccessToken())
	req.Header.Set("X-Partner-Id", c.partnerID)
	req.Header.Set("X-Signature", Hmac256(body, []byte(c.hmacKey)))

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Wake the refresher; the caller retries with a fresh token.
		select {
		case c.toggleTokenRefresher <- struct{}{}:
		default:
		}
		return fmt.Errorf("paylao: unauthorized")
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paylao: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postUnsigned is post without the bearer token, used for the token exchange
// itself.
func (c *Client) postUnsigned(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Hmac256(body, []byte(c.hmacKey)))

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paylao: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
