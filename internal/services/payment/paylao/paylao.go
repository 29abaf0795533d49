// Package paylao is the PayLao charge-intent gateway client. Charge intents
// are created over signed HTTP; payment outcomes arrive asynchronously on a
// PubNub channel the backend publishes to.
package paylao

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"
)

type Config struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	PartnerID string `json:"partnerId" mapstructure:"partner_id"`
	ClientID  string `json:"clientId" mapstructure:"client_id"`
	ClientKey string `json:"clientKey" mapstructure:"client_key"`
	HMACKey   string `json:"hmacKey" mapstructure:"hmac_key"`

	MerchantID string `json:"merchantId" mapstructure:"merchant_id"`
	Currency   string `json:"currency" mapstructure:"currency"`

	PNSubKey    string `json:"pn_subkey" mapstructure:"pn_subkey"`
	PNSubSecret string `json:"pn_subsecret" mapstructure:"pn_subsecret"`
	PNUUID      string `json:"pn_uuid" mapstructure:"pn_uuid"`
	PNChannel   string `json:"pn_channel" mapstructure:"pn_channel"`
	PNCipherKey string `json:"pn_cipherKey" mapstructure:"pn_cipherkey"`
}

// Transaction is a payment outcome as PayLao publishes it.
type Transaction struct {
	RefID     string          `json:"refNo"`
	BookingID string          `json:"billNumber"`
	Currency  string          `json:"sourceCurrency"`
	Payer     string          `json:"sourceName"`
	Amount    decimal.Decimal `json:"txnAmount"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"txnDateTime"`
}

// FormIntent is the input for creating a charge intent.
type FormIntent struct {
	BookingID      string
	Amount         decimal.Decimal
	Phone          string
	Description    string
	ReferenceLabel string
}

type PayLao struct {
	merchantID string
	currency   string

	pnChannels []string
	pn         *pubnub.PubNub
	listener   *pubnub.Listener

	client *Client

	mu   sync.Mutex
	txCh chan *Transaction
}

// New connects to the PayLao backend, obtains an access token and subscribes
// to the notification channel. The refresher and the notification dispatch
// run until ctx is cancelled.
func New(ctx context.Context, cfg *Config) (*PayLao, error) {
	client := newClient(ctx, &ClientConfig{
		BaseURL:   cfg.BaseURL,
		PartnerID: cfg.PartnerID,
		ClientID:  cfg.ClientID,
		ClientKey: cfg.ClientKey,
		HMACKey:   cfg.HMACKey,
	})

	token, err := client.connect(ctx)
	if err != nil {
		return nil, err
	}
	client.setAccessToken(token)

	go client.notifyAccessTokenExpired(ctx)

	p := &PayLao{
		merchantID: cfg.MerchantID,
		currency:   cfg.Currency,
		pnChannels: []string{cfg.PNChannel},
		listener:   pubnub.NewListener(),
		client:     client,
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PNUUID))
	pnCfg.SubscribeKey = cfg.PNSubKey
	pnCfg.SecretKey = cfg.PNSubSecret
	pnCfg.CipherKey = cfg.PNCipherKey

	p.pn = pubnub.NewPubNub(pnCfg)
	p.pn.AddListener(p.listener)
	p.pn.Subscribe().Channels(p.pnChannels).Execute()

	go p.dispatchNotifications(ctx)

	return p, nil
}

// CreateChargeIntent asks PayLao for a charge intent and returns the opaque
// client token the frontend completes the payment with.
func (p *PayLao) CreateChargeIntent(ctx context.Context, f *FormIntent) (string, error) {
	refNo, err := randomNumber()
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"refNo":       refNo,
		"billNumber":  f.BookingID,
		"merchantId":  p.merchantID,
		"txnAmount":   f.Amount,
		"ccy":         p.currency,
		"phone":       f.Phone,
		"description": f.Description,
		"refLabel":    f.ReferenceLabel,
	}

	var resp struct {
		ClientToken string `json:"clientToken"`
	}
	if err := p.client.post(ctx, "/v1/charge-intents", payload, &resp); err != nil {
		return "", err
	}
	if resp.ClientToken == "" {
		return "", fmt.Errorf("paylao: charge intent created without client token")
	}
	return resp.ClientToken, nil
}

// SetTranChannel sets the channel receiving payment outcomes.
func (p *PayLao) SetTranChannel(ch chan *Transaction) {
	p.mu.Lock()
	p.txCh = ch
	p.mu.Unlock()
}

func (p *PayLao) dispatchNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-p.listener.Message:
			tx, err := parseTransaction(message)
			if err != nil {
				slog.Error("paylao: dropping unparseable notification", "error", err)
				continue
			}

			p.mu.Lock()
			ch := p.txCh
			p.mu.Unlock()
			if ch != nil {
				ch <- tx
			}
		}
	}
}

func parseTransaction(message *pubnub.PNMessage) (*Transaction, error) {
	data, err := json.Marshal(message.Message)
	if err != nil {
		return nil, err
	}

	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, err
	}
	if tx.BookingID == "" || tx.RefID == "" {
		return nil, fmt.Errorf("notification missing billNumber or refNo")
	}
	return &tx, nil
}

// Close unsubscribes from the notification channel and releases the client.
func (p *PayLao) Close(ctx context.Context) error {
	p.pn.UnsubscribeAll()
	p.pn.Destroy()
	return nil
}
