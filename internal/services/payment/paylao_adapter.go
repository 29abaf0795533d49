package payment

import (
	"context"
	"log/slog"
	"time"

	"trip-booking/internal/services/payment/paylao"
)

// payLaoAdapter adapts the PayLao client to the Gateway interface.
type payLaoAdapter struct {
	gw *paylao.PayLao
}

func newPayLaoAdapter(ctx context.Context, cfg *paylao.Config) (Gateway, error) {
	gw, err := paylao.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &payLaoAdapter{gw: gw}, nil
}

func (a *payLaoAdapter) GetProvider() Provider {
	return ProviderPayLao
}

func (a *payLaoAdapter) CreateChargeIntent(ctx context.Context, req *ChargeRequest) (string, error) {
	return a.gw.CreateChargeIntent(ctx, &paylao.FormIntent{
		BookingID:      req.BookingID,
		Amount:         req.Amount,
		Phone:          req.Phone,
		Description:    req.Description,
		ReferenceLabel: req.ReferenceLabel,
	})
}

// SetNotificationChannel bridges PayLao transactions onto the generic
// notification channel.
func (a *payLaoAdapter) SetNotificationChannel(ch chan *Notification) {
	inner := make(chan *paylao.Transaction, 1)
	a.gw.SetTranChannel(inner)

	go func() {
		for tx := range inner {
			status := tx.Status
			if status == "" {
				// PayLao only publishes completed payments on this channel.
				status = "success"
			}
			ch <- &Notification{
				BookingID:   tx.BookingID,
				ExternalRef: tx.RefID,
				Amount:      tx.Amount,
				Status:      status,
				Timestamp:   time.Now().Unix(),
			}
		}
		slog.Info("paylao notification bridge stopped")
	}()
}

func (a *payLaoAdapter) Close(ctx context.Context) error {
	return a.gw.Close(ctx)
}
