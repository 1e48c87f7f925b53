package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"

	"event-planner/models"
)

type ListenerConfig struct {
	SubscribeKey string `json:"pn_subkey" mapstructure:"pn_subkey"`
	SecretKey    string `json:"pn_secret" mapstructure:"pn_secret"`
	UUID         string `json:"pn_uuid" mapstructure:"pn_uuid"`
	CipherKey    string `json:"pn_cipherKey" mapstructure:"pn_cipherkey"`
	Channel      string `json:"pn_channel" mapstructure:"pn_channel"`
}

// Listener subscribes to the provider's webhook channel and converts
// incoming confirmation messages to PaymentNotification values.
// Delivered notifications go through the same verification path as
// client-initiated ones, so duplicates are harmless.
type Listener struct {
	pn  *pubnub.PubNub
	lis *pubnub.Listener
	ch  chan *models.PaymentNotification
}

// NewListener connects to the provider's notification channel and
// starts draining it. The returned channel closes when ctx is done.
func NewListener(ctx context.Context, cfg *ListenerConfig) *Listener {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UUID))
	pnCfg.SubscribeKey = cfg.SubscribeKey
	pnCfg.SecretKey = cfg.SecretKey
	pnCfg.CipherKey = cfg.CipherKey

	l := &Listener{
		pn:  pubnub.NewPubNub(pnCfg),
		lis: pubnub.NewListener(),
		ch:  make(chan *models.PaymentNotification, 16),
	}

	l.pn.AddListener(l.lis)
	l.pn.Subscribe().Channels([]string{cfg.Channel}).Execute()

	go l.process(ctx)

	return l
}

// Notifications is the stream of parsed confirmation messages.
func (l *Listener) Notifications() <-chan *models.PaymentNotification {
	return l.ch
}

func (l *Listener) process(ctx context.Context) {
	defer close(l.ch)

	for {
		select {
		case st := <-l.lis.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				slog.Info("gateway listener connected")
			case pubnub.PNReconnectedCategory:
				slog.Info("gateway listener reconnected")
			case pubnub.PNDisconnectedCategory:
				slog.Warn("gateway listener disconnected")
			default:
				slog.Debug("gateway listener status", "category", st.Category)
			}

		case message := <-l.lis.Message:
			n, err := parseNotification(message.Message)
			if err != nil {
				slog.Warn("gateway listener: drop malformed message", "error", err)
				continue
			}
			l.ch <- n

		case <-ctx.Done():
			l.pn.UnsubscribeAll()
			return
		}
	}
}

func parseNotification(raw any) (*models.PaymentNotification, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = b
	}

	var n models.PaymentNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
