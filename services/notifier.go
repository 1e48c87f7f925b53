package services

import (
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go"
)

// Publisher is the outbound notification transport. Delivery is
// fire-and-forget: a failed publish never rolls back a core mutation.
type Publisher interface {
	Publish(channel string, message map[string]any) error
}

// PubNubPublisher publishes over PubNub channels.
type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(channel string, message map[string]any) error {
	_, _, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	return err
}

// Notifier fans event notifications out to subscribers. A nil Notifier
// or a nil Publisher is a no-op, which tests rely on.
type Notifier struct {
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

// Notify publishes kind/payload on the event's channel. Errors are
// logged, never returned.
func (n *Notifier) Notify(eventID, kind string, payload map[string]any) {
	if n == nil || n.pub == nil {
		return
	}

	message := map[string]any{
		"type":     kind,
		"event_id": eventID,
	}
	for k, v := range payload {
		message[k] = v
	}

	channel := fmt.Sprintf("event-%s", eventID)
	if err := n.pub.Publish(channel, message); err != nil {
		slog.Warn("notify failed", "event_id", eventID, "kind", kind, "error", err)
	}
}
