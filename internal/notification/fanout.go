package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/port"
	"go.uber.org/zap"
)

// ErrNotificationDelivery is returned only when every attempted channel fails.
// It is informational, order and payment state are unaffected.
var ErrNotificationDelivery = errors.New("all notification channels failed")

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// OrderConfirmation is the payload handed to every channel after a payment is
// confirmed.
type OrderConfirmation struct {
	OrderID       uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	OrderAmount   domain.Money
	OrderItems    []domain.OrderItem
	Address       domain.ShippingAddress
	PaymentStatus domain.PaymentStatus
}

type ChannelResult struct {
	Channel   string
	MessageID string
	Err       error
}

// Fanout sends order confirmations over every applicable channel,
// best-effort. One channel failing never blocks the others.
type Fanout struct {
	email  port.EmailSender
	sms    port.SMSSender
	logger *zap.Logger
}

func NewFanout(email port.EmailSender, sms port.SMSSender, logger *zap.Logger) *Fanout {
	return &Fanout{
		email:  email,
		sms:    sms,
		logger: logger,
	}
}

func (f *Fanout) SendAll(ctx context.Context, conf OrderConfirmation) ([]ChannelResult, error) {
	var results []ChannelResult

	if f.email != nil && conf.CustomerEmail != "" {
		result := ChannelResult{Channel: ChannelEmail}

		sent, err := f.email.SendEmail(ctx, conf.CustomerEmail, emailSubject(conf), emailBody(conf))
		result.MessageID = sent.MessageID
		result.Err = err

		results = append(results, result)
	}

	if f.sms != nil && conf.CustomerPhone != "" {
		result := ChannelResult{Channel: ChannelSMS}

		sent, err := f.sms.SendSMS(ctx, conf.CustomerPhone, smsText(conf))
		result.MessageID = sent.MessageID
		result.Err = err

		results = append(results, result)
	}

	if len(results) == 0 {
		f.logger.Warn("no notification channels applicable",
			zap.String("order_id", conf.OrderID.String()))
		return nil, nil
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			f.logger.Error("notification channel failed",
				zap.String("order_id", conf.OrderID.String()),
				zap.String("channel", result.Channel),
				zap.Error(result.Err))
		}
	}

	if failed == len(results) {
		return results, ErrNotificationDelivery
	}

	return results, nil
}

func emailSubject(conf OrderConfirmation) string {
	return fmt.Sprintf("Order %s confirmed", shortOrderID(conf.OrderID))
}

func emailBody(conf OrderConfirmation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Thanks for your order, %s!</h2>", conf.CustomerName)
	fmt.Fprintf(&b, "<p>Order <b>%s</b> is confirmed and paid (%s).</p>", conf.OrderID, conf.PaymentStatus)

	b.WriteString("<ul>")
	for _, item := range conf.OrderItems {
		fmt.Fprintf(&b, "<li>%s &times; %d — %s</li>", item.Title, item.Quantity, item.UnitPrice)
	}
	b.WriteString("</ul>")

	fmt.Fprintf(&b, "<p>Total: <b>%s</b></p>", conf.OrderAmount)
	fmt.Fprintf(&b, "<p>Shipping to: %s, %s, %s %s</p>",
		conf.Address.Line1, conf.Address.City, conf.Address.State, conf.Address.PostalCode)

	return b.String()
}

func smsText(conf OrderConfirmation) string {
	return fmt.Sprintf("CoinKart: order %s confirmed, total %s. We will text you when it ships.",
		shortOrderID(conf.OrderID), conf.OrderAmount)
}

func shortOrderID(id uuid.UUID) string {
	return strings.Split(id.String(), "-")[0]
}
