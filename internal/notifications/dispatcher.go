package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
	"github.com/gardenaqua/gardenaqua-backend/pkg/mailer"
)

// Dispatcher fans out order events to email. Every delivery is best effort:
// an undelivered email is logged and swallowed, it never fails the operation
// that triggered it.
type Dispatcher struct {
	sender     mailer.Sender
	store      config.StoreConfig
	adminEmail string
	logger     *logger.Logger
}

// NewDispatcher builds the notification dispatcher. A nil sender disables
// email entirely; the dispatcher still builds WhatsApp links.
func NewDispatcher(sender mailer.Sender, store config.StoreConfig, adminEmail string, logg *logger.Logger) (*Dispatcher, error) {
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Dispatcher{
		sender:     sender,
		store:      store,
		adminEmail: adminEmail,
		logger:     logg,
	}, nil
}

// OrderCreated notifies the shopper and the store about a new order.
func (d *Dispatcher) OrderCreated(ctx context.Context, order models.Order) {
	if d == nil {
		return
	}
	ctx = d.logger.WithOrderNumber(ctx, order.OrderNumber)

	data := emailDataFromOrder(d.store, order)
	data.WhatsAppURL = WhatsAppLink(d.store, order)

	d.deliver(ctx, "confirmation", []string{order.Email},
		fmt.Sprintf("Confirmación de pedido %s", order.OrderNumber), data)

	if d.adminEmail != "" {
		d.deliver(ctx, "admin_alert", []string{d.adminEmail},
			fmt.Sprintf("Nuevo pedido %s", order.OrderNumber), data)
	}
}

// OrderStatusChanged notifies the shopper that the order moved to a new
// status. Cancellations and forward steps use the same template.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order models.Order, previous enums.OrderStatus) {
	if d == nil {
		return
	}
	ctx = d.logger.WithOrderNumber(ctx, order.OrderNumber)

	data := emailDataFromOrder(d.store, order)
	d.deliver(ctx, "status_update", []string{order.Email},
		fmt.Sprintf("Tu pedido %s está %s", order.OrderNumber, order.Status.Label()), data)
}

func (d *Dispatcher) deliver(ctx context.Context, template string, to []string, subject string, data emailData) {
	if d.sender == nil {
		return
	}

	html, err := renderEmail(template, data)
	if err != nil {
		d.logger.Error(ctx, "rendering notification email failed", err)
		return
	}
	err = d.sender.Send(ctx, mailer.Message{
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		d.logger.Error(ctx, fmt.Sprintf("sending %s email failed", template), err)
		return
	}
	d.logger.Info(d.logger.WithField(ctx, "template", template), "notification email sent")
}
