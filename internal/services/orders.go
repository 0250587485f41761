package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/backend"
	"storefront-service/internal/events"
	"storefront-service/internal/metrics"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/snapshot"
)

// OrderRemote is the remote orders table
type OrderRemote interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	InsertOrdersIfAbsent(ctx context.Context, orders []models.Order) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error
}

// ShopContact holds the channels customers use to confirm an order
type ShopContact struct {
	Name          string
	WhatsAppPhone string
	Email         string
}

// OrderQueue records customer order requests. Submission always succeeds:
// when the remote store rejects an order it is kept in the local queue until
// FlushLocal delivers it.
type OrderQueue struct {
	mode    backend.Mode
	remote  OrderRemote
	local   snapshot.Store
	events  EventPublisher
	contact ShopContact
	logger  *logrus.Entry
	now     func() time.Time

	mu sync.Mutex
}

func NewOrderQueue(mode backend.Mode, remote OrderRemote, local snapshot.Store, publisher EventPublisher, contact ShopContact, logger *logrus.Logger) *OrderQueue {
	return &OrderQueue{
		mode:    mode,
		remote:  remote,
		local:   local,
		events:  publisher,
		contact: contact,
		logger:  logger.WithField("component", "order-queue"),
		now:     time.Now,
	}
}

// SubmitOrder records a new pending order and returns it. It never fails.
func (q *OrderQueue) SubmitOrder(ctx context.Context, customer models.CustomerInfo, items []models.CartItem, total decimal.Decimal) models.Order {
	order := models.NewOrder(uuid.NewString(), customer, items, total, q.now())
	log := q.logger.WithField("orderID", order.ID)

	stored := false
	if q.mode.Remote() {
		if err := q.remote.CreateOrder(ctx, &order); err != nil {
			metrics.RemoteErrors.WithLabelValues("create_order").Inc()
			log.WithError(err).Error("Failed to save order remotely, queueing locally")
		} else {
			stored = true
		}
	}

	if !stored {
		err := q.modifyLocal(ctx, func(queue []models.Order) []models.Order {
			return append([]models.Order{order}, queue...)
		})
		if err != nil {
			log.WithError(err).Error("Failed to queue order locally")
		} else {
			metrics.OrdersQueuedLocally.Inc()
		}
	}

	log.WithField("total", order.Total.StringFixed(2)).Info("Order submitted")
	q.publish(ctx, events.OrderCreated, order.ID, order)
	return order
}

// GetAllOrders returns every order, newest first. It never fails. In remote
// mode orders still waiting in the local queue are included.
func (q *OrderQueue) GetAllOrders(ctx context.Context) []models.Order {
	if !q.mode.Remote() {
		return q.loadLocal(ctx)
	}
	return backend.ReadWithFallback(ctx, q.logger, "orders", func(ctx context.Context) ([]models.Order, error) {
		orders, err := q.remote.ListOrders(ctx)
		if err != nil {
			metrics.RemoteErrors.WithLabelValues("list_orders").Inc()
			return nil, err
		}
		return mergeOrders(orders, q.loadLocal(ctx)), nil
	}, q.loadLocal)
}

// Get returns one order by id from whichever backend holds it
func (q *OrderQueue) Get(ctx context.Context, id string) (models.Order, error) {
	if q.mode.Remote() {
		order, err := q.remote.GetOrder(ctx, id)
		if err == nil {
			return *order, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			q.logger.WithError(err).WithField("orderID", id).Warn("Remote order lookup failed, checking local queue")
		}
	}
	for _, o := range q.loadLocal(ctx) {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, fmt.Errorf("order %s: %w", id, repository.ErrNotFound)
}

// UpdateStatus moves an order to status. Setting the current status again
// succeeds without change.
func (q *OrderQueue) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrInvalidStatus, status)
	}

	queued, err := q.patchLocal(ctx, id, status)
	if err != nil {
		if !q.mode.Remote() {
			return err
		}
		q.logger.WithError(err).WithField("orderID", id).Warn("Local order queue unavailable, updating remote only")
		queued = false
	}

	if q.mode.Remote() {
		err := q.remote.UpdateOrderStatus(ctx, id, status)
		switch {
		case err == nil:
		case queued:
			// The queued copy is authoritative until it is flushed.
			q.logger.WithError(err).WithField("orderID", id).Debug("Remote status update skipped for queued order")
		default:
			return remoteFailure("update order status", err)
		}
	} else if !queued {
		return fmt.Errorf("order %s: %w", id, repository.ErrNotFound)
	}

	q.publish(ctx, events.OrderStatusChanged, id, status)
	return nil
}

// FlushLocal delivers queued orders to the remote store and drops the
// delivered ones from the queue. It returns how many were delivered.
func (q *OrderQueue) FlushLocal(ctx context.Context) (int, error) {
	if !q.mode.Remote() {
		return 0, nil
	}

	// Status changes to queued orders wait until the flush is done, so none
	// is dropped along with a delivered entry.
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.loadLocal(ctx)
	if len(pending) == 0 {
		return 0, nil
	}
	if err := q.remote.InsertOrdersIfAbsent(ctx, pending); err != nil {
		return 0, remoteFailure("flush orders", err)
	}

	delivered := make(map[string]bool, len(pending))
	for _, o := range pending {
		delivered[o.ID] = true
	}
	err := q.updateLocal(ctx, func(queue []models.Order) []models.Order {
		return slices.DeleteFunc(queue, func(o models.Order) bool { return delivered[o.ID] })
	})
	if err != nil {
		return len(pending), err
	}

	metrics.OrdersFlushed.Add(float64(len(pending)))
	q.logger.WithField("count", len(pending)).Info("Flushed locally queued orders")
	return len(pending), nil
}

// ContactLinks builds the WhatsApp and e-mail links offered to the customer
// after checkout
func (q *OrderQueue) ContactLinks(order models.Order) models.ContactLinks {
	var links models.ContactLinks
	customer := order.CustomerInfo()

	if q.contact.WhatsAppPhone != "" {
		text := fmt.Sprintf("Ciao %s, ho appena inviato l'ordine %s. Ve lo confermo qui.", q.contact.Name, order.ID)
		links.WhatsApp = fmt.Sprintf("https://wa.me/%s?text=%s", digits(q.contact.WhatsAppPhone), encodeComponent(text))
	}
	if q.contact.Email != "" {
		subject := fmt.Sprintf("Nuovo Ordine: %s", customer.Name)
		body := fmt.Sprintf("Ciao, confermo il mio ordine %s.\n\nDettagli:\nNome: %s\nTelefono: %s\nTotale: €%s\n",
			order.ID, customer.Name, customer.Phone, order.Total.StringFixed(2))
		links.Email = fmt.Sprintf("mailto:%s?subject=%s&body=%s", q.contact.Email, encodeComponent(subject), encodeComponent(body))
	}
	return links
}

// patchLocal sets the status of a queued order and reports whether it was
// found
func (q *OrderQueue) patchLocal(ctx context.Context, id string, status models.OrderStatus) (bool, error) {
	found := false
	err := q.modifyLocal(ctx, func(queue []models.Order) []models.Order {
		for i := range queue {
			if queue[i].ID == id {
				queue[i].Status = status
				found = true
			}
		}
		return queue
	})
	return found, err
}

func (q *OrderQueue) loadLocal(ctx context.Context) []models.Order {
	orders, _, err := snapshot.LoadJSON[[]models.Order](ctx, q.local, snapshot.OrdersKey)
	if err != nil {
		q.logger.WithError(err).Warn("Local order queue unreadable")
		return []models.Order{}
	}
	if orders == nil {
		return []models.Order{}
	}
	return orders
}

func (q *OrderQueue) modifyLocal(ctx context.Context, fn func([]models.Order) []models.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.updateLocal(ctx, fn)
}

// updateLocal rewrites the queue. The caller holds q.mu.
func (q *OrderQueue) updateLocal(ctx context.Context, fn func([]models.Order) []models.Order) error {
	current, _, err := snapshot.LoadJSON[[]models.Order](ctx, q.local, snapshot.OrdersKey)
	if err != nil && !errors.Is(err, snapshot.ErrCorrupt) {
		return fmt.Errorf("load local orders: %w", err)
	}
	if err := snapshot.SaveJSON(ctx, q.local, snapshot.OrdersKey, fn(current)); err != nil {
		return fmt.Errorf("save local orders: %w", err)
	}
	return nil
}

func (q *OrderQueue) publish(ctx context.Context, eventType, entityID string, data any) {
	if q.events != nil {
		q.events.Publish(ctx, eventType, entityID, data)
	}
}

// mergeOrders adds queued orders missing from the remote list and sorts the
// result newest first
func mergeOrders(remote, queued []models.Order) []models.Order {
	merged := make([]models.Order, 0, len(remote)+len(queued))
	merged = append(merged, remote...)

	known := make(map[string]bool, len(remote))
	for _, o := range remote {
		known[o.ID] = true
	}
	for _, o := range queued {
		if !known[o.ID] {
			merged = append(merged, o)
		}
	}

	slices.SortStableFunc(merged, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return merged
}

// encodeComponent escapes s for a URL query value with spaces as %20, which
// mail and chat clients expect
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}
