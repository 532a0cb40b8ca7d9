package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/cortilabs/cuisine/internal/events"
)

// InsufficientStockError reports a reservation that exceeds the available
// stock, identifying the item by name so callers can render a useful message.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ItemName)
}

// Ledger owns every mutation of a menu item's available quantity.
// Reservations decrement stock when an order line is placed; releases
// increment it back when the line is removed, cancelled, or the service is
// reset. Every applied mutation emits an item-updated event carrying the
// updated item.
type Ledger struct {
	items    MenuItemRepo
	notifier events.Notifier
	logger   apt.Logger
}

func NewLedger(items MenuItemRepo, notifier events.Notifier, logger apt.Logger) *Ledger {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Ledger{
		items:    items,
		notifier: notifier,
		logger:   logger,
	}
}

// Reserve atomically decrements the item's available quantity by qty.
// It fails with ErrNotFound when the item does not exist and with an
// *InsufficientStockError when qty exceeds the available stock; the stock is
// left untouched in both cases.
func (l *Ledger) Reserve(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error) {
	item, err := l.items.ReserveStock(ctx, id, qty)
	if errors.Is(err, ErrInsufficientStock) {
		current, getErr := l.items.Get(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("cannot load item after failed reservation: %w", getErr)
		}
		return nil, &InsufficientStockError{
			ItemID:    id,
			ItemName:  current.Name,
			Requested: qty,
			Available: current.QuantityAvailable,
		}
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("stock reserved", "menu_item_id", id.String(), "quantity", qty, "remaining", item.QuantityAvailable)
	if l.notifier != nil {
		l.notifier.Broadcast(ctx, events.TopicItemUpdated, item)
	}
	return item, nil
}

// Release increments the item's available quantity by qty. The increment is
// unconditional: no upper bound is enforced. It fails with ErrNotFound when
// the item does not exist.
func (l *Ledger) Release(ctx context.Context, id uuid.UUID, qty int) (*MenuItem, error) {
	item, err := l.items.ReleaseStock(ctx, id, qty)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("stock released", "menu_item_id", id.String(), "quantity", qty, "available", item.QuantityAvailable)
	if l.notifier != nil {
		l.notifier.Broadcast(ctx, events.TopicItemUpdated, item)
	}
	return item, nil
}
