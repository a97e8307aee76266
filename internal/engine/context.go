package engine

import (
	"fmt"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// Compile-time interface check.
var _ ports.ExecutionContext = (*execContext)(nil)

// AccountState holds the run-wide risk parameters a strategy can adjust
// through the futures-style account controls. They are consumed by the
// margin model and carried into the report; they never touch accounting
// directly.
type AccountState struct {
	Leverage   int
	MarginMode ports.MarginMode
}

// orderBook is the run's set of not-yet-terminal orders. New intents from
// the current bar and resting limit/stop orders from earlier bars live in
// the same slice, kept in submission (id) order. Owned by the run's single
// goroutine.
type orderBook struct {
	nextID int64
	orders []*domain.Order
}

// add assigns the next monotonic id and appends the order.
func (b *orderBook) add(o *domain.Order) {
	b.nextID++
	o.ID = b.nextID
	b.orders = append(b.orders, o)
}

// open returns the live view of the book, in submission order.
func (b *orderBook) open() []*domain.Order {
	return b.orders
}

// cancel marks a still-open order cancelled. Unknown or already-terminal
// ids are ignored: cancellation is idempotent.
func (b *orderBook) cancel(id int64) {
	for _, o := range b.orders {
		if o.ID == id && o.Open() {
			o.Status = domain.StatusCancelled
			return
		}
	}
}

// cancelAll clears the pending queue: every open order becomes cancelled.
func (b *orderBook) cancelAll() {
	for _, o := range b.orders {
		if o.Open() {
			o.Status = domain.StatusCancelled
		}
	}
}

// prune drops terminal orders after a bar has been matched.
func (b *orderBook) prune() {
	kept := b.orders[:0]
	for _, o := range b.orders {
		if o.Open() {
			kept = append(kept, o)
		}
	}
	// Zero the tail so pruned orders don't linger past the bar.
	for i := len(kept); i < len(b.orders); i++ {
		b.orders[i] = nil
	}
	b.orders = kept
}

// execContext is the bar-scoped ExecutionContext handed to Strategy.OnBar.
// It writes order intents into the run's book; it is discarded when the
// bar is done, so nothing aliases across bars except the book itself.
type execContext struct {
	book     *orderBook
	account  *AccountState
	position float64 // portfolio position at the start of the bar
	now      int64   // current bar timestamp
}

func newExecContext(book *orderBook, account *AccountState, position float64, now int64) *execContext {
	return &execContext{book: book, account: account, position: position, now: now}
}

// submit validates parameters and appends a pending order to the book.
func (c *execContext) submit(side domain.Side, typ domain.OrderType, size, price, stopPrice float64) error {
	if size <= 0 {
		return fmt.Errorf("engine.submit: %w: size %.8f must be positive", domain.ErrInvalidOrder, size)
	}
	switch typ {
	case domain.Limit:
		if price <= 0 {
			return fmt.Errorf("engine.submit: %w: limit price %.8f must be positive", domain.ErrInvalidOrder, price)
		}
	case domain.Stop:
		if stopPrice <= 0 {
			return fmt.Errorf("engine.submit: %w: stop price %.8f must be positive", domain.ErrInvalidOrder, stopPrice)
		}
	case domain.StopLimit:
		if price <= 0 || stopPrice <= 0 {
			return fmt.Errorf("engine.submit: %w: stop %.8f / limit %.8f must be positive", domain.ErrInvalidOrder, stopPrice, price)
		}
	}

	c.book.add(&domain.Order{
		Side:      side,
		Type:      typ,
		Price:     price,
		StopPrice: stopPrice,
		Size:      size,
		Remaining: size,
		Timestamp: c.now,
		Status:    domain.StatusPending,
	})
	return nil
}

func (c *execContext) MarketBuy(size float64) error {
	return c.submit(domain.Buy, domain.Market, size, 0, 0)
}

func (c *execContext) MarketSell(size float64) error {
	return c.submit(domain.Sell, domain.Market, size, 0, 0)
}

func (c *execContext) LimitBuy(size, price float64) error {
	return c.submit(domain.Buy, domain.Limit, size, price, 0)
}

func (c *execContext) LimitSell(size, price float64) error {
	return c.submit(domain.Sell, domain.Limit, size, price, 0)
}

func (c *execContext) StopBuy(size, stopPrice float64) error {
	return c.submit(domain.Buy, domain.Stop, size, 0, stopPrice)
}

func (c *execContext) StopSell(size, stopPrice float64) error {
	return c.submit(domain.Sell, domain.Stop, size, 0, stopPrice)
}

func (c *execContext) StopLimitBuy(size, stopPrice, limitPrice float64) error {
	return c.submit(domain.Buy, domain.StopLimit, size, limitPrice, stopPrice)
}

func (c *execContext) StopLimitSell(size, stopPrice, limitPrice float64) error {
	return c.submit(domain.Sell, domain.StopLimit, size, limitPrice, stopPrice)
}

// ClosePosition flattens whatever side is open. No-op when flat.
func (c *execContext) ClosePosition() error {
	switch {
	case c.position > 0:
		return c.MarketSell(c.position)
	case c.position < 0:
		return c.MarketBuy(-c.position)
	}
	return nil
}

// CloseLong flattens a long position. No-op when flat or short.
func (c *execContext) CloseLong() error {
	if c.position <= 0 {
		return nil
	}
	return c.MarketSell(c.position)
}

// CloseShort flattens a short position. No-op when flat or long.
func (c *execContext) CloseShort() error {
	if c.position >= 0 {
		return nil
	}
	return c.MarketBuy(-c.position)
}

// CloseAmount reduces the open position by size with a market order. The
// size is clamped to the open amount, so the helper can only reduce, never
// flip the position. No-op when flat.
func (c *execContext) CloseAmount(size float64) error {
	if size <= 0 {
		return fmt.Errorf("engine.CloseAmount: %w: size %.8f must be positive", domain.ErrInvalidOrder, size)
	}
	switch {
	case c.position > 0:
		if size > c.position {
			size = c.position
		}
		return c.MarketSell(size)
	case c.position < 0:
		if size > -c.position {
			size = -c.position
		}
		return c.MarketBuy(size)
	}
	return nil
}

func (c *execContext) CancelOrder(id int64) error {
	c.book.cancel(id)
	return nil
}

func (c *execContext) CancelAll() {
	c.book.cancelAll()
}

func (c *execContext) SetLeverage(leverage int) error {
	if leverage < 1 {
		return fmt.Errorf("engine.SetLeverage: %w: leverage %d must be ≥ 1", domain.ErrConfiguration, leverage)
	}
	c.account.Leverage = leverage
	return nil
}

func (c *execContext) SetCrossMode() {
	c.account.MarginMode = ports.MarginCross
}

func (c *execContext) SetIsolatedMode() {
	c.account.MarginMode = ports.MarginIsolated
}
