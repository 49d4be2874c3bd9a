package cart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by the aggregator.
var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	ErrInvalidTable    = errors.New("table is required")
	ErrItemNotFound    = errors.New("item not found in table order")
)

// Publisher is satisfied by *notify.Bus.
type Publisher interface {
	Publish(n notify.Notification) notify.Notification
}

// Product is the menu reference an item was built from.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Item struct {
	ID             uuid.UUID `json:"id"`
	Product        Product   `json:"product"`
	Quantity       int       `json:"quantity"`
	Customizations []string  `json:"customizations"`
	Notes          string    `json:"notes,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Submission is what left the cart when an order was sent to the kitchen.
type Submission struct {
	Table        string              `json:"table"`
	Items        []Item              `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Notification notify.Notification `json:"notification"`
}

// Aggregator accumulates items per table until they are sent to the kitchen.
type Aggregator struct {
	mu     sync.Mutex
	tables map[string][]Item
	pub    Publisher
	now    func() time.Time
	logger *slog.Logger
}

func NewAggregator(pub Publisher, now func() time.Time, logger *slog.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{
		tables: make(map[string][]Item),
		pub:    pub,
		now:    now,
		logger: logger,
	}
}

// AddItem appends item to the table's order and returns it with ID and AddedAt set.
func (a *Aggregator) AddItem(table string, item Item) (Item, error) {
	table, err := normalizeTable(table)
	if err != nil {
		return Item{}, err
	}
	if item.Quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.AddedAt = a.now()
	item.Customizations = append([]string(nil), item.Customizations...)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.tables[table] = append(a.tables[table], item)
	return item, nil
}

// RemoveItem drops the item with itemID. It reports whether anything was removed.
func (a *Aggregator) RemoveItem(table string, itemID uuid.UUID) bool {
	table = strings.TrimSpace(table)

	a.mu.Lock()
	defer a.mu.Unlock()

	items := a.tables[table]
	for i, it := range items {
		if it.ID == itemID {
			a.tables[table] = append(items[:i:i], items[i+1:]...)
			if len(a.tables[table]) == 0 {
				delete(a.tables, table)
			}
			return true
		}
	}
	return false
}

func (a *Aggregator) UpdateQuantity(table string, itemID uuid.UUID, qty int) (Item, error) {
	if qty < 1 {
		return Item{}, ErrInvalidQuantity
	}
	table = strings.TrimSpace(table)

	a.mu.Lock()
	defer a.mu.Unlock()

	for i, it := range a.tables[table] {
		if it.ID == itemID {
			a.tables[table][i].Quantity = qty
			return a.tables[table][i], nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (a *Aggregator) Clear(table string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.tables, strings.TrimSpace(table))
}

// Items returns a copy of the table's order in insertion order.
func (a *Aggregator) Items(table string) []Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyItems(a.tables[strings.TrimSpace(table)])
}

func (a *Aggregator) Total(table string) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return total(a.tables[strings.TrimSpace(table)])
}

// Tables lists tables with a non-empty order, numerically when possible.
func (a *Aggregator) Tables() []string {
	a.mu.Lock()
	out := make([]string, 0, len(a.tables))
	for t := range a.tables {
		out = append(out, t)
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return tableLess(out[i], out[j]) })
	return out
}

// Submit sends the table's order to the kitchen and clears it in one step.
// An empty order is rejected with ErrEmptyOrder and nothing changes.
func (a *Aggregator) Submit(table string, fromRole enum.Role, fromUser string) (*Submission, error) {
	table, err := normalizeTable(table)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	items := a.tables[table]
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	count := 0
	for _, it := range items {
		count += it.Quantity
	}

	n := a.pub.Publish(notify.Notification{
		Type:        enum.NotificationNewOrder,
		Title:       fmt.Sprintf("Nueva orden - Mesa %s", table),
		Message:     fmt.Sprintf("Mesa %s: %d %s", table, count, plural(count, "producto", "productos")),
		Priority:    enum.PriorityHigh,
		FromRole:    fromRole,
		FromUser:    fromUser,
		ToRole:      enum.RoleKitchen,
		TableNumber: table,
	})
	delete(a.tables, table)

	a.logger.Info("order sent to kitchen",
		"table", table,
		"items", count,
		"from_user", fromUser,
		"notification_id", n.ID,
	)

	return &Submission{
		Table:        table,
		Items:        items,
		Total:        total(items),
		Notification: n,
	}, nil
}

// --- Helpers ---

func normalizeTable(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", ErrInvalidTable
	}
	return table, nil
}

func total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func copyItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Customizations = append([]string(nil), it.Customizations...)
		out[i] = it
	}
	return out
}

func tableLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
