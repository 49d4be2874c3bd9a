// Package panel maps each floor role to the data its screen shows.
package panel

import (
	"errors"

	"github.com/comanda-pos/api/internal/cart"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/shopspring/decimal"
)

var ErrNoPanel = errors.New("no panel for role")

// Notifications is satisfied by *notify.Bus.
type Notifications interface {
	ListFor(role enum.Role, user string, unreadOnly bool) []notify.Notification
	UnreadCountFor(role enum.Role, user string) int
	All() []notify.Notification
}

// Tables is satisfied by *cart.Aggregator.
type Tables interface {
	Tables() []string
	Items(table string) []cart.Item
	Total(table string) decimal.Decimal
}

type Identity struct {
	Role enum.Role
	User string
}

type TableSummary struct {
	Table string          `json:"table"`
	Items int             `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type View struct {
	Role          enum.Role             `json:"role"`
	User          string                `json:"user"`
	Unread        int                   `json:"unread"`
	Notifications []notify.Notification `json:"notifications"`
	Tables        []TableSummary        `json:"tables,omitempty"`
	UnreadByRole  map[enum.Role]int     `json:"unread_by_role,omitempty"`
	Total         int                   `json:"total_notifications,omitempty"`
}

type Panel interface {
	Build(id Identity) View
}

// Registry dispatches on role. There is exactly one panel per role.
type Registry struct {
	panels map[enum.Role]Panel
}

func NewRegistry(bus Notifications, tables Tables) *Registry {
	return &Registry{panels: map[enum.Role]Panel{
		enum.RoleWaiter: waiterPanel{bus: bus, tables: tables},
		enum.RoleKitchen: filterPanel{bus: bus, types: []enum.NotificationType{
			enum.NotificationNewOrder, enum.NotificationDelay,
		}},
		enum.RoleCashier: filterPanel{bus: bus, types: []enum.NotificationType{
			enum.NotificationBillRequest,
		}},
		enum.RoleCaptain: filterPanel{bus: bus, types: []enum.NotificationType{
			enum.NotificationDelay, enum.NotificationAlert, enum.NotificationCallWaiter,
		}},
		enum.RoleAdmin: adminPanel{bus: bus},
	}}
}

func (r *Registry) Build(id Identity) (View, error) {
	p, ok := r.panels[id.Role]
	if !ok {
		return View{}, ErrNoPanel
	}
	return p.Build(id), nil
}

func baseView(bus Notifications, id Identity) View {
	return View{
		Role:   id.Role,
		User:   id.User,
		Unread: bus.UnreadCountFor(id.Role, id.User),
	}
}

type waiterPanel struct {
	bus    Notifications
	tables Tables
}

func (p waiterPanel) Build(id Identity) View {
	v := baseView(p.bus, id)
	v.Notifications = p.bus.ListFor(id.Role, id.User, true)
	for _, t := range p.tables.Tables() {
		count := 0
		for _, it := range p.tables.Items(t) {
			count += it.Quantity
		}
		v.Tables = append(v.Tables, TableSummary{Table: t, Items: count, Total: p.tables.Total(t)})
	}
	return v
}

// filterPanel shows the role's unread notifications of the given types.
type filterPanel struct {
	bus   Notifications
	types []enum.NotificationType
}

func (p filterPanel) Build(id Identity) View {
	v := baseView(p.bus, id)
	v.Notifications = []notify.Notification{}
	for _, n := range p.bus.ListFor(id.Role, id.User, true) {
		for _, t := range p.types {
			if n.Type == t {
				v.Notifications = append(v.Notifications, n)
				break
			}
		}
	}
	return v
}

// adminPanel counts notifications nobody has read yet, per target role.
type adminPanel struct {
	bus Notifications
}

func (p adminPanel) Build(id Identity) View {
	v := baseView(p.bus, id)
	all := p.bus.All()

	v.Total = len(all)
	v.UnreadByRole = make(map[enum.Role]int)
	for _, r := range enum.Roles() {
		v.UnreadByRole[r] = 0
	}
	for _, n := range all {
		if len(n.ReadBy) == 0 {
			v.UnreadByRole[n.ToRole]++
		}
	}
	v.Notifications = p.bus.ListFor(id.Role, id.User, true)
	return v
}
