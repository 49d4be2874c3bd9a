package enum

import "errors"

// ErrUnknownRole is returned by ParseRole for strings outside the five floor roles.
var ErrUnknownRole = errors.New("unknown role")

// Role identifies which screen a user works on and where notifications are routed.
type Role string

const (
	RoleWaiter  Role = "mesero"
	RoleKitchen Role = "cocina"
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cajero"
	RoleCaptain Role = "capitan"
)

var roles = []Role{RoleWaiter, RoleKitchen, RoleAdmin, RoleCashier, RoleCaptain}

// Roles returns the known roles in a stable order.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// ParseRole validates s against the known roles.
func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// ── Notifications ──

type NotificationType string

const (
	NotificationNewOrder    NotificationType = "new_order"
	NotificationBillRequest NotificationType = "bill_request"
	NotificationDelay       NotificationType = "delay"
	NotificationReady       NotificationType = "ready"
	NotificationCallWaiter  NotificationType = "call_waiter"
	NotificationAlert       NotificationType = "alert"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationNewOrder, NotificationBillRequest, NotificationDelay,
		NotificationReady, NotificationCallWaiter, NotificationAlert:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// ── Cash ──

type CountMethod string

const (
	CountManual   CountMethod = "manual"
	CountDetailed CountMethod = "detailed"
)
