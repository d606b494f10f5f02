package enum

// ── Order state machine (CHECK constrained in DB) ──

const (
	OrderStatusPending  = "pending"
	OrderStatusLive     = "live"
	OrderStatusDone     = "done"
	OrderStatusCanceled = "canceled"
	OrderStatusPaid     = "paid"
)

const (
	OrderTypePickup   = "pickup"
	OrderTypeHall     = "hall"
	OrderTypeExternal = "external"
)

// ── Realtime event names (wire contract with the staff displays) ──

const (
	EventOrderNew      = "order:new"
	EventOrderAccepted = "order:accepted"
	EventOrderDone     = "order:done"
	EventOrderCanceled = "order:canceled"
	EventOrderPaid     = "order:paid"
)

// ── User roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin = "admin"
	UserRoleHall  = "hall"
)
