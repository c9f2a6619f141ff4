package domain

// List of possible courier statuses
const (
	StatusOffline     CourierStatus = "offline"
	StatusAvailable   CourierStatus = "available"
	StatusUnavailable CourierStatus = "unavailable"
)

// List of order lifecycle statuses
const (
	OrderPending   OrderStatus = "pending"
	OrderAssigned  OrderStatus = "assigned"
	OrderDelivered OrderStatus = "delivered"
)

var allowedStatuses = [...]CourierStatus{
	StatusOffline, StatusAvailable, StatusUnavailable,
}

// orderTransitions lists the single allowed successor of each order status.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderPending:  OrderAssigned,
	OrderAssigned: OrderDelivered,
}

// Valid checks if the CourierStatus is valid
func (s CourierStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAssigned, OrderDelivered:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Transitions are monotonic: pending -> assigned -> delivered.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	want, ok := orderTransitions[s]
	return ok && want == next
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	_, ok := orderTransitions[s]
	return !ok
}
