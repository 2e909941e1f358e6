package policy

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Order selects how ListMainConnections sorts its result.
type Order string

// Order constants. Higher priority values are more important.
const (
	OrderOldest       Order = "O_OLDEST"
	OrderNewest       Order = "O_NEWEST"
	OrderHighPriority Order = "O_HIGH_PRIORITY"
	OrderLowPriority  Order = "O_LOW_PRIORITY"
)

// ParseOrder accepts the O_ constants with or without prefix, any case.
// An empty string means OrderOldest.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return OrderOldest, nil
	}
	norm := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(norm, "O_") {
		norm = "O_" + norm
	}
	switch o := Order(norm); o {
	case OrderOldest, OrderNewest, OrderHighPriority, OrderLowPriority:
		return o, nil
	}
	return "", fmt.Errorf("%w: order %q", ErrInvalidParam, s)
}

// SortConnections orders conns, which must be oldest first, in place.
// Priority orders are stable so equal priorities keep their age order.
func SortConnections(conns []ConnectionInfo, order Order) {
	switch order {
	case OrderNewest:
		slices.Reverse(conns)
	case OrderHighPriority:
		sort.SliceStable(conns, func(i, j int) bool { return conns[i].Priority > conns[j].Priority })
	case OrderLowPriority:
		sort.SliceStable(conns, func(i, j int) bool { return conns[i].Priority < conns[j].Priority })
	}
}
