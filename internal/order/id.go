package order

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxOrderIDAttempts = 20

var (
	generateRowID   = newRowID
	generateOrderID = newOrderID
	now             = func() time.Time { return time.Now().UTC() }
)

func newRowID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newOrderID() string {
	return fmt.Sprintf("ORDER-%d", 1000+rand.IntN(9000))
}

// uniqueOrderID draws order ids until taken reports a free one.
func uniqueOrderID(taken func(id string) (bool, error)) (string, error) {
	for i := 0; i < maxOrderIDAttempts; i++ {
		id := generateOrderID()
		used, err := taken(id)
		if err != nil {
			return "", err
		}
		if !used {
			return id, nil
		}
	}
	return "", ErrOrderIDExhausted
}

// prepareNew fills identity and defaults on a row about to be stored.
func prepareNew(o Order, orderID string) Order {
	o.ID = generateRowID()
	o.OrderID = orderID
	return FillDefaults(o)
}

// FillDefaults completes a row that lacks optional fields. An existing id is
// kept.
func FillDefaults(o Order) Order {
	if o.ID == "" {
		o.ID = generateRowID()
	}
	o.Quantity = effectiveQuantity(o.Quantity)
	if o.Status == "" {
		o.Status = StatusNew
	}
	if o.Delivery == "" {
		o.Delivery = DeliveryPickup
	}
	if o.Date.IsZero() {
		o.Date = now()
	}
	return o
}
