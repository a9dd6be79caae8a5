package order

import "time"

// Status is free-form; the constants are the values the shop uses.
type Status string

const (
	StatusNew      Status = "nieuw"
	StatusPaid     Status = "betaald"
	StatusOrdered  Status = "besteld"
	StatusShipped  Status = "verzonden"
	StatusPickedUp Status = "afgehaald"
	StatusCanceled Status = "geannuleerd"
)

type Delivery string

const (
	DeliveryPickup   Delivery = "pickup"
	DeliveryShipping Delivery = "shipping"
)

// Order is one line item of a checkout. Rows placed together share OrderID
// and the customer fields.
type Order struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"orderId"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Address             string    `json:"address"`
	Color               string    `json:"color"`
	ColorName           string    `json:"colorName,omitempty"`
	Size                string    `json:"size"`
	Delivery            Delivery  `json:"delivery"`
	Quantity            int       `json:"quantity"`
	Price               float64   `json:"price"`
	Status              Status    `json:"status"`
	Date                time.Time `json:"date"`
	IsCrew              bool      `json:"isCrew"`
	OrderedFromSupplier bool      `json:"orderedFromSupplier"`
	TrackingNumber      string    `json:"trackingNumber,omitempty"`
	TrackingSent        bool      `json:"trackingSent"`
}

// LineTotal is price times quantity, counting a missing quantity as 1.
func (o Order) LineTotal() float64 {
	return o.Price * float64(effectiveQuantity(o.Quantity))
}

// Summary groups the rows of one checkout.
type Summary struct {
	OrderID string  `json:"orderId"`
	Items   []Order `json:"items"`
	Total   float64 `json:"total"`
}

func effectiveQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

func sumTotal(orders []Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.LineTotal()
	}
	return total
}
