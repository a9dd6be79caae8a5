package order

// CheckoutInput is one checkout submission: the customer and the cart.
type CheckoutInput struct {
	Name    string         `json:"name" validate:"required,min=2,max=100"`
	Email   string         `json:"email" validate:"required,email"`
	Phone   string         `json:"phone" validate:"required,min=6,max=20"`
	Address string         `json:"address" validate:"max=500"`
	IsCrew  bool           `json:"isCrew"`
	Items   []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

type CheckoutItem struct {
	Color     string   `json:"color" validate:"required"`
	ColorName string   `json:"colorName"`
	Size      string   `json:"size" validate:"required"`
	Delivery  Delivery `json:"delivery" validate:"required,oneof=pickup shipping"`
	Quantity  int      `json:"quantity" validate:"required,min=1"`
	Price     float64  `json:"price" validate:"gte=0"`
}

func (in CheckoutInput) needsAddress() bool {
	for _, it := range in.Items {
		if it.Delivery == DeliveryShipping {
			return true
		}
	}
	return false
}

// toOrders maps the cart to one unsaved row per item.
func toOrders(in CheckoutInput) []Order {
	rows := make([]Order, 0, len(in.Items))
	for _, it := range in.Items {
		rows = append(rows, Order{
			Name:      in.Name,
			Email:     in.Email,
			Phone:     in.Phone,
			Address:   in.Address,
			Color:     it.Color,
			ColorName: it.ColorName,
			Size:      it.Size,
			Delivery:  it.Delivery,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Status:    StatusNew,
			IsCrew:    in.IsCrew,
		})
	}
	return rows
}
