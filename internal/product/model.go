package product

import "time"

type Color struct {
	Name string `json:"name" validate:"required"`
	Hex  string `json:"hex"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=255"`
	Slug        string    `json:"slug" validate:"max=255"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gte=0"`
	CategoryID  *string   `json:"categoryId"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	Images      []string  `json:"images"`
	Sizes       []string  `json:"sizes"`
	Colors      []Color   `json:"colors" validate:"dive"`
}

type ListOptions struct {
	CategoryID string
	OnlyActive bool
}

func (o ListOptions) match(p Product) bool {
	if o.OnlyActive && !p.Active {
		return false
	}
	if o.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != o.CategoryID) {
		return false
	}
	return true
}

func (p *Product) normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []Color{}
	}
}
