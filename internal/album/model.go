package album

import "time"

type Album struct {
	ID         string    `json:"id"`
	Title      string    `json:"title" validate:"required,max=255"`
	Date       time.Time `json:"date" validate:"required"`
	CoverImage string    `json:"coverImage" validate:"max=500"`
	Images     []string  `json:"images"`
	Active     bool      `json:"active"`
}
