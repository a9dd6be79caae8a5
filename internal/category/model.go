package category

type Category struct {
	ID     string   `json:"id"`
	Name   string   `json:"name" validate:"required,max=255"`
	Slug   string   `json:"slug" validate:"max=255"`
	Sizes  []string `json:"sizes"`
	Active bool     `json:"active"`
}
