package source

// RawProduct is one unprocessed listing entry exactly as the feed presents
// it. Prices arrive as strings; the transformer owns coercion and validation.
type RawProduct struct {
	ID               string              `json:"id" validate:"required"`
	Name             string              `json:"name" validate:"required"`
	Category         string              `json:"category" validate:"required"`
	URL              string              `json:"url" validate:"required,url"`
	Price            string              `json:"price" validate:"required"`
	OriginalPrice    string              `json:"original_price,omitempty"`
	Currency         string              `json:"currency,omitempty"`
	Description      string              `json:"description,omitempty"`
	Materials        []string            `json:"materials,omitempty"`
	CompositionText  string              `json:"composition,omitempty"`
	Sizes            []string            `json:"sizes,omitempty"`
	SizeAvailability map[string]bool     `json:"size_availability,omitempty"`
	Colors           []string            `json:"colors,omitempty"`
	Images           []string            `json:"images,omitempty"`
	ColorImages      map[string][]string `json:"color_images,omitempty"`
	ColorSizes       map[string][]string `json:"color_sizes,omitempty"`
}
