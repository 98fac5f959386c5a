package places

// Location is one business search result surfaced to the search UI.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	PlaceID string `json:"placeId"`
}

// Geometry holds the coordinates reported for a place.
type Geometry struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// PlaceDetails is the reshaped detail record for a selected business.
type PlaceDetails struct {
	PlaceID        string    `json:"placeId"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone,omitempty"`
	Website        string    `json:"website,omitempty"`
	Rating         float64   `json:"rating,omitempty"`
	RatingCount    int       `json:"ratingCount,omitempty"`
	BusinessStatus string    `json:"businessStatus,omitempty"`
	Types          []string  `json:"types,omitempty"`
	Geometry       *Geometry `json:"geometry,omitempty"`
	GoogleURL      string    `json:"googleUrl"`
	PhotoURLs      []string  `json:"photos,omitempty"`
}
