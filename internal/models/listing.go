package models

// ListingRecord is one scraped listing as shown to the caller
type ListingRecord struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Year     string `json:"year,omitempty"`
	Mileage  string `json:"mileage,omitempty"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Location string `json:"location,omitempty"`
	Image    string `json:"image,omitempty"`
	// Link is the search results page the record was extracted from
	Link   string `json:"link"`
	Source Source `json:"source"`
}

// IsComplete reports whether the record carries both a title and a price
func (r ListingRecord) IsComplete() bool {
	return r.Title != "" && r.Price != ""
}
