package entity

import "time"

// Listing is a single classified-ad record. ID is assigned by the store on
// creation and never changes afterwards.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Excerpt     string    `json:"excerpt"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	FacebookURL string    `json:"facebookUrl"`
	Location    string    `json:"location"`
	SortOrder   int       `json:"sortOrder"`
	PostedDate  time.Time `json:"postedDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	DefaultStatus   = "In Stock"
	DefaultLocation = "Colorado Springs, CO"
)
