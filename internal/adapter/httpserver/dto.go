package httpserver

import (
	"time"

	"github.com/unhinged-listings/listing-service/internal/entity"
	"github.com/unhinged-listings/listing-service/internal/usecase"
)

// listingResponse is the wire shape of a listing. Field names follow the
// frontend's camelCase contract.
type listingResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Excerpt     string   `json:"excerpt"`
	Price       float64  `json:"price"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	FacebookURL string   `json:"facebookUrl"`
	Location    string   `json:"location"`
	SortOrder   int      `json:"sortOrder"`
	PostedDate  string   `json:"postedDate"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toListingResponse(l *entity.Listing) listingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Excerpt:     l.Excerpt,
		Price:       l.Price,
		Status:      l.Status,
		Category:    l.Category,
		Images:      images,
		FacebookURL: l.FacebookURL,
		Location:    l.Location,
		SortOrder:   l.SortOrder,
		PostedDate:  l.PostedDate.UTC().Format(time.RFC3339),
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toListingResponses(listings []*entity.Listing) []listingResponse {
	out := make([]listingResponse, len(listings))
	for i, l := range listings {
		out[i] = toListingResponse(l)
	}
	return out
}

// createListingRequest uses a pointer for price so a missing field is
// distinguishable from an explicit zero.
type createListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Excerpt     string   `json:"excerpt"`
	Price       *float64 `json:"price"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	FacebookURL string   `json:"facebookUrl"`
	Location    string   `json:"location"`
	PostedDate  string   `json:"postedDate"`
}

func (req createListingRequest) toInput() usecase.CreateListingInput {
	input := usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Excerpt:     req.Excerpt,
		Status:      req.Status,
		Category:    req.Category,
		Images:      req.Images,
		FacebookURL: req.FacebookURL,
		Location:    req.Location,
	}
	if req.Price != nil {
		input.Price = *req.Price
	}
	if req.PostedDate != "" {
		// Unparseable dates fall back to the server clock, matching the
		// permissive behavior the frontend relies on.
		if t, err := time.Parse(time.RFC3339, req.PostedDate); err == nil {
			input.PostedDate = t
		} else if t, err := time.Parse("2006-01-02", req.PostedDate); err == nil {
			input.PostedDate = t
		}
	}
	return input
}

type updateListingRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Excerpt     *string   `json:"excerpt"`
	Price       *float64  `json:"price"`
	Status      *string   `json:"status"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
	FacebookURL *string   `json:"facebookUrl"`
	Location    *string   `json:"location"`
}

func (req updateListingRequest) toInput() usecase.UpdateListingInput {
	return usecase.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Excerpt:     req.Excerpt,
		Price:       req.Price,
		Status:      req.Status,
		Category:    req.Category,
		Images:      req.Images,
		FacebookURL: req.FacebookURL,
		Location:    req.Location,
	}
}

type verifyRequest struct {
	Password string `json:"password"`
}

type reorderRequest struct {
	Order []string `json:"order"`
}

type okResponse struct {
	OK      bool   `json:"ok"`
	Deleted string `json:"deleted,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
