package api

import "github.com/rpupo63/blog-admin-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	postHandler   postHandler
	healthHandler healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string            `json:"error"`
	Status  string            `json:"status"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
	Cause   string            `json:"cause,omitempty"`
}

// PostResponse wraps a single post
type PostResponse struct {
	Post *models.Post `json:"post"`
}

// PostCollection is the listing response, newest post first
type PostCollection struct {
	Posts []*models.Post `json:"posts"`
	Total int            `json:"total"`
}
