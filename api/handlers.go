package api

import "time"

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, maxUploadBytes int64, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		postHandler:   newPostHandler(deps.Posts, maxUploadBytes),
		healthHandler: newHealthHandler(deps.DB, deps.Storage, startupTime),
	}
}
