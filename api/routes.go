package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the public health check and the authenticated admin routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.check())

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/posts", handlers.postHandler.listPosts())
		r.Get("/posts/create", handlers.postHandler.createForm())
		r.Post("/posts", handlers.postHandler.storePost())
		r.Get("/posts/{slug}", handlers.postHandler.showPost())
		r.Get("/posts/{slug}/edit", handlers.postHandler.editForm())
		r.Put("/posts/{slug}", handlers.postHandler.updatePost())
		r.Patch("/posts/{slug}", handlers.postHandler.updatePost())
		r.Delete("/posts/{slug}", handlers.postHandler.destroyPost())
	})
}
