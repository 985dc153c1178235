package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rpupo63/blog-admin-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	postsPath = "/admin/posts"

	defaultMaxUploadBytes int64 = 10 << 20
)

// PostService is the post administration use-case layer
type PostService interface {
	List(ctx context.Context) ([]*models.Post, error)
	Show(ctx context.Context, slug string) (*models.Post, error)
	CreateFormData(ctx context.Context) (*services.CreateForm, error)
	EditFormData(ctx context.Context, slug string) (*services.EditForm, error)
	Create(ctx context.Context, userID string, in services.PostInput) (*models.Post, error)
	Update(ctx context.Context, slug string, in services.PostInput) (*models.Post, error)
	Destroy(ctx context.Context, slug string) error
}

type postHandler struct {
	responder      Responder
	logger         zerolog.Logger
	posts          PostService
	maxUploadBytes int64
}

func newPostHandler(posts PostService, maxUploadBytes int64) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	return postHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		posts:          posts,
		maxUploadBytes: maxUploadBytes,
	}
}

func postPath(slug string) string {
	return postsPath + "/" + url.PathEscape(slug)
}

// listPosts returns every post with its tags, newest first
// @Router /admin/posts [get]
func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, PostCollection{Posts: posts, Total: len(posts)})
	}
}

// createForm returns the data needed to render the create form
// @Router /admin/posts/create [get]
func (h postHandler) createForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.posts.CreateFormData(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, form)
	}
}

// storePost creates a post owned by the authenticated user and redirects to it.
// The body may be JSON, urlencoded or multipart; "tags" may repeat in forms.
// @Router /admin/posts [post]
func (h postHandler) storePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		in, err := decodePostInput(w, r, h.maxUploadBytes)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to decode post request body")
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Create(r.Context(), userID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteRedirect(w, postPath(post.Slug), PostResponse{Post: post})
	}
}

// showPost returns a single post by slug
// @Router /admin/posts/{slug} [get]
func (h postHandler) showPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.posts.Show(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, PostResponse{Post: post})
	}
}

// editForm returns the post and all tags for the edit form
// @Router /admin/posts/{slug}/edit [get]
func (h postHandler) editForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.posts.EditFormData(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, form)
	}
}

// updatePost replaces the post's fields and tags, then redirects to the
// post under its possibly new slug. Omitting "tags" clears them.
// @Router /admin/posts/{slug} [put]
// @Router /admin/posts/{slug} [patch]
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodePostInput(w, r, h.maxUploadBytes)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to decode post request body")
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Update(r.Context(), chi.URLParam(r, "slug"), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteRedirect(w, postPath(post.Slug), PostResponse{Post: post})
	}
}

// destroyPost deletes the post and redirects to the listing
// @Router /admin/posts/{slug} [delete]
func (h postHandler) destroyPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if err := h.posts.Destroy(r.Context(), slug); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteRedirect(w, postsPath, map[string]string{
			"status":  "success",
			"message": "post deleted successfully",
		})
	}
}
