package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/services"
	"github.com/rpupo63/blog-admin-backend/storage"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"
	contentTypeForm      = "application/x-www-form-urlencoded"

	coverImageField = "cover_img"
)

var acceptedContentTypes = []string{contentTypeJSON, contentTypeMultipart, contentTypeForm}

// postRequest is the JSON body of the create and update endpoints.
// A missing "tags" key leaves Tags nil.
type postRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// decodePostInput reads a post from a JSON, urlencoded or multipart body.
// Only multipart bodies can carry a cover image.
func decodePostInput(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.PostInput, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = contentTypeJSON
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	switch mediaType {
	case contentTypeJSON:
		return decodeJSONPost(r, maxBytes)
	case contentTypeMultipart, contentTypeForm:
		return decodeFormPost(r, mediaType, maxBytes)
	default:
		return services.PostInput{}, errs.NewUnsupportedMediaTypeError(mediaType, acceptedContentTypes)
	}
}

func decodeJSONPost(r *http.Request, maxBytes int64) (services.PostInput, error) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isMaxBytesError(err) {
			return services.PostInput{}, errs.NewMaxBodySizeExceededError(maxBytes)
		}
		return services.PostInput{}, errs.NewMalformedPayloadError("post", err)
	}

	return services.PostInput{
		Title:   req.Title,
		Content: req.Content,
		TagIDs:  parseTagIDs(req.Tags),
	}, nil
}

func decodeFormPost(r *http.Request, mediaType string, maxBytes int64) (services.PostInput, error) {
	var err error
	if mediaType == contentTypeMultipart {
		err = r.ParseMultipartForm(maxBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		if isMaxBytesError(err) {
			return services.PostInput{}, errs.NewMaxBodySizeExceededError(maxBytes)
		}
		return services.PostInput{}, errs.NewMalformedPayloadError("form", err)
	}

	in := services.PostInput{
		Title:   r.PostForm.Get("title"),
		Content: r.PostForm.Get("content"),
	}

	for _, key := range []string{"tags", "tags[]"} {
		if values, ok := r.PostForm[key]; ok {
			if in.TagIDs == nil {
				in.TagIDs = []uuid.UUID{}
			}
			in.TagIDs = append(in.TagIDs, parseTagIDs(values)...)
		}
	}

	if mediaType == contentTypeMultipart {
		defer r.MultipartForm.RemoveAll()

		cover, err := readCoverImage(r)
		if err != nil {
			return services.PostInput{}, err
		}
		in.CoverImage = cover
	}

	return in, nil
}

func readCoverImage(r *http.Request) (*storage.Upload, error) {
	file, header, err := r.FormFile(coverImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewMalformedPayloadError(coverImageField, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errs.NewMalformedPayloadError(coverImageField, err)
	}

	return &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// parseTagIDs keeps nil for a missing list. Values that are not uuids become
// uuid.Nil, which never matches a tag and so fails validation.
func parseTagIDs(values []string) []uuid.UUID {
	if values == nil {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		id, err := uuid.Parse(value)
		if err != nil {
			id = uuid.Nil
		}
		ids = append(ids, id)
	}
	return ids
}

func isMaxBytesError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
