package services

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// postRules carries the struct-level rules shared by create and update
type postRules struct {
	Title   string `json:"title" validate:"required,min=10"`
	Content string `json:"content" validate:"required,min=10"`
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid.", fe.Field())
	}
}

// IsImage reports whether the sniffed content of file is an image
func IsImage(file storage.Upload) bool {
	if file.Size() == 0 {
		return false
	}
	return strings.HasPrefix(mimetype.Detect(file.Data).String(), "image/")
}

// validateInput checks in before any write happens. Field failures are
// collected into a single ValidationError; store failures are returned as is.
func (s *PostService) validateInput(ctx context.Context, in PostInput, allowCover bool) error {
	fields := make(map[string]string)

	if err := validate.Struct(postRules{Title: in.Title, Content: in.Content}); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate post: %w", err)
		}
		for _, fe := range validationErrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = ruleMessage(fe)
			}
		}
	}

	if len(in.TagIDs) > 0 {
		ok, err := s.tagsExist(ctx, in.TagIDs)
		if err != nil {
			return err
		}
		if !ok {
			fields["tags"] = "The selected tags is invalid."
		}
	}

	if allowCover && in.CoverImage != nil && !IsImage(*in.CoverImage) {
		fields["cover_img"] = "The cover_img must be an image."
	}

	if len(fields) > 0 {
		return errs.NewValidationError(fields)
	}
	return nil
}

func (s *PostService) tagsExist(ctx context.Context, ids []uuid.UUID) (bool, error) {
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return false, nil
		}
		unique[id] = struct{}{}
	}
	wanted := make([]uuid.UUID, 0, len(unique))
	for id := range unique {
		wanted = append(wanted, id)
	}

	found, err := s.tags.FindByIDs(ctx, wanted)
	if err != nil {
		return false, err
	}
	return len(found) == len(wanted), nil
}
