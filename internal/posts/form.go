package posts

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jeremyjsx/creativelab/internal/validate"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validate.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// FormInput is the raw post editor submission.
type FormInput struct {
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Excerpt       string  `json:"excerpt"`
	Content       string  `json:"content"`
	CoverImageURL *string `json:"cover_image_url"`
	Tags          string  `json:"tags"`
	IsPublished   *bool   `json:"is_published"`
}

type formFields struct {
	Title         string `json:"title" validate:"required"`
	Slug          string `json:"slug" validate:"slug"`
	Excerpt       string `json:"excerpt" validate:"min=40,max=220"`
	Content       string `json:"content" validate:"min=20"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

var fieldMessages = map[string]string{
	"title.required":      "Title is required",
	"slug.slug":           "Use lowercase letters, numbers, and dashes",
	"excerpt.min":         "Write at least 40 characters",
	"excerpt.max":         "Keep the excerpt under 220 characters",
	"content.min":         "Content is required",
	"cover_image_url.url": "Provide a valid URL",
}

// ParseForm validates a submission and normalizes it into a Draft.
// On failure the error is a *ValidationError with at most one message per field.
func ParseForm(in FormInput) (Draft, error) {
	fields := formFields{
		Title:   strings.TrimSpace(in.Title),
		Slug:    strings.TrimSpace(in.Slug),
		Excerpt: strings.TrimSpace(in.Excerpt),
		Content: strings.TrimSpace(in.Content),
	}
	if in.CoverImageURL != nil {
		fields.CoverImageURL = strings.TrimSpace(*in.CoverImageURL)
	}
	if err := validate.Struct(formValidator, fields, fieldMessages); err != nil {
		return Draft{}, err
	}

	d := Draft{
		Title:   fields.Title,
		Slug:    fields.Slug,
		Excerpt: fields.Excerpt,
		Content: fields.Content,
		Tags:    SplitTags(in.Tags),
	}
	if fields.CoverImageURL != "" {
		cover := fields.CoverImageURL
		d.CoverImageURL = &cover
	}
	if in.IsPublished != nil {
		d.IsPublished = *in.IsPublished
	}
	return d, nil
}

// SplitTags splits comma separated labels, keeping order and duplicates.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
