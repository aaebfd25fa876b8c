package posts

import (
	"errors"

	"github.com/jeremyjsx/creativelab/internal/validate"
)

var (
	ErrNotFound   = errors.New("post not found")
	ErrSlugExists = errors.New("slug already exists")
)

// ValidationError carries one message per offending form field.
type ValidationError = validate.Error
