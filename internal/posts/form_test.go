package posts

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() FormInput {
	return FormInput{
		Title:   "Shipping landing pages",
		Slug:    "shipping-landing-pages",
		Excerpt: strings.Repeat("e", 60),
		Content: "<p>Enough content to pass the minimum.</p>",
		Tags:    "go, cms",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Fields
}

func TestParseForm_Valid(t *testing.T) {
	in := validInput()
	in.Title = "  Shipping landing pages  "
	published := true
	in.IsPublished = &published

	d, err := ParseForm(in)
	require.NoError(t, err)
	assert.Equal(t, "Shipping landing pages", d.Title)
	assert.Equal(t, "shipping-landing-pages", d.Slug)
	assert.Equal(t, []string{"go", "cms"}, d.Tags)
	assert.Nil(t, d.CoverImageURL)
	assert.True(t, d.IsPublished)
}

func TestParseForm_PublishedDefaultsFalse(t *testing.T) {
	d, err := ParseForm(validInput())
	require.NoError(t, err)
	assert.False(t, d.IsPublished)
}

func TestParseForm_ExcerptBounds(t *testing.T) {
	tests := []struct {
		length  int
		wantErr string
	}{
		{39, "Write at least 40 characters"},
		{40, ""},
		{220, ""},
		{221, "Keep the excerpt under 220 characters"},
	}
	for _, tt := range tests {
		in := validInput()
		in.Excerpt = strings.Repeat("x", tt.length)
		_, err := ParseForm(in)
		if tt.wantErr == "" {
			assert.NoError(t, err, "length %d", tt.length)
			continue
		}
		assert.Equal(t, tt.wantErr, fieldErrors(t, err)["excerpt"], "length %d", tt.length)
	}
}

func TestParseForm_ExcerptCountsCharactersNotBytes(t *testing.T) {
	in := validInput()
	in.Excerpt = strings.Repeat("é", 40)
	_, err := ParseForm(in)
	assert.NoError(t, err)
}

func TestParseForm_Slug(t *testing.T) {
	tests := []struct {
		slug  string
		valid bool
	}{
		{"hello", true},
		{"hello-world-2", true},
		{"a1-b2-c3", true},
		{"", false},
		{"Hello", false},
		{"hello--world", false},
		{"-hello", false},
		{"hello-", false},
		{"hello_world", false},
		{"hello world", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			in := validInput()
			in.Slug = tt.slug
			_, err := ParseForm(in)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, "Use lowercase letters, numbers, and dashes", fieldErrors(t, err)["slug"])
		})
	}
}

func TestParseForm_OneMessagePerField(t *testing.T) {
	bad := "not a url"
	_, err := ParseForm(FormInput{Excerpt: "short", CoverImageURL: &bad})
	fields := fieldErrors(t, err)

	assert.Equal(t, map[string]string{
		"title":           "Title is required",
		"slug":            "Use lowercase letters, numbers, and dashes",
		"excerpt":         "Write at least 40 characters",
		"content":         "Content is required",
		"cover_image_url": "Provide a valid URL",
	}, fields)
}

func TestParseForm_CoverImage(t *testing.T) {
	empty := ""
	url := "https://cdn.example.com/covers/a.png"

	in := validInput()
	in.CoverImageURL = &empty
	d, err := ParseForm(in)
	require.NoError(t, err)
	assert.Nil(t, d.CoverImageURL)

	in.CoverImageURL = &url
	d, err = ParseForm(in)
	require.NoError(t, err)
	require.NotNil(t, d.CoverImageURL)
	assert.Equal(t, url, *d.CoverImageURL)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, []string{}, SplitTags(" , ,"))
	assert.Equal(t, []string{"go", "cms", "go"}, SplitTags(" go ,cms,, go "))
}
