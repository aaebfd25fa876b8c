package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryRepository_SlugUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	d := Draft{Title: "One", Slug: "same", IsPublished: true}

	if _, err := repo.Create(ctx, d, uuid.New()); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := repo.Create(ctx, d, uuid.New()); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("second Create err = %v, want ErrSlugExists", err)
	}
	n, _ := repo.Count(ctx, ListParams{})
	if n != 1 {
		t.Errorf("store holds %d posts, want 1", n)
	}
}

func TestMemoryRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	author := uuid.New()
	editor := uuid.New()

	created, err := repo.Create(ctx, Draft{Title: "Old", Slug: "old-slug"}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, Draft{Title: "Other", Slug: "taken"}, author); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.New(), Draft{Slug: "x"}, editor)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("slug collision", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, Draft{Title: "Old", Slug: "taken"}, editor)
		if !errors.Is(err, ErrSlugExists) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("reports previous slug", func(t *testing.T) {
		rev, err := repo.Update(ctx, created.ID, Draft{Title: "New", Slug: "new-slug", IsPublished: true}, editor)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if rev.PreviousSlug != "old-slug" || rev.WasPublished {
			t.Errorf("got %+v", rev)
		}
		if rev.Post.Slug != "new-slug" || *rev.Post.AuthorID != editor {
			t.Errorf("got post %+v", rev.Post)
		}
		if !rev.Post.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("created_at changed")
		}
		if rev.Post.UpdatedAt.Before(created.UpdatedAt) {
			t.Errorf("updated_at went backwards")
		}
	})
}

func TestMemoryRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	created, err := repo.Create(ctx, Draft{Title: "Gone", Slug: "gone"}, uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	slug, deleted, err := repo.Delete(ctx, created.ID)
	if err != nil || !deleted || slug != "gone" {
		t.Fatalf("first Delete = %q, %v, %v", slug, deleted, err)
	}
	_, deleted, err = repo.Delete(ctx, created.ID)
	if err != nil || deleted {
		t.Fatalf("second Delete = %v, %v", deleted, err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID err = %v", err)
	}
}

func TestMemoryRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seed := []Draft{
		{Title: "Go in production", Slug: "go-prod", Tags: []string{"go", "ops"}, IsPublished: true},
		{Title: "Designing CMS schemas", Slug: "cms-schemas", Tags: []string{"cms"}, IsPublished: true},
		{Title: "GO draft", Slug: "go-draft", Tags: []string{"go"}},
	}
	for _, d := range seed {
		if _, err := repo.Create(ctx, d, uuid.New()); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, _ := repo.List(ctx, ListParams{PublishedOnly: true, Search: "go"})
	if len(got) != 1 || got[0].Slug != "go-prod" {
		t.Errorf("search: got %v", got)
	}
	got, _ = repo.List(ctx, ListParams{PublishedOnly: true, Tag: "cms"})
	if len(got) != 1 || got[0].Slug != "cms-schemas" {
		t.Errorf("tag: got %v", got)
	}
	got, _ = repo.List(ctx, ListParams{Tag: "go"})
	if len(got) != 2 {
		t.Errorf("tag with drafts: got %d", len(got))
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	created, _ := repo.Create(ctx, Draft{Title: "A", Slug: "a", Tags: []string{"x"}}, uuid.New())
	created.Tags[0] = "mutated"

	got, _ := repo.GetByID(ctx, created.ID)
	if got.Tags[0] != "x" {
		t.Errorf("stored post was mutated through a returned value")
	}
}
