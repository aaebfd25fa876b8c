package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var _ Repository = (*postgresRepository)(nil)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(sqlDB *sql.DB) Repository {
	return &postgresRepository{db: sqlDB}
}

func columns(alias string) string {
	cols := []string{
		"id", "title", "slug", "COALESCE(%sexcerpt, '')", "COALESCE(%scontent, '')",
		"cover_image_url", "tags", "is_published", "author_id", "created_at", "updated_at",
	}
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	for i, c := range cols {
		if strings.Contains(c, "%s") {
			cols[i] = fmt.Sprintf(c, prefix)
			continue
		}
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner, extra ...any) (*Post, error) {
	var (
		p      Post
		cover  sql.NullString
		author uuid.NullUUID
	)
	dest := append(extra,
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
		&cover, pq.Array(&p.Tags), &p.IsPublished, &author, &p.CreatedAt, &p.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if cover.Valid {
		p.CoverImageURL = &cover.String
	}
	if author.Valid {
		p.AuthorID = &author.UUID
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *postgresRepository) Create(ctx context.Context, d Draft, authorID uuid.UUID) (*Post, error) {
	query := `
		INSERT INTO posts (id, title, slug, excerpt, content, cover_image_url, tags, is_published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING ` + columns("")

	post, err := scanPost(r.db.QueryRowContext(ctx, query,
		uuid.New(), d.Title, d.Slug, d.Excerpt, d.Content, d.CoverImageURL, pq.Array(d.Tags), d.IsPublished, authorID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `SELECT ` + columns("") + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return post, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error) {
	query := `SELECT ` + columns("") + ` FROM posts WHERE slug = $1`
	if !includeDrafts {
		query += ` AND is_published = true`
	}
	post, err := scanPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func whereClause(params ListParams) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if params.PublishedOnly {
		conds = append(conds, "is_published = true")
	}
	if params.Search != "" {
		add("title ILIKE ?", "%"+escapeLike(params.Search)+"%")
	}
	if params.Tag != "" {
		add("? = ANY(tags)", params.Tag)
	}
	if params.ExcludeSlug != "" {
		add("slug <> ?", params.ExcludeSlug)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *postgresRepository) List(ctx context.Context, params ListParams) ([]*Post, error) {
	where, args := whereClause(params)
	query := `SELECT ` + columns("") + ` FROM posts` + where + ` ORDER BY created_at DESC`
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (r *postgresRepository) Count(ctx context.Context, params ListParams) (int64, error) {
	where, args := whereClause(params)
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, d Draft, authorID uuid.UUID) (*Revision, error) {
	// Self-join so RETURNING can report the row as it was before the update.
	query := `
		UPDATE posts AS p
		SET title = $2, slug = $3, excerpt = $4, content = $5, cover_image_url = $6,
			tags = $7, is_published = $8, author_id = $9, updated_at = now()
		FROM posts AS old
		WHERE p.id = $1 AND old.id = p.id
		RETURNING old.slug, old.is_published, ` + columns("p")

	var rev Revision
	post, err := scanPost(r.db.QueryRowContext(ctx, query,
		id, d.Title, d.Slug, d.Excerpt, d.Content, d.CoverImageURL, pq.Array(d.Tags), d.IsPublished, authorID,
	), &rev.PreviousSlug, &rev.WasPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	rev.Post = post
	return &rev, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (string, bool, error) {
	var slug string
	err := r.db.QueryRowContext(ctx, `DELETE FROM posts WHERE id = $1 RETURNING slug`, id).Scan(&slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("delete post: %w", err)
	}
	return slug, true, nil
}

func (r *postgresRepository) PublishedSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slug FROM posts WHERE is_published = true ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	defer rows.Close()

	slugs := make([]string, 0)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}
