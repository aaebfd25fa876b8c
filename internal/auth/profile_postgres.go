package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var _ ProfileRepository = (*postgresProfiles)(nil)

type postgresProfiles struct {
	db *sql.DB
}

func NewPostgresProfiles(sqlDB *sql.DB) ProfileRepository {
	return &postgresProfiles{db: sqlDB}
}

const profileColumns = "id, full_name, avatar_url, COALESCE(role, '')"

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var (
		p        Profile
		fullName sql.NullString
		avatar   sql.NullString
		role     string
	)
	if err := row.Scan(&p.ID, &fullName, &avatar, &role); err != nil {
		return nil, err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if avatar.Valid {
		p.AvatarURL = &avatar.String
	}
	p.Role = Role(role)
	return &p, nil
}

func (r *postgresProfiles) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *postgresProfiles) InsertIfAbsent(ctx context.Context, p *Profile) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, avatar_url, role) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.FullName, p.AvatarURL, string(p.Role),
	)
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	return n == 1, nil
}

func (r *postgresProfiles) Upsert(ctx context.Context, p *Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, avatar_url, role) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, role = EXCLUDED.role`,
		p.ID, p.FullName, p.AvatarURL, string(p.Role),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *postgresProfiles) List(ctx context.Context) ([]*Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY full_name NULLS LAST, id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]*Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresProfiles) UpdateRole(ctx context.Context, id uuid.UUID, role Role) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE profiles SET role = $2 WHERE id = $1 RETURNING `+profileColumns, id, string(role))
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return p, nil
}
