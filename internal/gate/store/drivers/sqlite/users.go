package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/harborchat/harbor/internal/gate/domain"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.LocalUserRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, email_verified_at, avatar_url, created_at, updated_at
		FROM users WHERE id = ?`, id)

	var (
		u        domain.LocalUserRecord
		email    sql.NullString
		verified sql.NullTime
		avatar   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &email, &verified, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.LocalUserRecord{}, mapNotFound(err)
	}

	u.Email = email.String
	u.AvatarURL = avatar.String
	if verified.Valid {
		t := verified.Time
		u.EmailVerifiedAt = &t
	}
	return u, nil
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.LocalUserRecord) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, email_verified_at, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name              = excluded.name,
			email             = excluded.email,
			email_verified_at = excluded.email_verified_at,
			avatar_url        = excluded.avatar_url,
			updated_at        = excluded.updated_at`,
		u.ID,
		u.Name,
		nullString(u.Email),
		nullTime(u.EmailVerifiedAt),
		nullString(u.AvatarURL),
		now,
		now,
	)
	return err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
