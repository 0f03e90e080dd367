package sqlstore

import (
	"github.com/doug-martin/goqu/v9"

	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

func NewUserRepository(db *DB) repository.UserRepository {
	return &table[*domain.User, domain.UserPatch]{
		db:      db,
		name:    "users",
		kind:    "user",
		columns: []any{"email", "password_hash", "first_name", "last_name", "is_admin"},
		attrs: map[string]attribute{
			"id":       column("id"),
			"email":    keyColumn("email_key"),
			"is_admin": column("is_admin"),
		},
		record: func(u *domain.User) goqu.Record {
			return goqu.Record{
				"email":         u.Email,
				"email_key":     domain.FoldKey(u.Email),
				"password_hash": u.PasswordHash,
				"first_name":    u.FirstName,
				"last_name":     u.LastName,
				"is_admin":      u.IsAdmin,
			}
		},
		scan: func(s scanner) (*domain.User, error) {
			var u domain.User
			err := s.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt,
				&u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsAdmin)
			return &u, err
		},
	}
}
