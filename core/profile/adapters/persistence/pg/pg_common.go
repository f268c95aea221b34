// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pg

import (
	"database/sql"
	"errors"
	"time"

	"app/core/profile/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

type (
	// ProfileRow is the persistence entity shape used by storage adapters.
	ProfileRow struct {
		ID        int64         `db:"id"`
		NickName  string        `db:"nick_name"`
		FirstName string        `db:"first_name"`
		LastName  string        `db:"last_name"`
		Phone     string        `db:"phone"`
		Avatar    string        `db:"avatar"`
		UserID    sql.NullInt64 `db:"user_id"`
		CreatedAt time.Time     `db:"created_at"`
		UpdatedAt time.Time     `db:"updated_at"`
	}
)

// profileColumns is the canonical column list shared by every RETURNING and
// SELECT clause.
var profileColumns = []string{
	"id", "nick_name", "first_name", "last_name", "phone", "avatar", "user_id", "created_at", "updated_at",
}

// toProfile converts a ProfileRow to a domain Profile.
func toProfile(row ProfileRow) domain.Profile {
	p := domain.Profile{
		ID:        row.ID,
		NickName:  row.NickName,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     row.Phone,
		Avatar:    row.Avatar,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.UserID.Valid {
		uid := row.UserID.Int64
		p.UserID = &uid
	}
	return p
}

// profileTransformer implements bob's transformer interface for automatic row
// to domain conversion.
type profileTransformer struct{}

func (profileTransformer) TransformScanned(rows []ProfileRow) ([]domain.Profile, error) {
	out := make([]domain.Profile, len(rows))
	for i, r := range rows {
		out[i] = toProfile(r)
	}
	return out, nil
}

// wrapProfileError centralizes mapping of DB errors to domain errors.
func wrapProfileError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation, e.g. a second profile for the same account
			return domain.ErrInvalidData
		case "23502": // not_null_violation
			return domain.ErrInvalidData
		}
	}

	return err
}
