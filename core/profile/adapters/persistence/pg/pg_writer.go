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
	"context"
	"fmt"

	"app/core/profile/domain"
	"app/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

var _ domain.ProfileWriteStore = (*PostgresProfileWriter)(nil)

type (
	PostgresProfileWriter struct {
		table string
		db    *bob.DB // for prepared statements on primary

		insertStmt bob.QueryStmt[insertProfileArgs, int64, []int64]
		updateStmt bob.QueryStmt[updateProfileArgs, ProfileRow, []ProfileRow]
		deleteStmt bob.QueryStmt[deleteProfileArgs, ProfileRow, []ProfileRow]
	}

	// Arg types for write operations
	insertProfileArgs struct {
		NickName  string `db:"nick_name"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
		Phone     string `db:"phone"`
		UserID    int64  `db:"user_id"`
	}

	updateProfileArgs struct {
		ID        int64  `db:"id"`
		NickName  string `db:"nick_name"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
		Phone     string `db:"phone"`
		Avatar    string `db:"avatar"`
	}

	deleteProfileArgs struct {
		ID int64 `db:"id"`
	}
)

// NewPostgresProfileWriter creates a new writer with prepared statements bound to the primary.
func NewPostgresProfileWriter(ctx context.Context, pool db.ConnectionPool, table string) (*PostgresProfileWriter, error) {
	primary := pool.Writer().(bob.DB)

	w := &PostgresProfileWriter{
		table: table,
		db:    &primary,
	}

	// INSERT INTO ... RETURNING id
	//
	// Only the generated key comes back; callers needing the canonical row
	// re-read it through the read store.
	insertQuery := psql.Insert(
		im.Into(table, "nick_name", "first_name", "last_name", "phone", "user_id"),
		im.Values(
			bob.Named("nick_name"),
			bob.Named("first_name"),
			bob.Named("last_name"),
			bob.Named("phone"),
			bob.Named("user_id"),
		),
		im.Returning("id"),
	)

	insertStmt, err := bob.PrepareQuery[insertProfileArgs](ctx, primary, insertQuery, scan.SingleColumnMapper[int64])
	if err != nil {
		return nil, fmt.Errorf("prepare insert profile: %w", err)
	}
	w.insertStmt = insertStmt

	// UPDATE ... SET <fields>, avatar (kept when the new reference is empty),
	// updated_at = CURRENT_TIMESTAMP ... RETURNING <row>
	updateQuery := psql.Update(
		um.Table(table),
		um.SetCol("nick_name").To(bob.Named("nick_name")),
		um.SetCol("first_name").To(bob.Named("first_name")),
		um.SetCol("last_name").To(bob.Named("last_name")),
		um.SetCol("phone").To(bob.Named("phone")),
		um.SetCol("avatar").To(psql.Raw("COALESCE(NULLIF(?, ''), avatar)", bob.Named("avatar"))),
		um.SetCol("updated_at").To(psql.Raw("CURRENT_TIMESTAMP")),
		um.Where(psql.Quote("id").EQ(bob.Named("id"))),
		um.Returning(toAnySlice(profileColumns)...),
	)

	updateStmt, err := bob.PrepareQuery[updateProfileArgs](ctx, primary, updateQuery, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, fmt.Errorf("prepare update profile: %w", err)
	}
	w.updateStmt = updateStmt

	// Physical delete returning the pre-delete snapshot for compensation.
	deleteQuery := psql.Delete(
		dm.From(table),
		dm.Where(psql.Quote("id").EQ(bob.Named("id"))),
		dm.Returning(toAnySlice(profileColumns)...),
	)

	deleteStmt, err := bob.PrepareQuery[deleteProfileArgs](ctx, primary, deleteQuery, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, fmt.Errorf("prepare delete profile: %w", err)
	}
	w.deleteStmt = deleteStmt

	return w, nil
}

// InsertProfile implements ProfileWriteStore.
func (w *PostgresProfileWriter) InsertProfile(ctx context.Context, fields *domain.UpdateDraft, userID int64) (int64, error) {
	id, err := w.insertStmt.One(ctx, insertProfileArgs{
		NickName:  fields.NickName,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Phone:     fields.Phone,
		UserID:    userID,
	})
	if err != nil {
		return 0, wrapProfileError(err)
	}
	return id, nil
}

// UpdateProfile implements ProfileWriteStore.
func (w *PostgresProfileWriter) UpdateProfile(ctx context.Context, id int64, fields *domain.UpdateDraft, avatar string) (*domain.Profile, error) {
	row, err := w.updateStmt.One(ctx, updateProfileArgs{
		ID:        id,
		NickName:  fields.NickName,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Phone:     fields.Phone,
		Avatar:    avatar,
	})
	if err != nil {
		return nil, wrapProfileError(err)
	}
	p := toProfile(row)
	return &p, nil
}

// DeleteProfile implements ProfileWriteStore.
func (w *PostgresProfileWriter) DeleteProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	row, err := w.deleteStmt.One(ctx, deleteProfileArgs{ID: id})
	if err != nil {
		return nil, wrapProfileError(err)
	}
	p := toProfile(row)
	return &p, nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
