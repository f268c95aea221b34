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
	"log/slog"

	"app/core/profile/domain"
	"app/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ domain.ProfileReadStore = (*PostgresProfileReader)(nil)

type (
	PostgresProfileReader struct {
		table string
		pool  db.ReaderConnectionManager // calls Reader() at runtime
	}
)

// NewPostgresProfileReader creates a new reader that calls Reader() at runtime
// for load balancing across replicas, falling back to the primary when no
// replica is configured.
//
// Reads use dynamic queries instead of prepared statements so the replica can
// be picked per call.
func NewPostgresProfileReader(pool db.ReaderConnectionManager, table string) *PostgresProfileReader {
	return &PostgresProfileReader{
		table: table,
		pool:  pool,
	}
}

// GetProfileByID implements ProfileReadStore.
func (r *PostgresProfileReader) GetProfileByID(ctx context.Context, id int64) (*domain.Profile, error) {
	query := psql.Select(
		sm.Columns(toAnySlice(profileColumns)...),
		sm.From(r.table),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError(err)
	}
	prof := toProfile(row)
	return &prof, nil
}

// GetProfileByUserID implements ProfileReadStore.
func (r *PostgresProfileReader) GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := psql.Select(
		sm.Columns(toAnySlice(profileColumns)...),
		sm.From(r.table),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError(err)
	}
	prof := toProfile(row)
	return &prof, nil
}

// GetAllProfiles implements ProfileReadStore.
func (r *PostgresProfileReader) GetAllProfiles(ctx context.Context) ([]domain.Profile, error) {
	query := psql.Select(
		sm.Columns(toAnySlice(profileColumns)...),
		sm.From(r.table),
		sm.OrderBy("id").Asc(),
	)

	profiles, err := bob.Allx[profileTransformer](ctx, r.pool.Reader(), query, scan.StructMapper[ProfileRow]())
	if err != nil {
		slog.ErrorContext(ctx, "GetAllProfiles query error", slog.Any("err", err))
		return nil, wrapProfileError(err)
	}
	return profiles, nil
}
