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

package db

import (
	"context"

	"github.com/stephenafamo/bob"
)

type (
	// Querier is an interface for database queries.
	// Uses bob.Executor so both bob.DB and bob.Tx conform.
	Querier interface {
		bob.Executor
	}

	// OLTP SQL compliant database connection pool.
	ConnectionPool interface {
		HealthManager
		ConnectionManager
		MigrationManager

		// Shutdown attempts to gracefully close all underlying connections.
		Shutdown(context.Context) error
	}

	HealthManager interface {
		HealthCheck() error
	}

	// ConnectionManager applies the read-replica pattern whenever possible.
	ConnectionManager interface {
		// Writer returns a writer (primary) database connection
		// from the underlying database connection pool.
		Writer() Querier

		ReaderConnectionManager
	}

	ReaderConnectionManager interface {
		// Reader returns a read replica database connection from the
		// underlying database connection pool.
		//
		// Should fall back to a writer connection if not available.
		Reader() Querier
	}

	// MigrationManager synchronizes the schema from the embedded migration
	// files at startup.
	MigrationManager interface {
		MigrateUp(ctx context.Context) error
	}
)
