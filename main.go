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

package main

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/modules/appconfig"
	"app/modules/bus"
	"app/modules/clock"
	"app/modules/db/postgres"
	"app/modules/db/redis"
	"app/modules/db/redis/counter"
	"app/modules/ratelimit"
	"app/modules/server"
	"app/modules/telemetry"

	"app/core/profile/adapters/command"
	"app/core/profile/adapters/identity"
	persistence "app/core/profile/adapters/persistence/pg"
	"app/core/profile/adapters/vk"
	"app/core/profile/domain"
)

// Migration files applied against the primary at startup.
//
//go:embed db/migrations/*.sql
var migrationsFS embed.FS

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// cancel the context when these signals occur
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGKILL, syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// manual dependency injections, imo there's no need to over-engineer with DI frameworks like Fx or Wire
	slog.SetLogLoggerLevel(slog.LevelDebug)

	clk := clock.RealClock{}

	// --- application config ----
	appConfig, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// --- infrastructure ---

	connectionPool, err := postgres.New(
		ctx,
		&appConfig.Postgres,
		postgres.PostgresOptions{
			// assuming writer connection does not pass through pgBouncer,
			// so we can apply server-side prepared statements
			WriterOptions: []postgres.PgxConfigOption{
				postgres.WithApplicationName("profile-api"),
			},
			ReaderOptions: []postgres.PgxConfigOption{
				postgres.WithPgBouncerSimpleProtocol(),
				postgres.WithApplicationName("profile-api"),
			},
			Migrations:    migrationsFS,
			MigrationDirs: []string{"db/migrations"},
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "database error", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := connectionPool.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
		}
	}()

	// synchronize the profiles schema before serving any command
	if err := connectionPool.MigrateUp(ctx); err != nil {
		slog.ErrorContext(ctx, "database migration failed", slog.Any("error", err))
		exitCode = 1
		return
	}

	if err = connectionPool.HealthCheck(); err != nil {
		slog.ErrorContext(ctx, "database health check failed", slog.Any("error", err))
		exitCode = 1
		return
	}

	otelShutdown, err := telemetry.Init(ctx, appConfig.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry not properly configured", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	redisClient, err := redis.NewRueidisClient(ctx, appConfig.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "redis not properly setup", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer redisClient.Close()

	// Initialize reader (uses runtime replica selection) and writer (uses prepared statements on primary)
	reader := persistence.NewPostgresProfileReader(connectionPool, "profiles")

	writer, err := persistence.NewPostgresProfileWriter(ctx, connectionPool, "profiles")
	if err != nil {
		slog.ErrorContext(ctx, "profile writer initialization error", slog.Any("error", err))
		exitCode = 1
		return
	}

	// --- application layer ---

	identityClient := identity.NewClient(bus.NewClient(
		redisClient,
		appConfig.Bus.IdentityQueue,
		bus.WithReplyTimeout(appConfig.Bus.ReplyTimeout),
	))

	vkBridge := vk.NewBridge(appConfig.VK)

	app := domain.NewApp(
		reader, writer, identityClient, vkBridge,
		domain.WithClock(clk),
		domain.WithStepObserver(domain.LogStepObserver{}),
	)

	router := command.NewRouter(app)

	// --- inbound transport ---

	serverOpts := []bus.ServerOption{
		bus.WithWorkerPoolSize(appConfig.Bus.WorkerPoolSize),
		bus.WithReplyTTL(appConfig.Bus.ReplyTTL),
	}

	if appConfig.RateLimit.Enabled {
		redisCounter := counter.NewRedisCounterStore(redisClient, appConfig.Env)
		limiterFactory := ratelimit.SlidingWindowFactory(clk, redisCounter, appConfig.RateLimit.KeyPrefix)
		serverOpts = append(serverOpts,
			bus.WithRateLimiter(limiterFactory(appConfig.RateLimit.Limit, appConfig.RateLimit.Window)))
	}

	commandMetrics, err := telemetry.NewCommandMetrics(appConfig.Otel.ServiceName)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize command metrics, continuing without metrics", slog.Any("error", err))
	} else {
		serverOpts = append(serverOpts, bus.WithCommandMetrics(commandMetrics))
	}

	busServer := bus.NewServer(redisClient, appConfig.Bus.RequestQueue, router, serverOpts...)

	// --- ops endpoints ---

	opsServer, err := server.New(
		appConfig.OpsHost, appConfig.OpsPort,
		server.WithWriteTimeout(10*time.Second),
		server.WithReadTimeout(10*time.Second),
		server.WithServices(server.NewHealthService(map[string]server.HealthCheck{
			"postgres": func(context.Context) error { return connectionPool.HealthCheck() },
			"redis": func(ctx context.Context) error {
				return redisClient.Do(ctx, redisClient.B().Ping().Build()).Error()
			},
		})),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init ops server error", slog.Any("error", err))
		exitCode = 1
		return
	}

	go func() {
		if err := opsServer.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "ops server error", slog.Any("error", err))
			cancel()
		}
	}()

	// best-effort seed; failures are logged, not fatal
	go func() {
		seedCtx, done := context.WithTimeout(ctx, 30*time.Second)
		defer done()
		app.EnsureAdminProfile(seedCtx, appConfig.AdminEmail, appConfig.AdminPassword)
	}()

	slog.InfoContext(ctx, "consuming commands",
		slog.String("queue", appConfig.Bus.RequestQueue),
		slog.String("identity_queue", appConfig.Bus.IdentityQueue))

	if err := busServer.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running bus server error", slog.Any("error", err))
		exitCode = 1
		return
	}
}
