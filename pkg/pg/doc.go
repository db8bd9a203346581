// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver: a resilient connection pool, goose schema migrations, a
// health check, and common error classification helpers.
//
// Config is populated from environment variables, Connect opens a
// *pgxpool.Pool with retry/backoff until the database is available, and
// Migrate applies the goose migrations before the service starts serving
// traffic. Helpers such as [IsNotFoundError] and [IsDuplicateKeyError] make
// error classification trivial inside business logic.
package pg
