package db

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	OrgIDKey  contextKey = "org_id"
	DBConnKey contextKey = "db_conn"
)

var orgIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// OrganizationMiddleware resolves the caller's practice and pins the request
// to its schema. Every practice lives in its own Postgres schema named
// org_<id>.
func OrganizationMiddleware(pool *pgxpool.Pool, defaultOrg string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			orgID := extractOrgID(c, defaultOrg)

			if !orgIDPattern.MatchString(orgID) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid organization identifier")
			}

			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			schema := fmt.Sprintf("org_%s", orgID)
			_, err = conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, shared, public", schema))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "organization resolution failed")
			}

			ctx = context.WithValue(ctx, OrgIDKey, orgID)
			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("org_id", orgID)

			return next(c)
		}
	}
}

func extractOrgID(c echo.Context, defaultOrg string) string {
	// 1. Claim set by the auth middleware
	if oid, ok := c.Get("jwt_org_id").(string); ok && oid != "" {
		return oid
	}

	// 2. X-Organization-ID header
	if oid := c.Request().Header.Get("X-Organization-ID"); oid != "" {
		return oid
	}

	// 3. Query parameter
	if oid := c.QueryParam("org_id"); oid != "" {
		return oid
	}

	return defaultOrg
}

// ConnFromContext retrieves the organization-scoped connection from context.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// OrgFromContext retrieves the organization ID from context.
func OrgFromContext(ctx context.Context) string {
	oid, _ := ctx.Value(OrgIDKey).(string)
	return oid
}

// CreateOrganizationSchema creates a new schema for a practice and runs all
// migrations against it. If migrationsDir is empty, migrations are skipped.
func CreateOrganizationSchema(ctx context.Context, pool *pgxpool.Pool, orgID string, migrationsDir string) error {
	if !orgIDPattern.MatchString(orgID) {
		return fmt.Errorf("invalid organization identifier: %s", orgID)
	}

	schema := fmt.Sprintf("org_%s", orgID)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	if err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if migrationsDir != "" {
		migrator := NewMigrator(pool, migrationsDir)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}
