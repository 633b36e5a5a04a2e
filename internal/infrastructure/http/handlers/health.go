package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles GET /health (liveness probe).
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Check probes one dependency.
type Check func(ctx context.Context) error

// RedisCheck pings the session store.
func RedisCheck(rdb *redis.Client) Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// MongoCheck pings the audit database.
func MongoCheck(db *mongo.Database) Check {
	return func(ctx context.Context) error {
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}
}

// HealthDependenciesHandler handles GET /health/ready (readiness probe).
// Only the configured dependencies are checked.
type HealthDependenciesHandler struct {
	checks map[string]Check
}

func NewHealthDependenciesHandler(checks map[string]Check) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{checks: checks}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness runs every check.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]dependencyStatus, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
