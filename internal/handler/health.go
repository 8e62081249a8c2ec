package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Check is one readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgres", Ping: pool.Ping}
}

func RedisCheck(client *redis.Client) Check {
	return Check{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

func RabbitMQCheck(conn *amqp.Connection) Check {
	return Check{Name: "rabbitmq", Ping: func(context.Context) error {
		if conn.IsClosed() {
			return errors.New("connection closed")
		}
		return nil
	}}
}

type HealthHandler struct {
	checks []Check
}

func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz runs every check concurrently and reports each one.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	failed := make([]bool, len(h.checks))
	var g errgroup.Group
	for i, check := range h.checks {
		i, check := i, check
		g.Go(func() error {
			failed[i] = check.Ping(ctx) != nil
			return nil
		})
	}
	_ = g.Wait()

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for i, check := range h.checks {
		if failed[i] {
			body[check.Name] = "unavailable"
			body["status"] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		body[check.Name] = "connected"
	}

	c.JSON(status, body)
}
