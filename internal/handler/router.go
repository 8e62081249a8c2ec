package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/flicky/go-bookstore-api/internal/dto"
)

type Handlers struct {
	Auth    *AuthHandler
	Books   *BookHandler
	Cart    *CartHandler
	Orders  *OrderHandler
	Profile *ProfileHandler
	Users   *UserHandler
	Health  *HealthHandler
}

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		validatorsErr = dto.RegisterValidators(v)
	})
	return validatorsErr
}

// NewRouter wires every route. auth authenticates the caller; which role may
// do what is decided by the services.
func NewRouter(h Handlers, auth gin.HandlerFunc, allowOrigins []string) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", auth, h.Auth.Logout)

		books := v1.Group("/books")
		books.GET("", h.Books.List)
		books.GET("/:name", h.Books.Get)
		books.POST("", auth, h.Books.Create)
		books.PUT("/:name", auth, h.Books.Update)
		books.DELETE("/:name", auth, h.Books.Delete)

		cart := v1.Group("/cart", auth)
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.DELETE("/items/:name", h.Cart.DeleteItem)

		orders := v1.Group("/orders", auth)
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.GET("/:id/history", h.Orders.History)
		orders.POST("/:id/confirm", h.Orders.Confirm)
		orders.POST("/:id/cancel", h.Orders.Cancel)

		profile := v1.Group("/profile", auth)
		profile.GET("", h.Profile.Get)
		profile.PUT("", h.Profile.Update)
		profile.POST("/balance", h.Profile.TopUp)

		clients := v1.Group("/clients", auth)
		clients.GET("", h.Users.ListClients)
		clients.GET("/:email", h.Users.GetClient)
		clients.DELETE("/:email", h.Users.DeleteClient)
		clients.POST("/:email/block", h.Users.BlockClient)
		clients.POST("/:email/unblock", h.Users.UnblockClient)

		employees := v1.Group("/employees", auth)
		employees.GET("", h.Users.ListEmployees)
		employees.POST("", h.Users.CreateEmployee)
		employees.DELETE("/:email", h.Users.DeleteEmployee)
	}

	return router, nil
}
