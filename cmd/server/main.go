package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/api/middleware"
	v1 "github.com/Ahnabu/evo-tech-sub001/api/v1"
	"github.com/Ahnabu/evo-tech-sub001/internal/dao"
	"github.com/Ahnabu/evo-tech-sub001/internal/dao/mysql"
	"github.com/Ahnabu/evo-tech-sub001/internal/dao/redis"
	"github.com/Ahnabu/evo-tech-sub001/internal/mq"
	"github.com/Ahnabu/evo-tech-sub001/internal/service"
	"github.com/Ahnabu/evo-tech-sub001/pkg/app"
	"github.com/Ahnabu/evo-tech-sub001/pkg/logger"
	"github.com/Ahnabu/evo-tech-sub001/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := app.BootstrapApp()

	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("mysql init failed", "err", err)
	}

	redisClient, err := redis.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("redis init failed", "err", err)
	}

	mqPool, err := mq.Init(&cfg.MQ)
	if err != nil {
		logger.Fatal("rabbitmq init failed", "err", err)
	}
	defer mqPool.Close()
	if err := mqPool.EnsureBaseTopology(); err != nil {
		logger.Fatal("mq topology init failed", "err", err)
	}

	orderDao := dao.NewOrderDao(db)
	productDao := dao.NewProductDao(db, redisClient)
	userDao := dao.NewUserDao(db)
	cartDao := dao.NewCartDao(redisClient, time.Duration(cfg.Checkout.CartTTLHours)*time.Hour)

	orderService := service.NewOrderService(orderDao, productDao, cartDao, mqPool, &cfg.Checkout)
	productService := service.NewProductService(productDao)
	authService := service.NewAuthService(userDao, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	cartService := service.NewCartService(cartDao, productDao)

	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.GlobalRateLimit(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orderHandler := v1.NewOrderHandler(orderService)
	productHandler := v1.NewProductHandler(productService)
	authHandler := v1.NewAuthHandler(authService)
	cartHandler := v1.NewCartHandler(cartService)

	api := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api.Group("/auth"))
		productHandler.RegisterPublicRoutes(api.Group("/products"))

		// guest checkout is public but shares the stricter checkout limit
		guestOrders := api.Group("/orders", middleware.CheckoutRateLimit(cfg))
		orderHandler.RegisterPublicRoutes(guestOrders)

		authed := api.Group("", middleware.JWTAuthMiddleware(jwtUtil))
		{
			orders := authed.Group("/orders", middleware.CheckoutRateLimit(cfg))
			orderHandler.RegisterRoutes(orders)
			cartHandler.RegisterRoutes(authed.Group("/cart"))
		}

		admin := api.Group("/admin", middleware.JWTAuthMiddleware(jwtUtil), middleware.AdminRequired())
		{
			orderHandler.RegisterAdminRoutes(admin.Group("/orders"))
			productHandler.RegisterAdminRoutes(admin.Group("/products"))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	logger.Info("Server exited")
}
