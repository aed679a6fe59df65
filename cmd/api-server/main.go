package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"anihub/internal/auth"
	"anihub/internal/catalog"
	"anihub/internal/favorites"
	"anihub/internal/fetch"
	"anihub/internal/history"
	"anihub/internal/stats"
	synchub "anihub/internal/sync"
	"anihub/internal/watchlist"
	"anihub/pkg/database"
	"anihub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		hubStats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hubStats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hubStats.Clients,
		})
	})

	// Catalog (public)
	catalogCfg := utils.LoadCatalogConfig()
	svc := catalog.NewService(fetch.NewClient(), catalog.Options{
		ConsumetBase: catalogCfg.ConsumetBaseURL,
	})
	catalog.NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	cipher, err := auth.NewCipher(authCfg.EncryptionKey)
	if err != nil {
		log.Fatalf("bad encryption key: %v", err)
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc, cipher)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/ws", synchub.WSHandler(hub))
	authHandler.RegisterUserRoutes(protected)

	favRepo := favorites.NewRepo(db)
	favorites.NewHandler(favRepo, hub).RegisterRoutes(protected)

	wlRepo := watchlist.NewRepo(db)
	watchlist.NewHandler(wlRepo, hub).RegisterRoutes(protected)

	histRepo := history.NewRepo(db)
	history.NewHandler(histRepo, hub).RegisterRoutes(protected)

	stats.NewHandler(favRepo, wlRepo, histRepo).RegisterRoutes(protected)

	srvCfg := utils.LoadServerConfig()
	httpSrv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", srvCfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
