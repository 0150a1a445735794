package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"freshfetch/config"
	"freshfetch/server"

	"github.com/gin-gonic/gin"
)

var (
	router  http.Handler
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		config.SetupLogger(cfg.LogLevel)

		app, err := server.New(context.Background(), cfg)
		if err != nil {
			slog.Error("failed to initialize app", "error", err)
			initErr = err
			return
		}
		router = app.Router
	})
}

// Handler is the serverless entrypoint; connections live for the lifetime of the instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"success":false,"message":"Service unavailable"}`))
		return
	}
	router.ServeHTTP(w, r)
}
