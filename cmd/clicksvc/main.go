package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/hudsonhicksoffish/the-click-continued/configs"

	"github.com/hudsonhicksoffish/the-click-continued/internal/routes"
	"github.com/hudsonhicksoffish/the-click-continued/internal/scheduler"
	"github.com/hudsonhicksoffish/the-click-continued/internal/service"
	"github.com/hudsonhicksoffish/the-click-continued/internal/store"
	"github.com/hudsonhicksoffish/the-click-continued/internal/ws"
)

const SERVICE_NAME = "click"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// Record store with crash-safe defaults
	st := store.New(config.Getenv("DATA_DIR", "data"))
	if err := st.Initialize(); err != nil {
		log.Fatalf("unable to initialize record store: %v", err)
	}

	jackpotService := service.NewJackpotService(st)
	targetService := service.NewTargetService(st)

	// Realtime session manager
	s := ws.NewWs(jackpotService, targetService)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimit, err := strconv.Atoi(config.Getenv("RATE_LIMIT", "120"))
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Initialize routes
	routes.SetRoutes(r, s)

	// Periodic jackpot auto-increment
	sched := scheduler.NewScheduler(jackpotService, s.Broadcast)
	if err := sched.Register(); err != nil {
		log.Fatalf("unable to register scheduler tasks: %v", err)
	}
	sched.Start()

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + config.Getenv("PORT", "3001"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)
	log.Infof("Active connections: %d", s.ClientCount())

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
