package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // planner time zone must resolve on hosts without zoneinfo

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/visit-planner/internal/config"
	"github.com/iliyamo/visit-planner/internal/database"
	"github.com/iliyamo/visit-planner/internal/discount"
	"github.com/iliyamo/visit-planner/internal/handler"
	"github.com/iliyamo/visit-planner/internal/middleware"
	"github.com/iliyamo/visit-planner/internal/planner"
	"github.com/iliyamo/visit-planner/internal/queue"
	"github.com/iliyamo/visit-planner/internal/repository"
	"github.com/iliyamo/visit-planner/internal/router"
	queue_publisher "github.com/iliyamo/visit-planner/internal/service"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Printf("redis: unavailable, rate limiting falls back to in-process buckets")
	} else {
		defer rdb.Close()
	}

	catalog, err := discount.LoadCatalog(cfg.Planner.CatalogPath)
	if err != nil {
		log.Fatalf("discount catalog: %v", err)
	}

	venues := repository.NewVenueRepo(db)
	profiles := repository.NewProfileRepo(db)
	plans := &handler.PlanHandler{
		Venues:    venues,
		Rules:     repository.NewTicketRuleRepo(db),
		Profiles:  profiles,
		Publisher: queue_publisher.New(cfg.AMQPURL),
		Generator: planner.NewGenerator(nil, planner.Options{
			Workers:      cfg.Planner.Workers,
			MaxDays:      cfg.Planner.MaxDays,
			VisitMinutes: cfg.Planner.VisitMinutes,
		}),
		Location: cfg.Planner.Location,
	}
	discounts := &handler.DiscountHandler{
		Venues:   venues,
		Profiles: profiles,
		Catalog:  catalog,
		Resolver: discount.NewResolver(cfg.Planner.Location),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	router.RegisterRoutes(e)
	router.RegisterAPI(e, plans, discounts, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	go func() {
		c := queue.Consumer{URL: cfg.AMQPURL, LogDir: "logs"}
		if err := c.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("plan-consumer: stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.Planner.Timezone)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
