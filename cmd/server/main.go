package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	accounthandler "triex/internal/account/handler"
	accountservice "triex/internal/account/service"
	accountstore "triex/internal/account/store/account"
	"triex/internal/audit"
	audithandler "triex/internal/audit/handler"
	documenthandler "triex/internal/document/handler"
	documentservice "triex/internal/document/service"
	documentstore "triex/internal/document/store/document"
	itineraryhandler "triex/internal/itinerary/handler"
	itineraryservice "triex/internal/itinerary/service"
	itinerarystore "triex/internal/itinerary/store/itinerary"
	jwttoken "triex/internal/jwt_token"
	notificationhandler "triex/internal/notification/handler"
	notificationservice "triex/internal/notification/service"
	notificationstore "triex/internal/notification/store/notification"
	passengerhandler "triex/internal/passenger/handler"
	passengerservice "triex/internal/passenger/service"
	passengerstore "triex/internal/passenger/store/passenger"
	"triex/internal/platform/cache"
	"triex/internal/platform/config"
	"triex/internal/platform/httpserver"
	"triex/internal/platform/logger"
	"triex/internal/platform/metrics"
	"triex/internal/platform/postgres"
	"triex/internal/platform/redis"
	httptransport "triex/internal/transport/http"
	triphandler "triex/internal/trip/handler"
	tripservice "triex/internal/trip/service"
	tripstore "triex/internal/trip/store/trip"
	voucherhandler "triex/internal/voucher/handler"
	voucherservice "triex/internal/voucher/service"
	voucherstore "triex/internal/voucher/store/voucher"
)

const auditInboxSize = 256

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	var readCache cache.Cache
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		readCache = cache.NewRedis(redisClient, m, cfg.CacheTTL)
		log.Info("redis cache enabled")
	} else {
		log.Info("redis not configured, serving reads from the store")
	}

	// Audit events flow through a channel so request handling never waits
	// on the audit store. Reads for the activity panel go straight to the
	// store through a plain publisher.
	auditStore := audit.NewPostgresStore(db)
	auditInbox := make(chan audit.Event, auditInboxSize)
	auditPublisher := audit.NewChannelPublisher(auditInbox)
	auditReader := audit.NewPublisher(auditStore)
	auditWorker := audit.NewWorker(auditStore, auditInbox)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := auditWorker.Run(ctx); err != nil {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	tripSvc := tripservice.New(tripstore.NewPostgres(db),
		tripservice.WithLogger(log),
		tripservice.WithAuditPublisher(auditPublisher),
		tripservice.WithMetrics(m),
		cacheOption(readCache, cfg.CacheTTL))
	itinerarySvc := itineraryservice.New(itinerarystore.NewPostgres(db), tripSvc,
		itineraryservice.WithLogger(log),
		itineraryservice.WithAuditPublisher(auditPublisher),
		itineraryservice.WithMetrics(m))
	passengerSvc := passengerservice.New(passengerstore.NewPostgres(db),
		passengerservice.WithLogger(log),
		passengerservice.WithAuditPublisher(auditPublisher),
		passengerCacheOption(readCache))
	notificationSvc := notificationservice.New(notificationstore.NewPostgres(db),
		notificationservice.WithLogger(log))
	documentSvc := documentservice.New(documentstore.NewPostgres(db), tripSvc,
		documentservice.WithLogger(log),
		documentservice.WithAuditPublisher(auditPublisher),
		documentservice.WithMetrics(m),
		documentservice.WithNotifier(notificationSvc),
		documentCacheOption(readCache, cfg.CacheTTL))
	voucherSvc := voucherservice.New(voucherstore.NewPostgres(db), tripSvc,
		voucherservice.WithLogger(log),
		voucherservice.WithAuditPublisher(auditPublisher))
	accountSvc := accountservice.New(accountstore.NewPostgres(db),
		accountservice.WithLogger(log),
		accountservice.WithAuditPublisher(auditPublisher))

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "triex", "triex-clients")
	router := httptransport.NewRouter(httptransport.ModuleHandlers{
		Trips:         triphandler.New(tripSvc, log),
		Itinerary:     itineraryhandler.New(itinerarySvc, log),
		Passengers:    passengerhandler.New(passengerSvc, log),
		Documents:     documenthandler.New(documentSvc, log),
		Vouchers:      voucherhandler.New(voucherSvc, log),
		Notifications: notificationhandler.New(notificationSvc, log),
		Accounts:      accounthandler.New(accountSvc, log),
		Audit:         audithandler.New(auditReader, log),
	}, httptransport.Deps{
		Validator: jwtService,
		Logger:    log,
		Metrics:   m,
	})

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	<-workerDone
}

func cacheOption(c cache.Cache, ttl time.Duration) tripservice.Option {
	if c == nil {
		return func(*tripservice.Service) {}
	}
	return tripservice.WithCache(c, ttl)
}

func documentCacheOption(c cache.Cache, ttl time.Duration) documentservice.Option {
	if c == nil {
		return func(*documentservice.Service) {}
	}
	return documentservice.WithCache(c, ttl)
}

func passengerCacheOption(c cache.Cache) passengerservice.Option {
	if c == nil {
		return func(*passengerservice.Service) {}
	}
	return passengerservice.WithCache(c)
}
