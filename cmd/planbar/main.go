package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/planbar-app/planbar/internal/billing"
	"github.com/planbar-app/planbar/internal/consumer"
	"github.com/planbar-app/planbar/internal/handlers"
	"github.com/planbar-app/planbar/internal/inbox"
	"github.com/planbar-app/planbar/internal/invoicing"
	"github.com/planbar-app/planbar/internal/model"
	"github.com/planbar-app/planbar/internal/outbox"
	"github.com/planbar-app/planbar/internal/schedule"
	"github.com/planbar-app/planbar/internal/storage"
	"github.com/planbar-app/planbar/libs/config"
	"github.com/planbar-app/planbar/libs/db"
	"github.com/planbar-app/planbar/libs/httpx"
	"github.com/planbar-app/planbar/libs/kafkax"
	otelx "github.com/planbar-app/planbar/libs/otel"
	"github.com/planbar-app/planbar/libs/runtime"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "planbar")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	startHour, err := config.Hour("DAY_START_HOUR", schedule.DefaultStartHour)
	if err != nil {
		panic(err)
	}
	endHour, err := config.Hour("DAY_END_HOUR", schedule.DefaultEndHour)
	if err != nil {
		panic(err)
	}
	bufferWidth := config.Duration("SLOT_BUFFER", schedule.DefaultBuffer)

	bookingRepo := storage.NewBookingRepository(pool)
	refRepo := storage.NewReferenceRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	rates := billing.DefaultRates
	invoicer := invoicing.New(logger, config.String("STRIPE_SECRET_KEY", ""), config.String("STRIPE_CURRENCY", ""))

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_EVERY", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "planbar"),
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}

	startConsumer(config.String("KAFKA_CLIENT_TOPIC", "crm.client.upserted.v1"), func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			ClientID         string `json:"client_id"`
			Name             string `json:"name"`
			StripeCustomerID string `json:"stripe_customer_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid client event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.ClientID == "" || payload.Name == "" {
			logger.Error("missing required client event fields", "topic", msg.Topic)
			return nil
		}
		return refRepo.UpsertClient(ctx, model.Client{
			ID:               payload.ClientID,
			Name:             payload.Name,
			StripeCustomerID: payload.StripeCustomerID,
		})
	})

	startConsumer(config.String("KAFKA_PROJECT_TOPIC", "crm.project.upserted.v1"), func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			ProjectID   string  `json:"project_id"`
			Name        string  `json:"name"`
			ClientID    string  `json:"client_id"`
			BillingType string  `json:"billing_type"`
			CustomRate  float64 `json:"custom_rate"`
			PackageTier string  `json:"package_tier"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid project event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.ProjectID == "" || payload.Name == "" || payload.ClientID == "" {
			logger.Error("missing required project event fields", "topic", msg.Topic)
			return nil
		}
		billingType := payload.BillingType
		if billingType != model.BillingCustom {
			billingType = model.BillingPackage
		}
		return refRepo.UpsertProject(ctx, model.Project{
			ID:          payload.ProjectID,
			Name:        payload.Name,
			ClientID:    payload.ClientID,
			BillingType: billingType,
			CustomRate:  payload.CustomRate,
			PackageTier: payload.PackageTier,
		})
	})

	calendarHandler := handlers.NewCalendarHandler(bookingRepo, refRepo, logger, startHour, endHour, bufferWidth)
	reportHandler := handlers.NewReportHandler(bookingRepo, refRepo, rates, invoicer, logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, outboxRepo, logger)
	referenceHandler := handlers.NewReferenceHandler(refRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/calendar/week", calendarHandler.Week)
	mux.HandleFunc("/api/v1/projects/cost", reportHandler.ProjectCost)
	mux.HandleFunc("/api/v1/reports/monthly", reportHandler.Monthly)
	mux.HandleFunc("/api/v1/clients", referenceHandler.Clients)
	mux.HandleFunc("/api/v1/projects", referenceHandler.Projects)
	mux.HandleFunc("/api/v1/bookings", bookingHandler.List)

	adminKey := httpx.WithAdminKey(config.String("ADMIN_KEY_BCRYPT", ""))
	mux.Handle("/api/v1/bookings/create", adminKey(http.HandlerFunc(bookingHandler.Create)))
	mux.Handle("/api/v1/bookings/cancel", adminKey(http.HandlerFunc(bookingHandler.Cancel)))
	mux.Handle("/api/v1/reports/monthly/invoices", adminKey(http.HandlerFunc(reportHandler.PushInvoices)))

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var rateLimit httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		rateLimit = httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl")).Middleware(logger, true)
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rateLimit = httpx.NewRateLimiter(limitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", httpx.AdminKeyHeader},
			MaxAge:         10 * time.Minute,
		}),
		rateLimit,
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
