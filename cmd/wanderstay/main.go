package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"wanderstay/internal/app/commands"
	"wanderstay/internal/app/dto"
	availabilityapp "wanderstay/internal/app/handlers/availability"
	bookingapp "wanderstay/internal/app/handlers/booking"
	"wanderstay/internal/app/middleware"
	appoutbox "wanderstay/internal/app/outbox"
	"wanderstay/internal/app/policies"
	"wanderstay/internal/app/queries"
	domainavailability "wanderstay/internal/domain/availability"
	domainbooking "wanderstay/internal/domain/booking"
	domainsync "wanderstay/internal/domain/calendarsync"
	domainproperty "wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
	"wanderstay/internal/infra/broker/kafka"
	"wanderstay/internal/infra/config"
	mongodb "wanderstay/internal/infra/db/mongo"
	ginserver "wanderstay/internal/infra/http/gin"
	"wanderstay/internal/infra/obs"
	infraoutbox "wanderstay/internal/infra/outbox"
	"wanderstay/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := os.Getenv("PROPERTY_FIXTURES")
	if fixturesPath == "" {
		fixturesPath = filepath.Join("data", "properties.json")
	}
	if err := app.loadPropertyFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("property fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	ready        func() error
	close        func()
	outboxWorker *infraoutbox.Worker

	properties   domainproperty.Repository
	availability domainavailability.Calendar
	feeds        domainsync.Repository
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		ready: func() error { return nil },
		close: func() {},
	}

	var (
		bookings    domainbooking.Repository
		idStore     middleware.IdempotencyStore
		box         appoutbox.Outbox
		notifier    policies.Notifier
		outboxStore *infraoutbox.Store
	)

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB, cfg.MongoConnect)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.properties = mongodb.NewPropertyRepository(client.DB)
		app.availability = mongodb.NewAvailabilityCalendar(client.DB)
		app.feeds = mongodb.NewCalendarSyncRepository(client.DB)
		bookings = mongodb.NewBookingRepository(client.DB)
		idStore = mongodb.NewIdempotencyStore(client.DB, 168*time.Hour)
		outboxStore = infraoutbox.NewStore(client.DB)
		box = outboxStore
		app.close = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		}
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		app.properties = memory.NewPropertyRepository()
		app.availability = memory.NewAvailabilityCalendar()
		app.feeds = memory.NewCalendarSyncRepository()
		bookings = memory.NewBookingRepository()
		idStore = memory.NewIdempotencyStore()
		box = memory.NewOutbox()
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka connect: %w", err)
		}
		closeStorage := app.close
		app.close = func() {
			_ = producer.Close()
			closeStorage()
		}
		notifier = &kafka.Notifier{Producer: producer, Topic: cfg.NotifyTopic}
		if outboxStore != nil {
			app.outboxWorker = &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				ID:          uuid.NewString(),
				Backoff:     cfg.RetryBackoff,
			}
		}
	} else {
		notifier = memory.NewNotifier()
		logger.Info("kafka brokers not configured, confirmation notices stay in memory")
	}

	admitHandler := &bookingapp.AdmitBookingHandler{
		Properties:   app.properties,
		Availability: app.availability,
		Sync:         feedInspector{repo: app.feeds},
		Bookings:     bookings,
		Notifier:     notifier,
		Outbox:       box,
		Logger:       logger,
		FetchTimeout: cfg.AvailabilityFetch,
	}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.AdmitBookingCommand, *bookingapp.AdmitBookingResult](
		commandBus, bookingapp.AdmitBookingCommand{}.Key(), admitHandler)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[availabilityapp.GetBlockedDatesQuery, dto.BlockedDates](
		queryBus, availabilityapp.GetBlockedDatesQuery{}.Key(), &availabilityapp.GetBlockedDatesHandler{
			Source: app.availability,
		})
	queries.RegisterHandler[bookingapp.ValidateSelectionQuery, dto.ValidationResult](
		queryBus, bookingapp.ValidateSelectionQuery{}.Key(), &bookingapp.ValidateSelectionHandler{
			Properties: app.properties,
			Source:     app.availability,
		})

	dispatcher := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil, bookingapp.ReplayErrorCodec{}),
	)

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: dispatcher,
			Queries:  queryBus,
		},
		Availability: ginserver.AvailabilityHandler{
			Queries: queryBus,
		},
	}
	return app, nil
}

// feedInspector adapts the calendar feed repository to the sync port.
type feedInspector struct {
	repo domainsync.Repository
}

func (f feedInspector) HasActiveSync(ctx context.Context, id domainproperty.PropertyID) (bool, error) {
	return f.repo.HasActive(ctx, id)
}

type propertyFixture struct {
	ID               string   `json:"id"`
	Host             string   `json:"host"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	City             string   `json:"city"`
	Country          string   `json:"country"`
	GuestsLimit      int      `json:"guests_limit"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	MinStayNights    *int     `json:"min_stay_nights"`
	MaxStayNights    *int     `json:"max_stay_nights"`
	LeadTimeDays     *int     `json:"lead_time_days"`
	BufferDays       *int     `json:"buffer_days"`
	BlockedDates     []string `json:"blocked_dates"`
	CalendarFeedURL  string   `json:"calendar_feed_url"`
}

// loadPropertyFixtures seeds listed properties, their blocked dates and
// calendar feeds from a JSON file. Missing file is not an error; the
// memory mode simply starts empty.
func (a *application) loadPropertyFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		prop, err := domainproperty.New(domainproperty.CreateParams{
			ID:               domainproperty.PropertyID(fx.ID),
			Host:             domainproperty.HostID(fx.Host),
			Title:            fx.Title,
			Description:      fx.Description,
			City:             fx.City,
			Country:          fx.Country,
			GuestsLimit:      fx.GuestsLimit,
			NightlyRateCents: fx.NightlyRateCents,
			Rules: domainproperty.BookingRules{
				MinStayNights: fx.MinStayNights,
				MaxStayNights: fx.MaxStayNights,
				LeadTimeDays:  fx.LeadTimeDays,
				BufferDays:    fx.BufferDays,
			},
			Now: now,
		})
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		prop.List(now)
		if err := a.properties.Save(ctx, prop); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		for _, raw := range fx.BlockedDates {
			date, err := time.Parse("2006-01-02", raw)
			if err != nil {
				logger.Warn("fixture blocked date invalid", "property_id", fx.ID, "date", raw)
				continue
			}
			day, err := daterange.New(date, date.AddDate(0, 0, 1))
			if err != nil {
				continue
			}
			if err := a.availability.BlockRange(ctx, prop.ID, day, "fixture"); err != nil {
				logger.Warn("cannot block fixture date", "property_id", fx.ID, "date", raw, "error", err)
			}
		}
		if fx.CalendarFeedURL != "" {
			feed := domainsync.Feed{
				ID:         domainsync.FeedID(uuid.NewString()),
				PropertyID: prop.ID,
				URL:        fx.CalendarFeedURL,
				Enabled:    true,
				Status:     domainsync.SyncPending,
				CreatedAt:  now.UTC(),
			}
			if err := a.feeds.Save(ctx, feed); err != nil {
				logger.Warn("cannot store fixture feed", "property_id", fx.ID, "error", err)
			}
		}
		logger.Info("property fixture imported", "property_id", prop.ID)
	}
	return nil
}
