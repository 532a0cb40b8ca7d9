package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/cortilabs/cuisine/internal/events"
	"github.com/cortilabs/cuisine/internal/menu"
	"github.com/cortilabs/cuisine/internal/mongo"
	"github.com/cortilabs/cuisine/internal/order"
	"github.com/cortilabs/cuisine/internal/stream"
)

const (
	appNamespace = "CUISINE"
	appName      = "cuisine"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	itemRepo := mongo.NewMenuItemRepo(db)
	if err := itemRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot ensure menu item indexes: %v", appName, appVersion, err)
	}

	orderRepo := mongo.NewOrderRepo(db)
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot ensure order indexes: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := events.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := events.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	notifier := events.NewNotifier(pub, logger)
	ledger := menu.NewLedger(itemRepo, notifier, logger)

	hub := stream.NewHub(logger)
	eventSubscriber := stream.NewEventSubscriber(sub, hub, logger)

	menuHandler := menu.NewHandler(menu.HandlerDeps{
		Items:    itemRepo,
		Notifier: notifier,
	}, config, logger)

	orderHandler := order.NewHandler(order.HandlerDeps{
		Orders:   orderRepo,
		Items:    itemRepo,
		Ledger:   ledger,
		Notifier: notifier,
	}, config, logger)

	sseHandler := stream.NewSSEHandler(hub, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	hubLifecycle := apt.LifecycleHooks{
		OnStop: hub.Stop,
	}

	// Setup demo seeding if enabled
	demoEnabled, _ := config.GetString("seeding.demo")
	var seedHooks apt.LifecycleHooks
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled")
		seedHooks = apt.LifecycleHooks{
			OnStart: menu.SeedingFunc(appName, baseRepo.GetDatabase, logger),
		}
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: false, // Browser clients connect directly
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		eventSubscriber,
		publisherLifecycle,
		subLifecycle,
		hubLifecycle,
	}
	if demoEnabled == "true" {
		lifecycles = append(lifecycles, seedHooks)
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", menuHandler, orderHandler, sseHandler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
