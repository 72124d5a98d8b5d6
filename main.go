package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse-backend/config"
	"warehouse-backend/handlers"
	"warehouse-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const systemInfoInterval = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 설정 로드 실패: %v", err)
	}

	zl, err := services.InitLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ 로거 초기화 실패: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config) error {
	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	store := services.NewWarehouseStore()
	fleet := services.NewFleet(cfg.VehicleSpeed, cfg.RotationGain)
	manager := handlers.NewClientManager()
	h := handlers.NewHandler(store, fleet, source, manager)
	simulator := services.NewFleetSimulator(fleet, cfg.TickRate, manager.BroadcastMessage)

	app := fiber.New(handlers.AppConfig())

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Warehouse viewer 서버가 실행 중입니다.")
	})

	h.Register(app)

	// WebSocket
	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/websocket/web", websocket.New(h.HandleWebClientWebSocket))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return manager.Start(gctx) })
	g.Go(func() error { return simulator.Run(gctx) })
	g.Go(func() error { return h.RunSystemInfo(gctx, systemInfoInterval) })

	g.Go(func() error {
		// 첫 로드 실패는 치명적이지 않음: retry_load 또는 /api/warehouse/reload 로 재시도
		if err := h.Reload(gctx); err != nil {
			services.Logger().Warn("initial load failed", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		services.Logger().Info("🚀 server started",
			zap.String("addr", cfg.ListenAddr),
			zap.String("source", source.Name()),
			zap.String("websocket", "/websocket/web"))
		return app.Listen(cfg.ListenAddr)
	})

	g.Go(func() error {
		<-gctx.Done()
		services.Logger().Info("shutting down")
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	return g.Wait()
}

func newSource(cfg config.Config) (services.LayoutSource, error) {
	switch cfg.DataSource {
	case config.SourceFile:
		return &services.FileSource{Path: cfg.DataPath}, nil
	case config.SourceHTTP:
		return services.NewHTTPSource(cfg.DataURL), nil
	case config.SourceMySQL:
		db, err := services.InitDatabase(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		// 빈 DB 는 DATA_PATH 파일로 채움
		seeded, err := services.SeedIfEmpty(context.Background(), db, &services.FileSource{Path: cfg.DataPath})
		if err != nil {
			services.Logger().Warn("layout seed skipped", zap.Error(err))
		} else if seeded {
			services.Logger().Info("layout seeded", zap.String("path", cfg.DataPath))
		}
		return &services.DBSource{DB: db}, nil
	case config.SourceGenerated:
		return &services.GeneratedSource{Seed: cfg.GeneratorSeed}, nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
}
