package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/badgeclock/rfid-terminal/internal/api"
	"github.com/badgeclock/rfid-terminal/internal/api/handler"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
	"github.com/badgeclock/rfid-terminal/internal/core/service"
	"github.com/badgeclock/rfid-terminal/internal/infrastructure/config"
	mongostore "github.com/badgeclock/rfid-terminal/internal/infrastructure/db/mongo"
	redisstore "github.com/badgeclock/rfid-terminal/internal/infrastructure/db/redis"
	"github.com/badgeclock/rfid-terminal/internal/infrastructure/hrworks"
	"github.com/badgeclock/rfid-terminal/internal/infrastructure/queue"
	"github.com/badgeclock/rfid-terminal/internal/infrastructure/reader"
	"github.com/badgeclock/rfid-terminal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		Pretty:   cfg.Development(),
		Terminal: cfg.TerminalID,
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("terminal stopped")
	}
	log.Info().Msg("terminal stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Stores ---
	store, err := mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	// --- Operators ---
	authService := service.NewAuthService(store.Operators, cfg.JWTSecret, 0)
	created, err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("admin operator created")
	}

	// --- HR platform ---
	var actions hrworks.ActionTable
	if cfg.HRworks.ActionsFile != "" {
		if actions, err = hrworks.LoadActionTable(cfg.HRworks.ActionsFile); err != nil {
			return err
		}
	}
	hr := hrworks.NewClient(hrworks.Config{
		BaseURL:        cfg.HRworks.APIURL,
		AccessKey:      cfg.HRworks.AccessKey,
		SecretKey:      cfg.HRworks.SecretKey,
		ChipIDField:    cfg.HRworks.ChipIDField,
		TokenValidity:  cfg.HRworks.TokenValidity,
		RequestTimeout: cfg.HRworks.RequestTimeout,
	}, actions, logger.Component("hrworks"))

	var resolver ports.ChipResolver = service.NewLocalResolver(store.Chips)
	if cfg.ChipResolver == "remote" {
		resolver = redisstore.NewCachedResolver(hr.Persons, rdb, cfg.ResolverCacheTTL, logger.Component("resolver"))
	}

	// --- Audit ---
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, store.BookingLog, logger.Component("dispatcher"))
	dispatcher.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Stop(stopCtx); err != nil {
			log.Warn().Err(err).Msg("audit dispatcher stop")
		}
	}()

	// --- Reader ---
	device, err := reader.New(readerConfig(cfg.Reader), logger.Component("reader"))
	if err != nil {
		return err
	}
	if err := device.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	defer func() {
		if err := device.Stop(); err != nil {
			log.Warn().Err(err).Msg("reader stop")
		}
	}()

	// --- Services ---
	terminal := service.NewTerminalService(
		service.TerminalConfig{
			Terminal:    cfg.TerminalID,
			CompanyName: cfg.CompanyName,
			ScanTimeout: cfg.Reader.ScanTimeout,
		},
		device,
		resolver,
		hr.Bookings,
		redisstore.NewBookingGuard(rdb, cfg.TerminalID, cfg.BookingDedupWindow),
		dispatcher,
		logger.Component("terminal"),
	)
	chips := service.NewChipService(store.Chips, logger.Component("chips"))
	bookingLog := service.NewBookingLogService(store.BookingLog, logger.Component("audit"))

	e := api.NewRouter(api.Deps{
		Terminal:   terminal,
		Chips:      chips,
		Auth:       authService,
		BookingLog: bookingLog,
		JWTSecret:  cfg.JWTSecret,
		Probes: map[string]handler.Pinger{
			"mongodb": store,
			"redis":   redisstore.Pinger{Client: rdb},
		},
		Logger: logger.Component("api"),
	})

	// --- Serve ---
	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("reader", device.Kind()).
			Str("resolver", cfg.ChipResolver).
			Msg("terminal listening")
		errc <- e.Start(cfg.Addr())
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	// deferred in reverse: reader, dispatcher, redis, mongo
	return nil
}

func readerConfig(rc config.ReaderConfig) reader.Config {
	dc := reader.DefaultDecoderConfig()
	dc.Framing = reader.Framing(rc.Framing)
	dc.PayloadLen = rc.PayloadLen
	dc.ChecksumLen = rc.ChecksumLen
	dc.VerifyChecksum = rc.VerifyChecksum
	dc.IDFormat = reader.IDFormat(rc.IDFormat)
	dc.IDWidth = rc.IDWidth
	dc.IDBytes = rc.IDBytes

	return reader.Config{
		Type:        rc.Type,
		Device:      rc.Device,
		Baud:        rc.Baud,
		ReadTimeout: rc.ReadTimeout,
		Decoder:     dc,
		Debounce:    rc.Debounce,
		MaxScanAge:  rc.MaxScanAge,
	}
}
