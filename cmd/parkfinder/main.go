package main

import (
	"context"

	bookingshandler "parkfinder/internal/bookings/handler"
	bookingsrepo "parkfinder/internal/bookings/repository"
	bookingsservice "parkfinder/internal/bookings/service"

	exporthandler "parkfinder/internal/export/handler"
	exportservice "parkfinder/internal/export/service"

	issueshandler "parkfinder/internal/issues/handler"
	issuesrepo "parkfinder/internal/issues/repository"
	issuesservice "parkfinder/internal/issues/service"
	issuesvalidator "parkfinder/internal/issues/validator"

	paymentshandler "parkfinder/internal/payments/handler"
	paymentsrepo "parkfinder/internal/payments/repository"
	paymentsservice "parkfinder/internal/payments/service"

	settingshandler "parkfinder/internal/settings/handler"
	settingsrepo "parkfinder/internal/settings/repository"
	settingsservice "parkfinder/internal/settings/service"

	slotshandler "parkfinder/internal/slots/handler"
	slotsrepo "parkfinder/internal/slots/repository"
	slotsservice "parkfinder/internal/slots/service"

	usershandler "parkfinder/internal/users/handler"
	usersrepo "parkfinder/internal/users/repository"
	usersservice "parkfinder/internal/users/service"
	usersvalidator "parkfinder/internal/users/validator"

	"parkfinder/internal/billing"
	"parkfinder/pkg/app"
	"parkfinder/pkg/config"
	"parkfinder/pkg/store"
)

const ServiceName = "parkfinder"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting ParkFinder service")

	st, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		cfg.Log.Fatal("Failed to open store", "path", cfg.StorePath, "error", err)
	}
	defer st.Close()

	// Repositories
	slotRepo := slotsrepo.NewStoreSlotRepository(st)
	bookingRepo := bookingsrepo.NewStoreBookingRepository(st)
	paymentRepo := paymentsrepo.NewStorePaymentRepository(st)
	userRepo := usersrepo.NewStoreUserRepository(st)
	issueRepo := issuesrepo.NewStoreIssueRepository(st)
	settingsRepo := settingsrepo.NewStoreSettingsRepository(st)

	// Services
	calc := billing.NewCalculator(cfg.FreeGraceMinutes)
	settingsService := settingsservice.NewSettingsService(settingsRepo, cfg)
	slotService := slotsservice.NewSlotService(slotRepo, cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		slotRepo,
		paymentRepo,
		userRepo,
		calc,
		settingsService,
		cfg,
	)
	paymentService := paymentsservice.NewPaymentService(
		paymentRepo,
		bookingService,
		bookingRepo,
		userRepo,
		cfg,
	)
	userService := usersservice.NewUserService(userRepo, usersvalidator.NewUserValidator(cfg.Log), cfg)
	issueService := issuesservice.NewIssueService(issueRepo, slotRepo, issuesvalidator.NewIssueValidator(cfg.Log), cfg)
	exportService := exportservice.NewExportService(bookingRepo, paymentRepo, userRepo, cfg)

	// Seed data: fixed slot inventory and the built-in admin account.
	ctx := context.Background()
	if err := slotService.Initialize(ctx); err != nil {
		cfg.Log.Fatal("Failed to initialize slot inventory", "error", err)
	}
	if err := userService.EnsureAdmin(ctx); err != nil {
		cfg.Log.Fatal("Failed to seed admin account", "error", err)
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, st, userService,
		slotshandler.NewSlotHandler(slotService, bookingService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		paymentshandler.NewPaymentHandler(paymentService, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
		issueshandler.NewIssueHandler(issueService, cfg.Log),
		settingshandler.NewSettingsHandler(settingsService, cfg.Log),
		exporthandler.NewExportHandler(exportService, cfg.Log),
	)
	serverApp.Run()
}
