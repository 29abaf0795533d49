package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trip-booking/config"
	"trip-booking/internal/handlers"
	"trip-booking/internal/services"
	"trip-booking/internal/services/payment"
	pbstore "trip-booking/internal/store/pb"
	"trip-booking/monitoring"
	"trip-booking/security"
	"trip-booking/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"

	_ "trip-booking/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (customer notifications)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize payment gateway
	var gateway payment.Gateway
	if cfg.PayLaoConfig.BaseURL != "" {
		var err error
		gateway, err = payment.NewFactory().CreateGateway(ctx, payment.ProviderPayLao, &cfg.PayLaoConfig)
		if err != nil {
			return err
		}
		defer gateway.Close(ctx)
	}

	// Initialize store and services
	st := pbstore.New(app)
	cache := services.NewTicketCache(redisClient, cfg.BannerCacheTTL)
	ledgerService := services.NewLedgerService(st)
	allocatorService := services.NewAllocatorService(st, cfg.SlotCapacity, cache)
	verificationService := services.NewVerificationService(st, cache)
	bookingService := services.NewBookingService(st, pn, ledgerService)
	fraudService := services.NewFraudService(st, cache)

	// Payment outcome notifications commit paid transitions as they arrive.
	if gateway != nil {
		go func() {
			notifications := make(chan *payment.Notification, 1)
			gateway.SetNotificationChannel(notifications)
			for {
				select {
				case n := <-notifications:
					slog.Info("payment notification received", "bookingID", n.BookingID, "status", n.Status)
					if !n.Succeeded() {
						continue
					}
					if err := bookingService.MarkPaid(ctx, n.BookingID, n.ExternalRef); err != nil {
						slog.Error("bookingService.MarkPaid()", "bookingID", n.BookingID, "error", err)
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(app, st, cache)
	bookingHandler := handlers.NewBookingHandler(app, bookingService)
	paymentHandler := handlers.NewPaymentHandler(app, st, bookingService, gateway)
	adminHandler := handlers.NewAdminHandler(app, verificationService, allocatorService, fraudService)

	// Rate limiter for booking and payment endpoints
	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Prometheus metrics
	if cfg.EnableMetrics {
		go monitoring.Serve(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Ticket endpoints
		e.Router.POST("/api/v1/tickets", ticketHandler.CreateTicket)
		e.Router.GET("/api/v1/tickets/{ticketId}", ticketHandler.GetTicket)
		e.Router.GET("/api/v1/tickets/advertised", ticketHandler.GetAdvertisedTickets)

		// Booking endpoints
		e.Router.POST("/api/v1/bookings", limiter.Wrap(bookingHandler.CreateBooking))
		e.Router.GET("/api/v1/bookings/history", bookingHandler.GetBookingHistory)
		e.Router.POST("/api/v1/bookings/{bookingId}/decide", bookingHandler.DecideBooking)

		// Payment endpoints
		e.Router.POST("/api/v1/bookings/{bookingId}/pay", limiter.Wrap(paymentHandler.PayBooking))
		e.Router.POST("/api/v1/payments/confirm", limiter.Wrap(paymentHandler.ConfirmPayment))
		e.Router.GET("/api/v1/bookings/{bookingId}/payment", paymentHandler.GetPaymentStatus)

		// Admin endpoints
		e.Router.POST("/api/v1/admin/tickets/{ticketId}/verify", adminHandler.VerifyTicket)
		e.Router.POST("/api/v1/admin/tickets/{ticketId}/reinstate", adminHandler.ReinstateTicket)
		e.Router.POST("/api/v1/admin/tickets/{ticketId}/advertise", adminHandler.AdvertiseTicket)
		e.Router.POST("/api/v1/admin/tickets/{ticketId}/unadvertise", adminHandler.UnadvertiseTicket)
		e.Router.POST("/api/v1/admin/vendors/{vendorId}/fraud", adminHandler.MarkVendorFraud)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
