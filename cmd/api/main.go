package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/nazyhomayoun/learning-software-testing/internal/app"
	"github.com/nazyhomayoun/learning-software-testing/internal/clock"
	"github.com/nazyhomayoun/learning-software-testing/internal/config"
	"github.com/nazyhomayoun/learning-software-testing/internal/notify"
	"github.com/nazyhomayoun/learning-software-testing/internal/payment"
	"github.com/nazyhomayoun/learning-software-testing/internal/pricing"
	"github.com/nazyhomayoun/learning-software-testing/internal/storage/postgres"
	transporthttp "github.com/nazyhomayoun/learning-software-testing/internal/transport/http"
	"github.com/nazyhomayoun/learning-software-testing/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load(log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	clk := clock.NewSystem()
	pricer := pricing.NewEngine(cfg.FeeRatePercent)

	ledgerRepo := postgres.NewLedgerRepository(pool)
	reservationSvc := app.NewReservationService(ledgerRepo, clk, app.WithHoldTTL(cfg.HoldTTL))

	orderRepo := postgres.NewOrderRepository(pool)
	orderSvc := app.NewOrderService(
		orderRepo,
		reservationSvc,
		pricer,
		payment.NewSandbox(),
		notify.NewAMQPNotifier(cfg.AMQPURL, log),
		clk,
	)

	adminRepo := postgres.NewAdminRepository(pool)
	adminSvc := app.NewAdminService(adminRepo, clk)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := app.NewSweeper(reservationSvc, cfg.SweepInterval, log)
	go sweeper.Run(sweepCtx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/orders", transporthttp.HandleOrders(orderSvc))
	mux.Handle("/orders/", transporthttp.HandleOrderActions(orderSvc))
	mux.Handle("/ticket-types/", transporthttp.HandleAvailability(reservationSvc))
	mux.Handle("/price", transporthttp.HandlePrice())
	mux.Handle("/admin/events", transporthttp.HandleAdminEvents(adminSvc))
	mux.Handle("/admin/events/", transporthttp.HandleAdminTicketTypes(adminSvc))
	mux.Handle("/admin/ticket-types/", transporthttp.HandleAdminTicketTypes(adminSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
