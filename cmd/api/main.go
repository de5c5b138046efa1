package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/medimanage/api/internal/config"
	v1 "github.com/medimanage/api/internal/handler/v1"
	gormrepo "github.com/medimanage/api/internal/repository/gorm"
	"github.com/medimanage/api/internal/service"
	"github.com/medimanage/api/pkg/auth"
	"github.com/medimanage/api/pkg/database"
	"github.com/medimanage/api/pkg/logger"
	"github.com/medimanage/api/pkg/metrics"
	"github.com/medimanage/api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("medimanage")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	if sqlDB, err := db.DB(); err == nil {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
			}
		}()
	}

	userRepo := gormrepo.NewUserRepository(db)
	medicineRepo := gormrepo.NewMedicineRepository(db)
	calculationRepo := gormrepo.NewCalculationRepository(db)
	prescriptionRepo := gormrepo.NewPrescriptionRepository(db)
	auditRepo := gormrepo.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, calculationRepo, prescriptionRepo, jwtManager, collector, auditSvc, log)
	profileSvc := service.NewProfileService(userRepo, medicineRepo, auditSvc, log)
	medicineSvc := service.NewMedicineService(medicineRepo, userRepo, collector, auditSvc, log, cfg.Catalog.SearchLimit)
	calculationSvc := service.NewCalculationService(calculationRepo, medicineRepo, collector, auditSvc, log)
	prescriptionSvc := service.NewPrescriptionService(prescriptionRepo, collector, auditSvc, log, cfg.Schedule.LookaheadDays)

	router := v1.NewRouter(v1.RouterDeps{
		Config:          cfg,
		Logger:          log,
		JWTManager:      jwtManager,
		Collector:       collector,
		AuthSvc:         authSvc,
		ProfileSvc:      profileSvc,
		MedicineSvc:     medicineSvc,
		CalculationSvc:  calculationSvc,
		PrescriptionSvc: prescriptionSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
