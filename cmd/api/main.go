package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/config"
	"github.com/noah-isme/maestro-api/internal/database"
	"github.com/noah-isme/maestro-api/internal/handler"
	"github.com/noah-isme/maestro-api/internal/middleware"
	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/repository"
	"github.com/noah-isme/maestro-api/internal/router"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Actor{},
		&models.Classroom{},
		&models.Membership{},
		&models.MasterRoleRequest{},
		&models.StaffRequest{},
		&models.ResignationRequest{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional: without it decisions stay local and the session
	// broadcaster only sees in-process events.
	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, decision events disabled")
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	broadcaster := session.NewBroadcaster(logger)
	if natsConn != nil {
		drain, err := broadcaster.BindNATS(natsConn, cfg.SessionSubjectBase)
		if err != nil {
			log.Fatalf("failed to bind session events: %v", err)
		}
		defer drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	actorRepo := repository.NewActorRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	masterRequestRepo := repository.NewMasterRequestRepository(db)
	staffRequestRepo := repository.NewStaffRequestRepository(db)
	resignationRepo := repository.NewResignationRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)

	reviewCache := service.NewReviewCache(redisClient, cfg.ReviewCacheTTL, logger)
	publisher := service.NewNATSDecisionPublisher(natsConn, cfg.WorkflowSubjectBase, logger)
	activityService := service.NewActivityService(activityLogRepo, logger)

	masterRoleService := service.NewMasterRoleService(masterRequestRepo, actorRepo, validate, activityService, publisher, reviewCache, logger)
	staffRequestService := service.NewStaffRequestService(staffRequestRepo, actorRepo, classroomRepo, validate, activityService, publisher, reviewCache, logger)
	resignationService := service.NewResignationService(resignationRepo, membershipRepo, classroomRepo, validate, activityService, publisher, reviewCache, logger)
	enrollmentService := service.NewEnrollmentService(membershipRepo, actorRepo, classroomRepo, validate, activityService, reviewCache, logger)
	reviewService := service.NewReviewService(masterRequestRepo, staffRequestRepo, resignationRepo, membershipRepo, actorRepo, classroomRepo, validate, reviewCache, logger)

	masterRoleHandler := handler.NewMasterRoleHandler(masterRoleService, logger)
	staffRequestHandler := handler.NewStaffRequestHandler(staffRequestService, logger)
	resignationHandler := handler.NewResignationHandler(resignationService, logger)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		MasterRoleHandler:   masterRoleHandler,
		StaffRequestHandler: staffRequestHandler,
		ResignationHandler:  resignationHandler,
		EnrollmentHandler:   enrollmentHandler,
		ReviewHandler:       reviewHandler,
		ActivityHandler:     activityHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
