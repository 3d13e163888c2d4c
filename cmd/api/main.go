package main

import (
	"context"
	"fmt"
	"log"

	"go-approvals/internal/clock"
	common_api "go-approvals/internal/common/api"
	"go-approvals/internal/config"
	"go-approvals/internal/database"
	"go-approvals/internal/features/approval"
	"go-approvals/internal/features/audit"
	"go-approvals/internal/features/notification"
	"go-approvals/internal/features/reminder"
	"go-approvals/internal/features/system"
	"go-approvals/internal/features/user"
	"go-approvals/internal/logger"
	"go-approvals/internal/middleware"
	"go-approvals/internal/tracing"
	"go-approvals/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := common_api.StatusFor(err)
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for i, route := range routes {
		log.Printf("Setting up route %d: %T\n", i+1, route)
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartTracing installs the stdout exporter when tracing is enabled.
func StartTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.TraceEnabled {
		return nil
	}
	if err := tracing.Init(cfg.AppId, cfg.TraceFile); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	logger.Info("tracing enabled", zap.String("file", cfg.TraceFile))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracing.Shutdown(ctx)
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,
			clock.System,

			// Initialize Repository
			user.NewUserRepository,
			audit.NewAuditRepository,
			approval.NewTaskRepository,

			user.NewUserService,
			audit.NewAuditService,
			approval.NewApprovalService,
			notification.NewHub,
			notification.NewNotifier,
			reminder.NewPolicy,
			reminder.NewEngine,
			reminder.NewScheduler,

			// Interface Adapters to satisfy Fx
			func(db *database.Database) database.Transactor { return db },
			func(db *database.Database) system.Pinger { return db },
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) approval.UserFinder { return r },
			func(r user.UserRepository) reminder.UserFinder { return r },
			func(s user.UserService) middleware.UserLookup { return s },

			// Initialize Controller
			user.NewUserController,
			approval.NewApprovalController,
			reminder.NewReminderController,
			system.NewHealthController,
			notification.NewLiveController,

			// Initialize API Routes
			AsRoute(user.NewUserApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(reminder.NewReminderApi),
			AsRoute(system.NewHealthApi),
			AsRoute(notification.NewLiveApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			StartTracing,
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			reminder.RegisterScheduler,
			reminder.RegisterPolicyWatcher,
		),
	)

	app.Run()
}
