package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"freshfetch/config"
	"freshfetch/controllers"
	"freshfetch/libs"
	"freshfetch/middleware"
	"freshfetch/repositories"
	"freshfetch/routes"
	"freshfetch/services"
	"freshfetch/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const authRateBurst = 5

type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Products  *services.ProductService
	Cart      *services.CartService
	Orders    *services.OrderService
	Payments  *services.PaymentService
	Uploads   *services.UploadService
	Dashboard *services.DashboardService
}

// Integrations are the optional external providers; nil means not configured.
type Integrations struct {
	Cache    *services.ProductCache
	Mailer   services.OrderMailer
	Payments services.PaymentGateway
	Uploader services.ImageUploader
}

func NewServices(store *repositories.Store, in Integrations) *Services {
	return &Services{
		Auth:      services.NewAuthService(store.Users),
		Users:     services.NewUserService(store.Users),
		Products:  services.NewProductService(store.Products, store.Users, in.Cache),
		Cart:      services.NewCartService(store.Products),
		Orders:    services.NewOrderService(store.Orders, store.Products, in.Cache, in.Mailer),
		Payments:  services.NewPaymentService(in.Payments),
		Uploads:   services.NewUploadService(in.Uploader),
		Dashboard: services.NewDashboardService(store.Products, store.Orders, store.Users),
	}
}

var validatorsOnce sync.Once

func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	validatorsOnce.Do(func() {
		if err := utils.RegisterValidators(); err != nil {
			slog.Error("failed to register validators", "error", err)
		}
	})

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		otelgin.Middleware(config.ServiceName),
		middleware.CORSMiddleware(cfg.OriginURL),
	)

	routes.SetupRoutes(router, routes.Controllers{
		Auth:      controllers.NewAuthController(svc.Auth, cfg.SessionCookie, int(cfg.JWTExpiry.Seconds()), cfg.IsProduction()),
		User:      controllers.NewUserController(svc.Users),
		Product:   controllers.NewProductController(svc.Products),
		Cart:      controllers.NewCartController(svc.Cart),
		Order:     controllers.NewOrderController(svc.Orders),
		Payment:   controllers.NewPaymentController(svc.Payments),
		Upload:    controllers.NewUploadController(svc.Uploads),
		Dashboard: controllers.NewDashboardController(svc.Dashboard),
	}, routes.Options{
		SessionCookie:  cfg.SessionCookie,
		ReadOnlyEmails: cfg.ReadOnlyEmail,
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.AuthRateLimit, authRateBurst),
	})
	return router
}

// OpenStore connects the backend selected by DB_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (*repositories.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := repositories.NewMongoStore(client.Database(cfg.MongoDatabase))
		store.Close = func() { config.DisconnectMongo(client) }
		return store, nil
	case config.DriverPostgres:
		pool, err := config.ConnectPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := repositories.NewPostgresStore(pool)
		store.Close = func() { config.ClosePostgres(pool) }
		return store, nil
	case config.DriverMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// NewIntegrations builds the optional providers, leaving the interface nil when one is not configured.
func NewIntegrations(ctx context.Context, cfg *config.Config) (Integrations, func()) {
	redisClient := config.ConnectRedis(ctx, cfg)
	in := Integrations{Cache: services.NewProductCache(redisClient)}

	if mailer, err := libs.NewEmailService(cfg); err != nil {
		slog.Info("order confirmation emails disabled", "reason", err)
	} else {
		in.Mailer = mailer
	}

	if gateway, err := libs.NewStripeGateway(cfg.StripeSecretKey); err != nil {
		slog.Info("payments disabled", "reason", err)
	} else {
		in.Payments = gateway
	}

	if cld, err := libs.NewCloudinaryService(cfg); err != nil {
		slog.Info("image uploads disabled", "reason", err)
	} else {
		in.Uploader = cld
	}

	return in, func() { config.CloseRedis(redisClient) }
}

type App struct {
	Router   *gin.Engine
	Services *Services
	close    []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == config.DriverPostgres {
		if err := config.RunMigrations(cfg.PostgresDSN()); err != nil {
			store.Close()
			return nil, err
		}
	}

	in, closeIntegrations := NewIntegrations(ctx, cfg)
	svc := NewServices(store, in)

	return &App{
		Router:   NewRouter(cfg, svc),
		Services: svc,
		close:    []func(){closeIntegrations, store.Close},
	}, nil
}

// Close waits for pending confirmation emails, then releases connections.
func (a *App) Close() {
	a.Services.Orders.Wait()
	for _, fn := range a.close {
		fn()
	}
}
