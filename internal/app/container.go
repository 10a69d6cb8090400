package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/config"
	httpx "github.com/Mulandii/Clinic-cms/internal/http"
	"github.com/Mulandii/Clinic-cms/internal/http/handlers"
	"github.com/Mulandii/Clinic-cms/internal/http/middleware"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/auth"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/database"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/encryption"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/messaging"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/notifications"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/repositories"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
	"github.com/Mulandii/Clinic-cms/internal/services"
)

// limiterIdleTTL is how long an idle client IP keeps its rate-limit bucket
const limiterIdleTTL = 10 * time.Minute

// Infrastructure is the set of external connections the container is built on.
// Notifier and Publisher are optional; when nil they are built from config.
type Infrastructure struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Notifier  domain.NotificationService
	Publisher domain.AuditPublisher
	Registry  *prometheus.Registry
}

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics

	// Repositories
	UserRepo         domain.IdentityRepository
	CodeRepo         domain.CodeRepository
	RevocationRepo   domain.RevocationRepository
	ResetTokenRepo   domain.ResetTokenRepository
	AuditRepo        domain.AuditRepository
	AppointmentRepo  domain.AppointmentRepository
	RecordRepo       domain.RecordRepository
	InventoryRepo    domain.InventoryRepository
	NotificationRepo domain.NotificationRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	Credentials     domain.CredentialStore
	Cipher          domain.RecordCipher
	Audit           *services.AuditServiceImpl
	AuditPublisher  domain.AuditPublisher
	RoleResolver    domain.RoleResolver
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	PolicySvc       domain.PolicyService
	UserSvc         domain.UserService
	AppointmentSvc  domain.AppointmentService
	RecordSvc       domain.RecordService
	InventorySvc    domain.InventoryService
	InboxSvc        domain.InboxService

	Router *gin.Engine
}

// NewContainer connects to Postgres and Redis and assembles every dependency
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	rdb := database.NewRedis(cfg)
	if err := rdb.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return Assemble(cfg, logger, Infrastructure{DB: db, Redis: rdb.Client})
}

// Assemble builds the container on already-open connections
func Assemble(cfg *config.Config, logger *zap.Logger, infra Infrastructure) (*Container, error) {
	c := &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              infra.DB,
		RedisClient:     infra.Redis,
		Registry:        infra.Registry,
		NotificationSvc: infra.Notifier,
		AuditPublisher:  infra.Publisher,
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	c.Metrics = metrics.New(c.Registry)

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	c.initRouter()
	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.CodeRepo = repositories.NewCodeRepository(c.RedisClient)
	c.RevocationRepo = repositories.NewRevocationRepository(c.RedisClient)
	c.ResetTokenRepo = repositories.NewResetTokenRepository(c.RedisClient)
	c.AuditRepo = repositories.NewAuditRepository(c.DB)
	c.AppointmentRepo = repositories.NewAppointmentRepository(c.DB)
	c.RecordRepo = repositories.NewRecordRepository(c.DB)
	c.InventoryRepo = repositories.NewInventoryRepository(c.DB)
	c.NotificationRepo = repositories.NewNotificationRepository(c.DB)
}

func (c *Container) initServices() error {
	cfg := c.Config

	keyring, err := encryption.ParseKeyring(cfg.RecordKeys, cfg.RecordActiveKey)
	if err != nil {
		return fmt.Errorf("record keys: %w", err)
	}
	c.Cipher = keyring

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.PendingTTL)

	if c.NotificationSvc == nil {
		var sms notifications.SMSSender
		if cfg.TwilioSID != "" {
			sms = notifications.NewTwilioSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
		}
		email := notifications.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		c.NotificationSvc = notifications.NewNotificationService(sms, email, c.Logger.Named("notify"))
	}

	if c.AuditPublisher == nil && cfg.AMQPURL != "" {
		c.AuditPublisher = messaging.NewAuditPublisher(cfg.AMQPURL, cfg.AuditQueue)
	}
	c.Audit = services.NewAuditService(c.AuditRepo, c.AuditPublisher, cfg.AuditWriteTimeout, c.Metrics, c.Logger.Named("audit"))

	switch cfg.AuthProvider {
	case config.ProviderGoTrue:
		c.Credentials = auth.NewGoTrueCredentialStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.AuthHTTPTimeout, c.Logger.Named("gotrue"))
	default:
		c.Credentials = auth.NewDBCredentialStore(
			c.UserRepo,
			c.PasswordSvc,
			c.ResetTokenRepo,
			c.NotificationSvc,
			cfg.ResetURL,
			cfg.ResetTTL,
			c.Logger.Named("credentials"),
		)
	}

	c.RoleResolver = services.NewRoleResolver(c.UserRepo, cfg.RoleCacheTTL)
	c.OTPSvc = services.NewOTPService(
		c.CodeRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.NotificationSvc,
		services.OTPConfig{
			Length:      cfg.OTP_Length,
			TTL:         cfg.OTP_TTL,
			MaxAttempts: cfg.OTP_MaxAttempts,
			Retention:   cfg.OTP_Retention,
			Channel:     cfg.OTP_Channel,
		},
		c.Logger.Named("otp"),
	)
	c.AuthSvc = services.NewAuthService(
		c.Credentials,
		c.RoleResolver,
		c.OTPSvc,
		c.TokenSvc,
		c.RevocationRepo,
		c.Audit,
		c.Metrics,
		c.Logger.Named("auth"),
	)

	cas, err := auth.NewCasbinService(c.DB, config.DefaultRouteRules())
	if err != nil {
		return err
	}
	c.PolicySvc = services.NewPolicyService(cas.E)

	userSvc := services.NewUserService(c.UserRepo, c.PasswordSvc, c.RoleResolver, c.Audit)
	if cfg.AuthProvider == config.ProviderGoTrue {
		userSvc.WithProviderAccounts()
	}
	c.UserSvc = userSvc
	c.AppointmentSvc = services.NewAppointmentService(c.AppointmentRepo)
	c.RecordSvc = services.NewRecordService(c.RecordRepo, c.Cipher, c.Audit)
	c.InventorySvc = services.NewInventoryService(c.InventoryRepo)
	c.InboxSvc = services.NewInboxService(c.NotificationRepo)

	return nil
}

func (c *Container) initRouter() {
	if c.Config.GinMode != "" {
		gin.SetMode(c.Config.GinMode)
	}

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.Logger.Named("http"))
	resourceH := handlers.NewResourceHandlers(
		c.UserSvc,
		c.AppointmentSvc,
		c.RecordSvc,
		c.InventorySvc,
		c.InboxSvc,
		c.Logger.Named("http"),
	)
	policyH := handlers.NewPolicyHandlers(c.PolicySvc)

	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.RevocationRepo, c.RoleResolver, c.Metrics, c.Logger.Named("gate"))
	casbinMW := middleware.NewCasbinMW(c.PolicySvc, c.Audit, c.Metrics, c.Logger.Named("gate"))
	limiter := middleware.NewIPRateLimiter(c.Config.RateLimitPerSecond, c.Config.RateLimitBurst, limiterIdleTTL)

	c.Router = httpx.BuildRouter(authH, resourceH, policyH, jwtMW, casbinMW, limiter, httpx.Observability{
		Logger:   c.Logger.Named("access"),
		Metrics:  c.Metrics,
		Gatherer: c.Registry,
	})
}

// Close waits for pending audit writes and closes all connections
func (c *Container) Close() error {
	if c.Audit != nil {
		c.Audit.Wait()
	}
	if p, ok := c.AuditPublisher.(interface{ Close() error }); ok {
		if err := p.Close(); err != nil {
			c.Logger.Warn("audit publisher close", zap.Error(err))
		}
	}

	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
