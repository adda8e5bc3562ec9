package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	authsvc "homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/application/emails"
	healthsvc "homelinks-backend/internal/application/health"
	"homelinks-backend/internal/application/moderation"
	propertysvc "homelinks-backend/internal/application/properties"
	uploadsvc "homelinks-backend/internal/application/uploads"
	usersvc "homelinks-backend/internal/application/user"
	"homelinks-backend/internal/config"
	"homelinks-backend/internal/infrastructure/database"
	"homelinks-backend/internal/infrastructure/supabase"
	accounthandler "homelinks-backend/internal/interfaces/handlers/account"
	adminhandler "homelinks-backend/internal/interfaces/handlers/admin"
	authhandler "homelinks-backend/internal/interfaces/handlers/auth"
	healthhandler "homelinks-backend/internal/interfaces/handlers/health"
	propertyhandler "homelinks-backend/internal/interfaces/handlers/properties"
	uploadhandler "homelinks-backend/internal/interfaces/handlers/uploads"
	"homelinks-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Five images of 5 MB plus the form fields.
const bodyLimit = 30 << 20

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the collaborators the HTTP surface is assembled from.
type Deps struct {
	DB       *gorm.DB
	Verifier authsvc.TokenVerifier
	Policy   moderation.TransitionPolicy
	Config   *config.Config

	// Rdb backs stats, the error log, rate limits and moderation events. Optional.
	Rdb *redis.Client

	// Provision creates the local user row on first sight of a valid token.
	Provision  bool
	ImageStore uploadsvc.ImageStore
	AuthAdmin  moderation.AuthAdmin

	// Issuer is set only in local auth mode.
	Issuer    *authsvc.Issuer
	Externals []healthsvc.External

	// Mailer sends welcome and moderation decision emails. Optional.
	Mailer emails.Sender
}

// CreateApp connects to the database and Redis and builds the app from cfg.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, errors.New("DATABASE_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info().Msg("database: schema migrated")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis: ping failed, continuing without guarantees")
		}
		cancel()
	} else {
		log.Warn().Msg("redis: REDIS_URL not set, stats and rate limits disabled")
	}

	deps := Deps{
		DB:        db,
		Rdb:       rdb,
		Policy:    moderation.PolicyFor(cfg.ModerationPolicy),
		Config:    cfg,
		Provision: cfg.AuthMode == config.AuthModeSupabase,
	}

	var sb *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceRoleKey != "" {
		sb = &supabase.Client{BaseURL: cfg.SupabaseURL, ServiceKey: cfg.SupabaseServiceRoleKey}
		deps.AuthAdmin = sb
		deps.Externals = append(deps.Externals, healthsvc.External{Name: "supabase", URL: cfg.SupabaseURL + "/auth/v1/health"})
	}

	switch {
	case cfg.AuthMode == config.AuthModeSupabase && cfg.VerifyTokensRemotely:
		if sb == nil {
			return nil, nil, nil, errors.New("VERIFY_TOKENS_REMOTELY needs SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
		deps.Verifier = &authsvc.GoTrueVerifier{Client: sb}
	default:
		if cfg.JWTSecret == "" {
			return nil, nil, nil, errors.New("SUPABASE_JWT_SECRET is required")
		}
		deps.Verifier = &authsvc.JWTVerifier{Secret: []byte(cfg.JWTSecret)}
	}
	if cfg.AuthMode == config.AuthModeLocal {
		deps.Issuer = &authsvc.Issuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.AccessTokenTTL}
	}

	switch cfg.ImageStore {
	case config.ImageStoreSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceRoleKey == "" {
			return nil, nil, nil, errors.New("IMAGE_STORE=supabase needs SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
		deps.ImageStore = &uploadsvc.SupabaseStore{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseServiceRoleKey, Bucket: cfg.SupabaseStorageBucket}
	default:
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			log.Warn().Msg("cloudinary: credentials missing, image uploads will fail")
		}
		deps.ImageStore = &uploadsvc.CloudinaryStore{
			CloudName:    cfg.CloudinaryCloudName,
			APIKey:       cfg.CloudinaryAPIKey,
			APISecret:    cfg.CloudinaryAPISecret,
			UploadPreset: cfg.CloudinaryUploadPreset,
		}
		deps.Externals = append(deps.Externals, healthsvc.External{Name: "cloudinary", URL: "https://api.cloudinary.com"})
	}

	if cfg.BrevoAPIKey != "" {
		deps.Mailer = &emails.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom, SiteURL: cfg.SiteURL}
	} else {
		log.Info().Msg("email: BREVO_API_KEY not set, notifications disabled")
	}

	middleware.MarkStart(context.Background(), rdb, time.Now())
	return NewApp(deps), db, rdb, nil
}

// NewApp mounts every route on a fresh Fiber app.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(d.Rdb),
		EnableTrustedProxyCheck: true,
		BodyLimit:               bodyLimit,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.ErrorLog(d.Rdb))
	app.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: middleware.ParseOrigins(cfg.CORSAllowedOrigins)}))
	app.Use(middleware.HealthMarker(d.Rdb))

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		DB:             &gormDBPinger{db: d.DB},
		Externals:      d.Externals,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	authn := &authsvc.Authenticator{DB: d.DB, Verifier: d.Verifier, Provision: d.Provision}
	bearer := middleware.RequireBearer(authn)
	admin := middleware.RequireAdmin(authn)
	submitLimit := middleware.RateLimit(d.Rdb, cfg.SubmitRateLimit, time.Hour, "submit")

	uploads := &uploadsvc.Service{Store: d.ImageStore}
	properties := &propertysvc.Service{DB: d.DB, Uploads: uploads}
	mod := &moderation.Service{DB: d.DB, Policy: d.Policy, AuthAdmin: d.AuthAdmin}
	var publishers moderation.Publishers
	if d.Rdb != nil {
		publishers = append(publishers, &moderation.RedisPublisher{Rdb: d.Rdb})
	}
	if d.Mailer != nil {
		publishers = append(publishers, &emails.ModerationNotifier{DB: d.DB, Sender: d.Mailer})
	}
	if len(publishers) > 0 {
		mod.Publisher = publishers
	}
	users := &usersvc.Service{DB: d.DB, Remover: mod}

	// Auth
	ah := &authhandler.Handlers{Sessions: authn}
	if d.Mailer != nil {
		ah.Mailer = d.Mailer
	}
	if d.Issuer != nil {
		ah.Local = &authsvc.LocalAccounts{DB: d.DB, Issuer: d.Issuer}
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Get("/session", ah.Session)
	if ah.Local != nil {
		authGroup.Post("/signup", middleware.RateLimit(d.Rdb, 10, time.Hour, "signup"), ah.Signup)
		authGroup.Post("/login", middleware.RateLimit(d.Rdb, 30, 15*time.Minute, "login"), ah.Login)
	}

	// Properties
	ph := &propertyhandler.Handlers{Service: properties}
	pg := app.Group("/api/v1/properties")
	pg.Get("/", ph.Search)
	pg.Get("/mine", bearer, ph.Mine)
	pg.Get("/:id", ph.Get)
	pg.Post("/", bearer, submitLimit, ph.Submit)

	// Account
	acc := &accounthandler.Handlers{Users: users}
	app.Get("/api/v1/account/profile", bearer, acc.Profile)

	// Edge-function compatible endpoints
	fn := app.Group("/functions/v1")
	uph := &uploadhandler.Handlers{Service: uploads}
	fn.Post("/upload-property-image", bearer, submitLimit, uph.UploadPropertyImages)
	fn.Post("/user-self-delete", bearer, acc.DeleteSelf)

	adm := &adminhandler.Handlers{Properties: properties, Moderation: mod, Users: users}
	fn.Get("/admin-properties", admin, adm.ListProperties)
	fn.Get("/admin-properties/:id/events", admin, adm.PropertyEvents)
	fn.Post("/admin-property-actions", admin, adm.PropertyAction)
	fn.Get("/admin-users", admin, adm.ListUsers)
	fn.Post("/admin-actions", admin, adm.UserAction)

	return app
}
