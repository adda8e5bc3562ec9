package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthModeSupabase = "supabase"
	AuthModeLocal    = "local"

	ImageStoreCloudinary = "cloudinary"
	ImageStoreSupabase   = "supabase"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string
	AutoMigrate bool

	AuthMode               string // supabase: tokens issued by Supabase auth; local: signup/login served here
	SupabaseURL            string // e.g. https://vytctxgktgblnrsznhgw.supabase.co
	SupabaseServiceRoleKey string // service_role key, used for admin user actions and storage
	JWTSecret              string // HS256 secret that signs access tokens (Supabase project JWT secret)
	VerifyTokensRemotely   bool   // resolve tokens through /auth/v1/user instead of local HS256 verification
	AccessTokenTTL         time.Duration

	ImageStore             string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadPreset string
	SupabaseStorageBucket  string

	ModerationPolicy   string // permissive | strict
	CORSAllowedOrigins string // comma separated; "*" allows any origin
	HealthAdminKey     string
	SubmitRateLimit    int // submissions+uploads per user per hour; 0 disables

	BrevoAPIKey string // empty disables transactional email
	MailFrom    string
	SiteURL     string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("AUTH_MODE", AuthModeSupabase)
	viper.SetDefault("IMAGE_STORE", ImageStoreCloudinary)
	viper.SetDefault("CLOUDINARY_UPLOAD_PRESET", "ml_default")
	viper.SetDefault("SUPABASE_STORAGE_BUCKET", "property-images")
	viper.SetDefault("MODERATION_POLICY", "permissive")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("ACCESS_TOKEN_TTL", "1h")
	viper.SetDefault("SUBMIT_RATE_LIMIT", 20)
	viper.SetDefault("SITE_URL", "https://homelinks.in")

	brevoKey := viper.GetString("BREVO_API_KEY")
	if brevoKey == "" {
		brevoKey = viper.GetString("SENDINBLUE_API_KEY")
	}

	authMode := strings.ToLower(strings.TrimSpace(viper.GetString("AUTH_MODE")))
	if authMode != AuthModeLocal {
		authMode = AuthModeSupabase
	}
	imageStore := strings.ToLower(strings.TrimSpace(viper.GetString("IMAGE_STORE")))
	if imageStore != ImageStoreSupabase {
		imageStore = ImageStoreCloudinary
	}

	return &Config{
		Env:         viper.GetString("APP_ENV"),
		Port:        viper.GetString("PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),
		RedisURL:    viper.GetString("REDIS_URL"),
		AutoMigrate: viper.GetBool("AUTO_MIGRATE"),

		AuthMode:               authMode,
		SupabaseURL:            strings.TrimRight(viper.GetString("SUPABASE_URL"), "/"),
		SupabaseServiceRoleKey: viper.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		JWTSecret:              viper.GetString("SUPABASE_JWT_SECRET"),
		VerifyTokensRemotely:   viper.GetBool("VERIFY_TOKENS_REMOTELY"),
		AccessTokenTTL:         viper.GetDuration("ACCESS_TOKEN_TTL"),

		ImageStore:             imageStore,
		CloudinaryCloudName:    viper.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       viper.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    viper.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryUploadPreset: viper.GetString("CLOUDINARY_UPLOAD_PRESET"),
		SupabaseStorageBucket:  viper.GetString("SUPABASE_STORAGE_BUCKET"),

		ModerationPolicy:   strings.ToLower(viper.GetString("MODERATION_POLICY")),
		CORSAllowedOrigins: viper.GetString("CORS_ALLOWED_ORIGINS"),
		HealthAdminKey:     viper.GetString("HEALTH_ADMIN_KEY"),
		SubmitRateLimit:    viper.GetInt("SUBMIT_RATE_LIMIT"),

		BrevoAPIKey: brevoKey,
		MailFrom:    viper.GetString("MAIL_FROM"),
		SiteURL:     strings.TrimRight(viper.GetString("SITE_URL"), "/"),
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
