package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

type SessionStoreType string

const (
	SessionStoreDatabase SessionStoreType = "database"
	SessionStoreMemory   SessionStoreType = "memory"
	SessionStoreRedis    SessionStoreType = "redis"
)

// MinBcryptCost is the lowest bcrypt work factor accepted for the bootstrap user.
const MinBcryptCost = 10

// BirthdayLayout is the date layout expected for celebration.birthday.
const BirthdayLayout = "2006-01-02"

// Config holds the configuration for the keepsake server.
type Config struct {
	// Listen is the address the keepsake server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the public base URL of the keepsake server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to sign session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// Auth holds the bootstrap user configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Session holds the session lifecycle and storage configuration.
	Session *SessionConfig `yaml:"session" mapstructure:"session"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Celebration holds the content shown on the protected pages.
	Celebration *CelebrationConfig `yaml:"celebration" mapstructure:"celebration"`
	// Gallery holds the media gallery configuration.
	Gallery *GalleryConfig `yaml:"gallery" mapstructure:"gallery"`
	// Email holds the login notification configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
}

// AuthConfig holds the credentials of the single bootstrap user.
type AuthConfig struct {
	// Username is the name of the bootstrap user. Usernames are case-sensitive.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the plaintext password hashed once when the bootstrap user is created.
	Password string `yaml:"password" mapstructure:"password"`
	// PasswordHash is a precomputed bcrypt hash, used instead of Password when set.
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash"`
	// BcryptCost is the bcrypt work factor used to hash Password.
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
}

// SessionConfig holds the session configuration.
type SessionConfig struct {
	// CookieName is the name of the cookie carrying the session token.
	CookieName string `yaml:"cookie_name" mapstructure:"cookie_name"`
	// SecureCookie sets the Secure flag on session cookies. Enable it behind HTTPS.
	SecureCookie bool `yaml:"secure_cookie" mapstructure:"secure_cookie"`
	// IdleTimeout is how long a browser-session login stays valid without activity.
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// RememberDuration is the fixed lifetime of a "remember me" login.
	RememberDuration time.Duration `yaml:"remember_duration" mapstructure:"remember_duration"`
	// Store selects where sessions are kept: "database", "memory" or "redis".
	Store SessionStoreType `yaml:"store" mapstructure:"store"`
	// RedisURL is the address or URL of the redis server if Store is "redis".
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// PruneInterval is how often expired sessions are removed from the database.
	PruneInterval time.Duration `yaml:"prune_interval" mapstructure:"prune_interval"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Type is the database driver: "sqlite" or "postgres".
	Type DatabaseType `yaml:"type" mapstructure:"type"`
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the postgres connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// CelebrationConfig holds the content of the protected pages.
type CelebrationConfig struct {
	// Recipient is the display name used on the pages.
	Recipient string `yaml:"recipient" mapstructure:"recipient"`
	// Birthday is the recipient's birthday in YYYY-MM-DD format.
	Birthday string `yaml:"birthday" mapstructure:"birthday"`
	// Message is the text shown on the birthday wish page.
	Message string `yaml:"message" mapstructure:"message"`
	// VideoURL is the source of the video on the remember page.
	VideoURL string `yaml:"video_url" mapstructure:"video_url"`
}

// GalleryConfig holds the media gallery configuration.
type GalleryConfig struct {
	// Path is the directory containing the gallery images.
	Path string `yaml:"path" mapstructure:"path"`
	// ThumbnailCache is the directory where scaled thumbnails are stored.
	ThumbnailCache string `yaml:"thumbnail_cache" mapstructure:"thumbnail_cache"`
	// ThumbnailWidth is the maximum width of a thumbnail in pixels.
	ThumbnailWidth int `yaml:"thumbnail_width" mapstructure:"thumbnail_width"`
	// ThumbnailHeight is the maximum height of a thumbnail in pixels.
	ThumbnailHeight int `yaml:"thumbnail_height" mapstructure:"thumbnail_height"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether login notifications are sent.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// To is the address that receives the notifications.
	To string `yaml:"to" mapstructure:"to"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	bindNestedEnv(v)
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("KEEPSAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.keepsake")
		v.AddConfigPath("/etc/keepsake")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("server_url", "http://localhost:5000")
	v.SetDefault("session_key", "")

	v.SetDefault("auth.username", "GEET")
	v.SetDefault("auth.bcrypt_cost", MinBcryptCost)

	v.SetDefault("session.cookie_name", "keepsake_session")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("session.idle_timeout", 24*time.Hour)
	v.SetDefault("session.remember_duration", 30*24*time.Hour)
	v.SetDefault("session.store", SessionStoreDatabase)
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.prune_interval", 15*time.Minute)

	v.SetDefault("database.type", DatabaseTypeSQLite)
	v.SetDefault("database.path", "./data/keepsake.db")

	v.SetDefault("celebration.recipient", "Geet")
	v.SetDefault("celebration.birthday", "")
	v.SetDefault("celebration.message", "Happy birthday!")
	v.SetDefault("celebration.video_url", "")

	v.SetDefault("gallery.path", "./data/gallery")
	v.SetDefault("gallery.thumbnail_cache", "./data/cache/thumbnails")
	v.SetDefault("gallery.thumbnail_width", 480)
	v.SetDefault("gallery.thumbnail_height", 480)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "Keepsake")
	v.SetDefault("email.to", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)
}

// Secrets deliberately have no default, so automatic env binding doesn't pick them up.
func bindNestedEnv(v *viper.Viper) {
	v.MustBindEnv("auth.password", "KEEPSAKE_AUTH_PASSWORD")
	v.MustBindEnv("auth.password_hash", "KEEPSAKE_AUTH_PASSWORD_HASH")
	v.MustBindEnv("database.dsn", "KEEPSAKE_DATABASE_DSN", "DATABASE_URL")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing keepsake config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}
	if len(c.SessionKey) < 32 {
		log.Warn("session key is shorter than 32 bytes, consider using a longer one")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}
	if c.Auth.Username == "" {
		return fmt.Errorf("auth username is required")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("either auth password or auth password hash is required")
	}
	if c.Auth.BcryptCost < MinBcryptCost || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth bcrypt cost must be between %d and 31", MinBcryptCost)
	}

	if c.Session == nil {
		return fmt.Errorf("missing session config")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive")
	}
	if c.Session.RememberDuration <= 0 {
		return fmt.Errorf("session remember duration must be positive")
	}
	switch c.Session.Store {
	case SessionStoreDatabase:
		if c.Session.PruneInterval <= 0 {
			return fmt.Errorf("session prune interval must be positive when sessions are kept in the database")
		}
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when the redis session store is enabled") //nolint:staticcheck
		}
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Type {
	case DatabaseTypeSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case DatabaseTypePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}

	if c.Celebration == nil {
		c.Celebration = &CelebrationConfig{}
	}
	if c.Celebration.Birthday != "" {
		if _, err := time.Parse(BirthdayLayout, c.Celebration.Birthday); err != nil {
			return fmt.Errorf("celebration birthday must be in YYYY-MM-DD format: %w", err)
		}
	}

	if c.Gallery == nil {
		c.Gallery = &GalleryConfig{}
	}
	if c.Gallery.ThumbnailWidth <= 0 || c.Gallery.ThumbnailHeight <= 0 {
		return fmt.Errorf("gallery thumbnail dimensions must be positive")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email SMTP host is required when email notifications are enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("email from address is required when email notifications are enabled")
		}
		if c.Email.To == "" {
			return fmt.Errorf("email recipient is required when email notifications are enabled")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = urlSanitize(c.Listen)

	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}

	if c.Celebration != nil {
		c.Celebration.VideoURL = strings.TrimSpace(c.Celebration.VideoURL)
		c.Celebration.Birthday = strings.TrimSpace(c.Celebration.Birthday)
	}

	if c.Session != nil {
		c.Session.RedisURL = strings.TrimSpace(c.Session.RedisURL)
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// BirthdayDate returns the parsed birthday and whether one is configured.
func (c *CelebrationConfig) BirthdayDate() (time.Time, bool) {
	if c == nil || c.Birthday == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(BirthdayLayout, c.Birthday)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
