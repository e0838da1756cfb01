package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPort           = "3001"
	DefaultBucket         = "audio-recordings"
	DefaultStorageBackend = "supabase"
	DefaultMaxUploadBytes = int64(25 << 20)
)

// Config holds everything the gate service and the CLI client read from
// the environment. Values come from an optional YAML file first, then
// environment variables, then command line flags.
type Config struct {
	Port        string   `yaml:"port"`
	DatabaseURL string   `yaml:"database_url"`
	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`

	SharedPassword       string   `yaml:"shared_password"`
	SharedPasswordBcrypt string   `yaml:"shared_password_bcrypt"`
	AllowedEmails        []string `yaml:"allowed_emails"`

	// JWTSecret verifies provider issued access tokens.
	JWTSecret     string `yaml:"jwt_secret"`
	SessionSecret string `yaml:"session_secret"`

	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	Storage        StorageConfig `yaml:"storage"`

	// Client side settings.
	APIURL string `yaml:"api_url"`
	// SupabasePublicURL is where clients reach the provider's auth API.
	// Empty means storage.supabase_url.
	SupabasePublicURL string `yaml:"supabase_public_url"`
	SupabaseAnonKey   string `yaml:"supabase_anon_key"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Bucket  string `yaml:"bucket"`

	SupabaseURL        string `yaml:"supabase_url"`
	SupabaseServiceKey string `yaml:"supabase_service_key"`

	GCSCredentials string `yaml:"gcs_credentials"`

	AWSRegion string `yaml:"aws_region"`

	DriveCredentialsFile string `yaml:"drive_credentials_file"`
	DriveFolderID        string `yaml:"drive_folder_id"`
}

func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
		MaxUploadBytes: DefaultMaxUploadBytes,
		Storage: StorageConfig{
			Backend: DefaultStorageBackend,
			Bucket:  DefaultBucket,
		},
		APIURL: "http://localhost:" + DefaultPort,
	}
}

// Load reads the YAML file at path (if any) and applies environment
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("SHARED_PASSWORD", &c.SharedPassword)
	str("SHARED_PASSWORD_BCRYPT", &c.SharedPasswordBcrypt)
	str("JWT_SECRET", &c.JWTSecret)
	str("SESSION_SECRET", &c.SessionSecret)
	str("API_URL", &c.APIURL)
	str("SUPABASE_PUBLIC_URL", &c.SupabasePublicURL)
	str("SUPABASE_ANON_KEY", &c.SupabaseAnonKey)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_BUCKET", &c.Storage.Bucket)
	str("SUPABASE_URL", &c.Storage.SupabaseURL)
	str("SUPABASE_SERVICE_ROLE_KEY", &c.Storage.SupabaseServiceKey)
	str("GCS_CREDENTIALS", &c.Storage.GCSCredentials)
	str("AWS_REGION", &c.Storage.AWSRegion)
	str("DRIVE_JSON", &c.Storage.DriveCredentialsFile)
	str("GOOGLE_DRIVE_FOLDER_ID", &c.Storage.DriveFolderID)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}

	var emails []string
	for _, name := range []string{"ALLOWED_EMAIL_1", "ALLOWED_EMAIL_2"} {
		if v, ok := lookup(name); ok && v != "" {
			emails = append(emails, v)
		}
	}
	if len(emails) > 0 {
		c.AllowedEmails = emails
	}

	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "MAX_UPLOAD_BYTES")
		}
		c.MaxUploadBytes = n
	}
	return nil
}

// AuthURL is the provider URL clients sign in against.
func (c *Config) AuthURL() string {
	if c.SupabasePublicURL != "" {
		return c.SupabasePublicURL
	}
	return c.Storage.SupabaseURL
}

// Validate reports settings the gate service cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "database_url")
	}
	if c.SharedPassword == "" && c.SharedPasswordBcrypt == "" {
		missing = append(missing, "shared_password")
	}
	if len(c.AllowedEmails) == 0 {
		missing = append(missing, "allowed_emails")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "jwt_secret")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "session_secret")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
