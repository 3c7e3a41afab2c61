package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/geoform/intake-service/internal/utils"
)

type Config struct {
	AppName string
	AppPort string `env:"PORT" envDefault:"3000"`
	Env     string `env:"ENV"`

	MongoURI            string        `env:"MONGODB_URI"`
	MongoDatabase       string        `env:"MONGODB_DATABASE"`
	MongoCollection     string        `env:"MONGODB_COLLECTION" envDefault:"users"`
	MongoConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MongoUniqueEmail    bool          `env:"MONGODB_UNIQUE_EMAIL"`
	MongoEnforceSchema  bool          `env:"MONGODB_ENFORCE_SCHEMA"`

	StaticDir          string   `env:"STATIC_DIR" envDefault:"./public"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	DashboardPath      string   `env:"DASHBOARD_PATH" envDefault:"/dashboard.html"`

	BWSAccessToken    string `env:"BWS_ACCESS_TOKEN"`
	BWSOrganizationID string `env:"BWS_ORGANIZATION_ID"`
	BWSProject        string `env:"BWS_PROJECT"`

	LDSDKKey      string `env:"LD_SDK_KEY"`
	LDContextKey  string `env:"LD_CONTEXT_KEY" envDefault:"intake-service"`
	LDContextKind string `env:"LD_CONTEXT_KIND" envDefault:"service"`

	// Feature toggles. Env values are the defaults; LaunchDarkly overrides
	// them when LD_SDK_KEY is set.
	LDFlag_DebugRoutes        bool `env:"DEBUG_ROUTES"`
	LDFlag_DashboardRedirect  bool `env:"DASHBOARD_REDIRECT"`
	LDFlag_SeedDbWithTestData bool `env:"SEED_DB_WITH_TEST_DATA"`
}

const (
	LDConnectionTimeout = 5 * time.Second
	defaultDatabase     = "test"
)

// AppName can be overridden at build time with -ldflags.
var AppName string

// LoadConfig reads .env (when present), the process environment, and the
// optional secret and flag providers. Any configuration error is fatal.
func LoadConfig() *Config {
	if AppName == "" {
		AppName = utils.DefaultAppName
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.Logger.WithError(err).Fatal("Failed to read .env file")
	}

	cfg, err := FromEnvironment(nil)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.BWSAccessToken != "" {
		if err := cfg.applyBWSSecrets(); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to fetch secrets from BWS")
		}
	}

	if cfg.LDSDKKey != "" {
		if err := cfg.applyLDFlags(); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to evaluate LaunchDarkly flags")
		}
	}

	if err := cfg.resolveDatabase(); err != nil {
		utils.Logger.WithError(err).Fatal("Invalid MongoDB configuration")
	}

	utils.Logger.Infof("Loaded config for %s (%s)", cfg.AppName, cfg.EnvironmentName())
	return cfg
}

// FromEnvironment parses Config from environ, or from the process
// environment when environ is nil. It does not contact any provider.
func FromEnvironment(environ map[string]string) (*Config, error) {
	cfg := &Config{AppName: AppName}
	if cfg.AppName == "" {
		cfg.AppName = utils.DefaultAppName
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether error detail such as stack traces may be
// sent to clients. It requires ENV=development explicitly.
func (c *Config) IsDevelopment() bool {
	return c.Env == utils.EnvDevelopment
}

// EnvironmentName is the environment reported to clients and used to pick
// the secrets project; an unset ENV reads as development.
func (c *Config) EnvironmentName() string {
	if c.Env == "" {
		return utils.EnvDevelopment
	}
	return c.Env
}

// resolveDatabase validates the URI and picks the database name: explicit
// MONGODB_DATABASE, then the URI path, then "test".
func (c *Config) resolveDatabase() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI is missing")
	}
	cs, err := connstring.ParseAndValidate(c.MongoURI)
	if err != nil {
		return fmt.Errorf("parsing MONGODB_URI: %w", err)
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = cs.Database
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = defaultDatabase
	}
	return nil
}

func (c *Config) applyBWSSecrets() error {
	client, err := utils.NewBWSSecretsClient(c.BWSAccessToken, c.BWSOrganizationID)
	if err != nil {
		return err
	}
	defer client.Close()

	project := c.BWSProject
	if project == "" {
		project = fmt.Sprintf("%s-%s", c.AppName, c.EnvironmentName())
	}
	utils.Logger.Debugf("Fetching secrets from BWS project %s", project)
	secrets, err := client.GetBWSSecrets(project)
	if err != nil {
		return err
	}
	if uri, ok := secrets["MONGODB_URI"]; ok && uri != "" {
		c.MongoURI = uri
	}
	return nil
}

func (c *Config) applyLDFlags() error {
	ldClient, err := ld.MakeClient(c.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("creating LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		return errors.New("LaunchDarkly client failed to initialize")
	}

	ctx := ldcontext.NewWithKind(ldcontext.Kind(c.LDContextKind), c.LDContextKey)

	if c.LDFlag_DebugRoutes, err = ldClient.BoolVariation("debug_routes", ctx, c.LDFlag_DebugRoutes); err != nil {
		return fmt.Errorf("debug_routes flag: %w", err)
	}
	utils.Logger.Debugf("debug_routes flag: %t", c.LDFlag_DebugRoutes)

	if c.LDFlag_DashboardRedirect, err = ldClient.BoolVariation("dashboard_redirect", ctx, c.LDFlag_DashboardRedirect); err != nil {
		return fmt.Errorf("dashboard_redirect flag: %w", err)
	}
	utils.Logger.Debugf("dashboard_redirect flag: %t", c.LDFlag_DashboardRedirect)

	if c.LDFlag_SeedDbWithTestData, err = ldClient.BoolVariation("seed_db_with_test_data", ctx, c.LDFlag_SeedDbWithTestData); err != nil {
		return fmt.Errorf("seed_db_with_test_data flag: %w", err)
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", c.LDFlag_SeedDbWithTestData)
	return nil
}
