package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GIFTLY_APP_ENV" required:"true"`
	Port         string `envconfig:"GIFTLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIFTLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIFTLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIFTLY_DB_DSN"`
	Driver string `envconfig:"GIFTLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIFTLY_DB_HOST"`
	LegacyPort     int    `envconfig:"GIFTLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIFTLY_DB_USER"`
	LegacyPassword string `envconfig:"GIFTLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIFTLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIFTLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIFTLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIFTLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIFTLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIFTLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIFTLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIFTLY_REDIS_ADDR"`
	Password     string        `envconfig:"GIFTLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIFTLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIFTLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIFTLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIFTLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIFTLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIFTLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GIFTLY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GIFTLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GIFTLY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GIFTLY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GIFTLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GIFTLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GIFTLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GIFTLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GIFTLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GIFTLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GIFTLY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GIFTLY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GIFTLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GIFTLY_AUTO_MIGRATE" default:"false"`
}

// CartConfig carries the cart-display pricing policy. The rate here is the
// storefront badge/summary policy and is intentionally independent from the
// checkout policy below; the two diverge in the product and must stay
// separately tunable.
type CartConfig struct {
	TaxRate     string        `envconfig:"GIFTLY_CART_TAX_RATE" default:"0.13"`
	ShippingFee string        `envconfig:"GIFTLY_CART_SHIPPING_FEE" default:"0"`
	SnapshotTTL time.Duration `envconfig:"GIFTLY_CART_SNAPSHOT_TTL" default:"0"`

	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
}

func (c *CartConfig) validate() error {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid cart tax rate %q: %w", c.TaxRate, err)
	}
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return fmt.Errorf("invalid cart shipping fee %q: %w", c.ShippingFee, err)
	}
	if rate.IsNegative() || fee.IsNegative() {
		return fmt.Errorf("cart pricing policy must be non-negative")
	}
	c.taxRate = rate
	c.shippingFee = fee
	return nil
}

// Rate returns the parsed display tax rate.
func (c CartConfig) Rate() decimal.Decimal {
	return c.taxRate
}

// Fee returns the parsed flat display shipping fee.
func (c CartConfig) Fee() decimal.Decimal {
	return c.shippingFee
}

// CheckoutConfig carries the order-submission pricing policy (GST rate and
// free-shipping threshold).
type CheckoutConfig struct {
	TaxRate               string `envconfig:"GIFTLY_CHECKOUT_TAX_RATE" default:"0.05"`
	FreeShippingThreshold string `envconfig:"GIFTLY_CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"1000"`
	ShippingFee           string `envconfig:"GIFTLY_CHECKOUT_SHIPPING_FEE" default:"50"`
	Currency              string `envconfig:"GIFTLY_CHECKOUT_CURRENCY" default:"INR"`

	taxRate   decimal.Decimal
	threshold decimal.Decimal
	fee       decimal.Decimal
}

func (c *CheckoutConfig) validate() error {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid checkout tax rate %q: %w", c.TaxRate, err)
	}
	threshold, err := decimal.NewFromString(c.FreeShippingThreshold)
	if err != nil {
		return fmt.Errorf("invalid free shipping threshold %q: %w", c.FreeShippingThreshold, err)
	}
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return fmt.Errorf("invalid checkout shipping fee %q: %w", c.ShippingFee, err)
	}
	if rate.IsNegative() || threshold.IsNegative() || fee.IsNegative() {
		return fmt.Errorf("checkout pricing policy must be non-negative")
	}
	c.taxRate = rate
	c.threshold = threshold
	c.fee = fee
	return nil
}

// Rate returns the parsed checkout tax rate.
func (c CheckoutConfig) Rate() decimal.Decimal {
	return c.taxRate
}

// Threshold returns the parsed free-shipping threshold.
func (c CheckoutConfig) Threshold() decimal.Decimal {
	return c.threshold
}

// Fee returns the parsed fixed shipping fee applied below the threshold.
func (c CheckoutConfig) Fee() decimal.Decimal {
	return c.fee
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
