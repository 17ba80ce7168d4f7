package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// Supported values for STORE_DRIVER.
const (
    DriverMongo    = "mongo"
    DriverMySQL    = "mysql"
    DriverPostgres = "postgres"
    DriverMemory   = "memory"
)

// Config holds the core runtime configuration.  Each field corresponds to
// an environment variable; optional concerns (rate limiting, room locks,
// events) have their own Load* functions.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    LogLevel        string        // debug, info, warn, error or off
    StoreDriver     string        // one of the Driver* constants
    MongoURI        string        // mongo connection string
    MongoDB         string        // mongo database name
    MongoCollection string        // collection holding reservations
    DBUser          string        // SQL username
    DBPass          string        // SQL password (optional)
    DBHost          string        // SQL host address
    DBPort          string        // SQL port number
    DBName          string        // SQL database name
    DBSSLMode       string        // postgres sslmode
    RequestTimeout  time.Duration // upper bound for a single store round trip
    ShutdownTimeout time.Duration // grace period for in-flight requests
}

// LoadDotEnv reads a .env file into the process environment when one is
// present.  Variables already set in the environment win.
func LoadDotEnv(paths ...string) {
    if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
        log.Printf("config: ignoring .env: %v", err)
    }
}

// Load reads the core configuration.  SQL drivers require the DB_* values;
// missing ones are fatal.
func Load() Config {
    cfg := Config{
        Env:             envStr("APP_ENV", "dev"),
        Port:            envStr("APP_PORT", "8000"),
        LogLevel:        strings.ToLower(envStr("LOG_LEVEL", "info")),
        StoreDriver:     strings.ToLower(envStr("STORE_DRIVER", DriverMongo)),
        MongoURI:        envStr("MONGODB_URI", "mongodb://localhost:27017"),
        MongoDB:         envStr("MONGODB_DB", "hotel"),
        MongoCollection: envStr("MONGODB_COLLECTION", "reservation"),
        DBPass:          os.Getenv("DB_PASS"),
        DBSSLMode:       envStr("DB_SSLMODE", "disable"),
        RequestTimeout:  envDur("REQUEST_TIMEOUT", 5*time.Second),
        ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
    }
    switch cfg.StoreDriver {
    case DriverMySQL, DriverPostgres:
        cfg.DBUser = must("DB_USER")
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case DriverMongo, DriverMemory:
    default:
        log.Fatalf("unsupported STORE_DRIVER: %q", cfg.StoreDriver)
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
