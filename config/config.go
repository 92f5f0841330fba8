package config

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration settings for the application.
type Config struct {
	// Server settings
	ListenAddress string
	ListenPort    string

	// Store settings
	StoreFilePath string
	SaveInterval  time.Duration
	EnableBackup  bool

	// Authentication settings
	JwtSecret     string // the actual secret key
	JwtSecretFile string // path to a file containing the secret
	TokenLifetime time.Duration
	BcryptCost    int

	// Login rate limiting (requests per second per client IP, and burst)
	LoginRateLimit float64
	LoginRateBurst int
}

const (
	defaultAddress       = "0.0.0.0"
	defaultPort          = "8080"
	defaultStoreFile     = "./clinic.json" // relative to working dir
	defaultSaveInterval  = 3 * time.Second
	defaultEnableBackup  = true
	defaultJwtKeyFile    = "./clinic.key" // default file if we generate a key
	defaultTokenLifetime = 8 * time.Hour  // a working day
	defaultBcryptCost    = 12
	defaultLoginRate     = 1.0
	defaultLoginBurst    = 5
)

// LoadConfig loads configuration from defaults, a .env file, environment
// variables, and command-line flags. Flags take precedence over environment
// variables, which take precedence over defaults.
func LoadConfig() (*Config, error) {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.ListenAddress, "address", getEnv("DENTSERVER_LISTEN_ADDRESS", defaultAddress), "Server listen address (Env: DENTSERVER_LISTEN_ADDRESS)")
	flag.StringVar(&cfg.ListenPort, "port", getEnv("DENTSERVER_LISTEN_PORT", defaultPort), "Server listen port (Env: DENTSERVER_LISTEN_PORT)")
	flag.StringVar(&cfg.StoreFilePath, "store-file", getEnv("DENTSERVER_STORE_FILE", defaultStoreFile), "Path to the JSON store file (Env: DENTSERVER_STORE_FILE)")
	saveIntervalStr := flag.String("save-interval", getEnv("DENTSERVER_SAVE_INTERVAL", defaultSaveInterval.String()), "Debounce interval for saving the store (e.g. 5s, 100ms); <=0 saves immediately (Env: DENTSERVER_SAVE_INTERVAL)")
	flag.BoolVar(&cfg.EnableBackup, "enable-backup", getEnvBool("DENTSERVER_ENABLE_BACKUP", defaultEnableBackup), "Keep a .bak copy of the previous store file on save (Env: DENTSERVER_ENABLE_BACKUP)")
	flag.StringVar(&cfg.JwtSecretFile, "jwt-secret-file", getEnv("DENTSERVER_JWT_SECRET_FILE", ""), "Path to file containing the JWT secret (overrides DENTSERVER_JWT_SECRET) (Env: DENTSERVER_JWT_SECRET_FILE)")

	// Non-configurable defaults
	cfg.TokenLifetime = defaultTokenLifetime
	cfg.BcryptCost = defaultBcryptCost
	cfg.LoginRateLimit = defaultLoginRate
	cfg.LoginRateBurst = defaultLoginBurst

	flag.Parse()

	var err error
	cfg.SaveInterval, err = time.ParseDuration(*saveIntervalStr)
	if err != nil {
		log.Printf("WARN: Invalid save-interval duration '%s'. Using default %s. Error: %v", *saveIntervalStr, defaultSaveInterval, err)
		cfg.SaveInterval = defaultSaveInterval
	}

	secretSource, err := resolveJwtSecret(cfg)
	if err != nil {
		return nil, err
	}

	// Resolve the store path and refuse a path that is a directory.
	absPath, err := filepath.Abs(cfg.StoreFilePath)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for store-file '%s': %w", cfg.StoreFilePath, err)
	}
	cfg.StoreFilePath = absPath
	if info, err := os.Stat(cfg.StoreFilePath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path '%s' points to a directory, not a file", cfg.StoreFilePath)
	}
	// A missing file is fine: the store creates it on first save.

	logConfiguration(cfg, secretSource)

	return cfg, nil
}

// resolveJwtSecret fills cfg.JwtSecret using, in order: an explicit secret
// file, the DENTSERVER_JWT_SECRET environment variable, the default key
// file, and finally a freshly generated key saved to the default key file.
// Returns a human-readable description of where the secret came from.
func resolveJwtSecret(cfg *Config) (string, error) {
	if cfg.JwtSecretFile != "" {
		secretBytes, err := os.ReadFile(cfg.JwtSecretFile)
		if err != nil {
			log.Printf("WARN: Failed to read JWT secret file '%s': %v. Checking other sources.", cfg.JwtSecretFile, err)
		} else if s := strings.TrimSpace(string(secretBytes)); s != "" {
			cfg.JwtSecret = s
			return fmt.Sprintf("File (%s)", cfg.JwtSecretFile), nil
		} else {
			log.Printf("WARN: JWT secret file '%s' is empty. Checking other sources.", cfg.JwtSecretFile)
		}
	}

	if s := strings.TrimSpace(getEnv("DENTSERVER_JWT_SECRET", "")); s != "" {
		cfg.JwtSecret = s
		return "Environment Variable (DENTSERVER_JWT_SECRET)", nil
	}

	if secretBytes, err := os.ReadFile(defaultJwtKeyFile); err == nil {
		if s := strings.TrimSpace(string(secretBytes)); s != "" {
			cfg.JwtSecret = s
			return fmt.Sprintf("Default Key File (%s)", defaultJwtKeyFile), nil
		}
		log.Printf("WARN: Default JWT key file '%s' is empty. Will generate a new key.", defaultJwtKeyFile)
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: Failed to read default JWT key file '%s': %v. Will generate a new key.", defaultJwtKeyFile, err)
	}

	log.Printf("INFO: No JWT secret configured. Generating a new secret...")
	secret, err := generateRandomKey(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JwtSecret = secret

	if err := os.WriteFile(defaultJwtKeyFile, []byte(secret), 0600); err != nil {
		log.Printf("WARN: Failed to save generated JWT secret to '%s': %v. The key is kept in memory for this session only.", defaultJwtKeyFile, err)
		return "Generated (In Memory)", nil
	}
	log.Printf("INFO: Generated and saved new JWT secret to: %s", defaultJwtKeyFile)
	return fmt.Sprintf("Generated & Saved (%s)", defaultJwtKeyFile), nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. Recognizes "true", "1", "yes" (case-insensitive) as true.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		log.Printf("WARN: Invalid boolean value for environment variable %s: '%s'. Using default: %t", key, value, fallback)
	}
	return fallback
}

// logConfiguration prints the loaded configuration settings.
func logConfiguration(cfg *Config, secretSource string) {
	log.Println("--- Configuration ---")
	log.Printf("Server Address: %s", cfg.ListenAddress)
	log.Printf("Server Port: %s", cfg.ListenPort)
	log.Printf("Store File: %s", cfg.StoreFilePath)
	log.Printf("Store Save Interval: %s", cfg.SaveInterval)
	log.Printf("Store Backup Enabled: %t", cfg.EnableBackup)
	log.Printf("JWT Secret Source: %s", secretSource)
	log.Printf("JWT Token Lifetime: %s", cfg.TokenLifetime)
	log.Printf("Bcrypt Cost: %d", cfg.BcryptCost)
	log.Printf("Login Rate Limit: %.2f req/s (burst %d)", cfg.LoginRateLimit, cfg.LoginRateBurst)
	log.Println("---------------------")
}

// generateRandomKey generates a cryptographically secure random key of the
// specified byte length and returns it as a hex-encoded string.
func generateRandomKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
