package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	defaultAddr = "127.0.0.1:8140"
)

// Config is the daemon configuration, resolved from .env, environment
// variables, and flags, in increasing precedence.
type Config struct {
	DBPath    string
	Addr      string
	RedisAddr string // non-empty switches credentials to Redis
}

// providerKeyEnv maps provider IDs to the env var carrying their key.
// Keys found at boot are seeded into the credential store.
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
	"flux":   "BFL_API_KEY",
}

func LoadConfig(args []string) (Config, error) {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	dbPath := envOrDefault("EASEL_DB_PATH", filepath.Join(cwd, "easel.db"))
	addr := envOrDefault("EASEL_ADDR", defaultAddr)
	redisAddr := os.Getenv("EASEL_REDIS_ADDR")

	flagSet := flag.NewFlagSet("easel-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite database")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagRedis := flagSet.String("redis", redisAddr, "Redis address for shared credentials (optional)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	return Config{
		DBPath:    resolvePath(*flagDB, cwd),
		Addr:      *flagAddr,
		RedisAddr: *flagRedis,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path, cwd string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}
