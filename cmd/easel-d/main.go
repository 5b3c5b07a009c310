package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/easel-ai/easel/pkg/api"
	"github.com/easel-ai/easel/pkg/blob"
	"github.com/easel-ai/easel/pkg/engine"
	"github.com/easel-ai/easel/pkg/layout"
	"github.com/easel-ai/easel/pkg/provider/flux"
	"github.com/easel-ai/easel/pkg/provider/gemini"
	"github.com/easel-ai/easel/pkg/provider/openai"
	"github.com/easel-ai/easel/pkg/store"
	redisstore "github.com/easel-ai/easel/pkg/store/redis"
)

func main() {
	log.SetPrefix("easel-d ")
	log.Printf("starting")

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	log.Printf("store initialized at %s", cfg.DBPath)

	images := blob.NewImageStore(st.DB())

	// Credentials default to SQLite; a Redis address switches to the
	// shared store for multi-daemon deployments. The API and the env
	// seeding write through the same store the orchestrator reads.
	var creds engine.CredentialStore = st
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		creds = redisstore.NewCredentialStore(rdb)
		log.Printf("using redis credential store at %s", cfg.RedisAddr)
	}

	seedCredentials(creds)

	orch := engine.NewOrchestrator(images, creds, nil)
	orch.Register(openai.New(nil))
	orch.Register(gemini.New(nil))
	orch.Register(flux.New(nil))

	graph := engine.LoadGraph(context.Background(), st)
	writer := engine.NewGraphWriter(st, graph)
	controller := engine.NewController(writer, orch, layout.NewEngine())

	server := api.NewServer(st, images, creds, writer, controller, cfg.Addr)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("api server failed: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Printf("shutdown initiated (%s)", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}

	// The writer flushes on its own schedule; Close just stops the
	// timers. The small loss window on abrupt close is accepted.
	writer.Close()

	if err := st.Close(); err != nil {
		log.Printf("failed to close store: %v", err)
	}
	log.Printf("shutdown complete")
}

// seedCredentials copies provider API keys from the environment into
// the credential store when no key is stored yet, so a .env file is
// enough to get going.
func seedCredentials(creds engine.CredentialStore) {
	ctx := context.Background()
	for providerID, envKey := range providerKeyEnv {
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}
		existing, err := creds.Credential(ctx, providerID)
		if err != nil {
			log.Printf("credential lookup failed for %s: %v", providerID, err)
			continue
		}
		if existing != "" {
			continue
		}
		if err := creds.SetCredential(ctx, providerID, val); err != nil {
			log.Printf("failed to seed credential for %s: %v", providerID, err)
		}
	}
}
