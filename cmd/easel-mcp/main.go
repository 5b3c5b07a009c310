package main

import (
	"flag"
	"log"
	"os"

	"github.com/easel-ai/easel/pkg/mcp"
)

func main() {
	log.SetOutput(os.Stderr) // stdout carries the MCP stdio protocol
	log.SetPrefix("easel-mcp ")

	apiURL := flag.String("api", envOrDefault("EASEL_API_URL", "http://127.0.0.1:8140"), "easel daemon API URL")
	flag.Parse()

	server := mcp.NewServer(*apiURL)
	if err := server.Serve(); err != nil {
		log.Fatalf("mcp server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
