package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"personabot/internal/conf"
	"personabot/internal/data"
	"personabot/mcpserver"
)

// Read-only MCP inspection server over the bot's database. Runs on stdio so
// an operator can point an MCP client at the live deployment.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()

	store, err := data.NewStore(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := mcpserver.NewServer(store.Config, store.History)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
