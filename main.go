package main

import (
	"context"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"personabot/internal/biz/usecase"
	"personabot/internal/conf"
	"personabot/internal/data"
	"personabot/internal/server"
	"personabot/llm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	store, err := data.NewStore(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	modelRepo := data.NewModelRepo(llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model))

	// Seedable source for the sampling gate; tests inject their own
	dice := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	admissionUC := usecase.NewAdmissionUsecase(store.Config, dice)
	commandUC := usecase.NewCommandUsecase(store.Config, store.History)
	composerUC := usecase.NewComposerUsecase(modelRepo)
	convUC := usecase.NewConversationUsecase(admissionUC, commandUC, composerUC, store.History)

	srv, err := server.NewTelegramServer(cfg.Telegram.BotToken, convUC)
	if err != nil {
		log.Fatalf("Failed to create telegram server: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("Starting persona bot...")
	srv.Start(ctx)
	log.Println("Shutting down")
}
