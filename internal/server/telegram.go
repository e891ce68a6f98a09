package server

import (
	"context"
	"fmt"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"personabot/internal/biz/usecase"
)

const apologyReply = "Something went wrong while processing your message."

// TelegramServer receives Telegram updates and relays replies
type TelegramServer struct {
	bot    *bot.Bot
	convUC *usecase.ConversationUsecase
}

// NewTelegramServer creates a new Telegram server
func NewTelegramServer(token string, convUC *usecase.ConversationUsecase) (*TelegramServer, error) {
	s := &TelegramServer{convUC: convUC}

	b, err := bot.New(token, bot.WithDefaultHandler(s.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	s.bot = b
	return s, nil
}

// Start runs the long-poll loop until the context is canceled
func (s *TelegramServer) Start(ctx context.Context) {
	s.bot.Start(ctx)
}

func (s *TelegramServer) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if update.Message.From == nil || update.Message.From.IsBot {
		return
	}

	req := &usecase.MessageRequest{
		ConversationID: update.Message.Chat.ID,
		UserID:         update.Message.From.ID,
		Text:           update.Message.Text,
	}

	// The model call can take seconds; detach so a slow conversation never
	// blocks delivery for the others
	go s.process(ctx, req)
}

func (s *TelegramServer) process(ctx context.Context, req *usecase.MessageRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Server] panic while processing conversation=%d: %v", req.ConversationID, r)
			s.send(ctx, req.ConversationID, apologyReply)
		}
	}()

	reply, err := s.convUC.HandleMessage(ctx, req)
	if err != nil {
		log.Printf("[Server] handle message conversation=%d: %v", req.ConversationID, err)
		s.send(ctx, req.ConversationID, apologyReply)
		return
	}
	if reply == "" {
		return
	}

	s.send(ctx, req.ConversationID, reply)
}

func (s *TelegramServer) send(ctx context.Context, chatID int64, text string) {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		log.Printf("[Server] send message chat=%d: %v", chatID, err)
	}
}
