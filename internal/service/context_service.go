package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
)

// ContextService define contrato para recuperar contexto conversacional.
type ContextService interface {
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
}

// BasicContextService obtiene los últimos mensajes de la sesion en orden
// cronologico ascendente.
type BasicContextService struct {
	messageRepo repository.MessageRepository
}

func NewBasicContextService(messageRepo repository.MessageRepository) *BasicContextService {
	return &BasicContextService{messageRepo: messageRepo}
}

func (s *BasicContextService) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	messages, err := s.messageRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}
