package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
)

type mockMessageRepo struct {
	msgs []domain.Message
	err  error
}

func (m *mockMessageRepo) Create(ctx context.Context, message domain.Message) error {
	m.msgs = append(m.msgs, message)
	return nil
}

func (m *mockMessageRepo) ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error) {
	return m.msgs, m.err
}

func (m *mockMessageRepo) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if len(m.msgs) > limit {
		return m.msgs[len(m.msgs)-limit:], m.err
	}
	return m.msgs, m.err
}

func TestBasicContextService_RecentMessages(t *testing.T) {
	t.Run("pocos mensajes", func(t *testing.T) {
		msgs := []domain.Message{
			{Role: domain.RoleUser, Content: "hola", CreatedAt: time.Now().Add(-3 * time.Minute)},
			{Role: domain.RoleAssistant, Content: "hola, ¿cómo estás?", CreatedAt: time.Now().Add(-2 * time.Minute)},
			{Role: domain.RoleUser, Content: "bien", CreatedAt: time.Now().Add(-1 * time.Minute)},
		}
		repo := &mockMessageRepo{msgs: msgs}
		svc := NewBasicContextService(repo)

		got, err := svc.RecentMessages(context.Background(), "s1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(got))
		}
		if got[0].Content != "hola" || got[2].Content != "bien" {
			t.Fatalf("expected chronological order, got: %v", got)
		}
	})

	t.Run("muchos mensajes recorta al limite", func(t *testing.T) {
		var msgs []domain.Message
		now := time.Now()
		for i := 1; i <= 15; i++ {
			msgs = append(msgs, domain.Message{
				Role:      domain.RoleUser,
				Content:   "msg" + itoa(i),
				CreatedAt: now.Add(time.Duration(i) * time.Minute),
			})
		}
		repo := &mockMessageRepo{msgs: msgs}
		svc := NewBasicContextService(repo)

		got, err := svc.RecentMessages(context.Background(), "s1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 10 {
			t.Fatalf("expected 10 messages, got %d", len(got))
		}
		if got[0].Content != "msg6" || got[len(got)-1].Content != "msg15" {
			t.Fatalf("expected window msg6..msg15, got: %s ... %s", got[0].Content, got[len(got)-1].Content)
		}
	})

	t.Run("orden invertido se corrige", func(t *testing.T) {
		now := time.Now()
		msgs := []domain.Message{
			{Role: domain.RoleAssistant, Content: "segundo", CreatedAt: now.Add(1 * time.Minute)},
			{Role: domain.RoleUser, Content: "primero", CreatedAt: now},
		}
		repo := &mockMessageRepo{msgs: msgs}
		svc := NewBasicContextService(repo)

		got, err := svc.RecentMessages(context.Background(), "s1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[0].Content != "primero" || got[1].Content != "segundo" {
			t.Fatalf("expected chronological order, got: %v", got)
		}
	})

	t.Run("sin historial", func(t *testing.T) {
		repo := &mockMessageRepo{msgs: []domain.Message{}}
		svc := NewBasicContextService(repo)

		got, err := svc.RecentMessages(context.Background(), "s1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no messages, got: %v", got)
		}
	})
}

func itoa(i int) string {
	return fmt.Sprintf("%d", i)
}

var _ repository.MessageRepository = (*mockMessageRepo)(nil)
