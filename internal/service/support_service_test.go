package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/llm"
	"mindcare-llm/internal/repository"
)

type recordingMessageRepo struct {
	created  []domain.Message
	bySess   map[string][]domain.Message
	failNext bool
}

func newRecordingMessageRepo() *recordingMessageRepo {
	return &recordingMessageRepo{bySess: make(map[string][]domain.Message)}
}

func (r *recordingMessageRepo) Create(ctx context.Context, message domain.Message) error {
	if r.failNext {
		r.failNext = false
		return errors.New("insert failed")
	}
	r.created = append(r.created, message)
	r.bySess[message.SessionID] = append(r.bySess[message.SessionID], message)
	return nil
}

func (r *recordingMessageRepo) ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error) {
	return r.bySess[sessionID], nil
}

func (r *recordingMessageRepo) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	return nil, nil
}

type stubProfileRepo struct {
	profile domain.UserProfile
	err     error
}

func (r *stubProfileRepo) Upsert(ctx context.Context, profile domain.UserProfile) error { return nil }

func (r *stubProfileRepo) GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error) {
	return r.profile, r.err
}

type stubMemoryRepo struct {
	created  []domain.SupportMemory
	searched []domain.SupportMemory
}

func (r *stubMemoryRepo) Create(ctx context.Context, memory domain.SupportMemory) error {
	r.created = append(r.created, memory)
	return nil
}

func (r *stubMemoryRepo) Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.SupportMemory, error) {
	return r.searched, nil
}

func (r *stubMemoryRepo) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.SupportMemory, error) {
	return r.created, nil
}

type stubEmotionRepo struct {
	states []domain.EmotionState
}

func (r *stubEmotionRepo) Create(ctx context.Context, state domain.EmotionState) error {
	r.states = append(r.states, state)
	return nil
}

func (r *stubEmotionRepo) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.EmotionState, error) {
	out := r.states
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type supportFixture struct {
	svc         *SupportService
	llm         *llm.MockClient
	messageRepo *recordingMessageRepo
	memoryRepo  *stubMemoryRepo
	emotionRepo *stubEmotionRepo
	store       *repository.MemoryCareStateStore
}

// newSupportFixture arma el servicio con un unico MockClient compartido
// entre emociones, clasificador, cuidado y generacion, igual que en
// produccion. Los tests encolan las respuestas en orden de consumo.
func newSupportFixture(mock *llm.MockClient) *supportFixture {
	store := repository.NewMemoryCareStateStore()
	trends := NewRiskTrendTracker(store)
	policy := NewInterventionPolicy(zap.NewNop(), store, NewMemoryCooldownStore(), time.Hour)
	careSvc := NewCareService(zap.NewNop(), mock, store, policy, trends)

	messageRepo := newRecordingMessageRepo()
	memoryRepo := &stubMemoryRepo{}
	emotionRepo := &stubEmotionRepo{}
	emotionSvc := NewEmotionService(zap.NewNop(), mock, emotionRepo)
	assessor := NewCrisisAssessor(zap.NewNop(), NewLLMCrisisClassifier(mock))
	contextSvc := NewBasicContextService(messageRepo)

	svc := NewSupportService(
		zap.NewNop(),
		mock,
		mock,
		messageRepo,
		&stubProfileRepo{err: errors.New("no profile")},
		memoryRepo,
		emotionRepo,
		emotionSvc,
		assessor,
		careSvc,
		trends,
		contextSvc,
	)
	return &supportFixture{
		svc:         svc,
		llm:         mock,
		messageRepo: messageRepo,
		memoryRepo:  memoryRepo,
		emotionRepo: emotionRepo,
		store:       store,
	}
}

const calmEmotionJSON = `{"emotions": ["calm"], "primary_emotion": "calm", "intensity": 10}`
const sadEmotionJSON = `{"emotions": ["sadness"], "primary_emotion": "sadness", "intensity": 70}`

const noCrisisJSON = `{
	"indicators": [],
	"severity_level": 0,
	"immediate_action_required": false,
	"reasoning": "no crisis indicators"
}`

func TestSupportServiceChat(t *testing.T) {
	ctx := context.Background()

	t.Run("mensaje tranquilo termina en respuesta directa", func(t *testing.T) {
		fix := newSupportFixture(&llm.MockClient{Responses: []string{
			calmEmotionJSON, // analisis emocional
			noCrisisJSON,    // clasificador de crisis
			"That sounds like a good day. What made it special?", // respuesta
		}})

		result, err := fix.svc.Chat(ctx, "u1", "s1", "general", "Today was actually a good day")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UsedFallback {
			t.Fatalf("no fallback expected")
		}
		if result.Reply.Role != domain.RoleAssistant || result.Reply.Content == "" {
			t.Fatalf("unexpected reply: %+v", result.Reply)
		}
		if result.Emotion.Primary != "calm" {
			t.Fatalf("expected calm emotion, got %s", result.Emotion.Primary)
		}
		if result.Assessment.SeverityLevel != 0 || result.Resources != nil || result.Intervention != nil {
			t.Fatalf("calm message must not trigger crisis machinery: %+v", result)
		}
		// Mensaje del usuario y respuesta quedan persistidos en orden.
		if len(fix.messageRepo.created) != 2 {
			t.Fatalf("expected 2 persisted messages, got %d", len(fix.messageRepo.created))
		}
		if fix.messageRepo.created[0].Role != domain.RoleUser || fix.messageRepo.created[1].Role != domain.RoleAssistant {
			t.Fatalf("unexpected persistence order: %+v", fix.messageRepo.created)
		}
		if len(fix.emotionRepo.states) != 1 {
			t.Fatalf("emotion state not persisted")
		}
	})

	t.Run("crisis adjunta recursos y registra severidad", func(t *testing.T) {
		// El clasificador LLM falla y el matcher detecta la ideacion; la
		// respuesta se genera igual.
		fix := newSupportFixture(&llm.MockClient{Responses: []string{
			sadEmotionJSON,
			"the classifier did not return json",
			"I'm really glad you told me. You don't have to face this alone.",
			validPatternJSON,
			validPlanJSON,
		}})

		result, err := fix.svc.Chat(ctx, "u1", "s1", "general", "I want to kill myself")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Assessment.Source != domain.SourceKeyword {
			t.Fatalf("expected keyword fallback assessment, got %s", result.Assessment.Source)
		}
		if result.Assessment.SeverityLevel != 5 || !result.Assessment.ImmediateActionRequired {
			t.Fatalf("unexpected assessment: %+v", result.Assessment)
		}
		if result.Resources == nil || len(result.Resources.ImmediateHelp) == 0 {
			t.Fatalf("crisis must attach immediate help resources")
		}
		if result.Trend.CurrentSeverity() != 5 {
			t.Fatalf("severity not recorded in trend: %+v", result.Trend)
		}
		if result.Intervention == nil {
			t.Fatalf("high urgency pattern should intervene")
		}
	})

	t.Run("llm caido en crisis usa la plantilla estatica", func(t *testing.T) {
		fix := newSupportFixture(&llm.MockClient{Err: errors.New("provider outage")})

		result, err := fix.svc.Chat(ctx, "u1", "s1", "general", "I want to kill myself")
		if err != nil {
			t.Fatalf("crisis reply must not fail: %v", err)
		}
		if !result.UsedFallback {
			t.Fatalf("expected static fallback reply")
		}
		if !strings.Contains(result.Reply.Content, "1800-599-0019") {
			t.Fatalf("fallback reply must carry the helpline, got %q", result.Reply.Content)
		}
		if result.Emotion.Primary != "neutral" {
			t.Fatalf("emotion should degrade to neutral, got %s", result.Emotion.Primary)
		}
	})

	t.Run("llm caido sin crisis propaga el error", func(t *testing.T) {
		fix := newSupportFixture(&llm.MockClient{Err: errors.New("provider outage")})

		_, err := fix.svc.Chat(ctx, "u1", "s1", "general", "I had dosa for breakfast")
		if err == nil {
			t.Fatalf("expected error without a crisis template to fall back on")
		}
	})

	t.Run("severidad intermedia baja a la plantilla del nivel 4", func(t *testing.T) {
		// El clasificador no devuelve JSON y el matcher detecta self_harm
		// (severidad 4). Tras consumir las respuestas encoladas, el mock
		// devuelve Response vacio y generateReply cae a la plantilla.
		fix := newSupportFixture(&llm.MockClient{Responses: []string{
			sadEmotionJSON,
			"classifier returned prose",
		}})

		result, err := fix.svc.Chat(ctx, "u1", "s1", "general", "I keep thinking about self harm")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.UsedFallback {
			t.Fatalf("expected fallback reply")
		}
		if result.Reply.Content != staticCrisisReplies[4] {
			t.Fatalf("expected level 4 template, got %q", result.Reply.Content)
		}
	})

	t.Run("mensaje vacio es rechazado", func(t *testing.T) {
		fix := newSupportFixture(&llm.MockClient{})
		if _, err := fix.svc.Chat(ctx, "u1", "s1", "general", "   "); err == nil {
			t.Fatalf("expected error for empty message")
		}
		if len(fix.messageRepo.created) != 0 {
			t.Fatalf("nothing should be persisted for empty input")
		}
	})
}

func TestSupportServiceConsolidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("resume y guarda el recuerdo con embedding", func(t *testing.T) {
		mock := &llm.MockClient{
			Response: `{
				"summary": "User talked through exam pressure and felt calmer by the end.",
				"key_concerns": ["exams"],
				"emotional_tone": "Anxious"
			}`,
			Embedding: []float32{0.5, 0.5},
		}
		fix := newSupportFixture(mock)
		fix.messageRepo.bySess["s1"] = []domain.Message{
			{Role: domain.RoleUser, Content: "exams are killing my sleep"},
			{Role: domain.RoleAssistant, Content: "let's unpack that"},
		}

		memory, err := fix.svc.ConsolidateSession(ctx, "u1", "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if memory.UserID != "u1" || memory.Content == "" {
			t.Fatalf("unexpected memory: %+v", memory)
		}
		if memory.EmotionCategory != "anxious" {
			t.Fatalf("tone must be normalized, got %q", memory.EmotionCategory)
		}
		if len(fix.memoryRepo.created) != 1 {
			t.Fatalf("memory not persisted")
		}
	})

	t.Run("sesion vacia es error", func(t *testing.T) {
		fix := newSupportFixture(&llm.MockClient{})
		if _, err := fix.svc.ConsolidateSession(ctx, "u1", "empty"); err == nil {
			t.Fatalf("expected error for empty session")
		}
	})

	t.Run("resumen sin summary es error", func(t *testing.T) {
		fix := newSupportFixture(&llm.MockClient{Response: `{"summary": "", "emotional_tone": "flat"}`})
		fix.messageRepo.bySess["s1"] = []domain.Message{{Role: domain.RoleUser, Content: "hi"}}
		if _, err := fix.svc.ConsolidateSession(ctx, "u1", "s1"); err == nil {
			t.Fatalf("expected error for empty summary")
		}
	})
}
