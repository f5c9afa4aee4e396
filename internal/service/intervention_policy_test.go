package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
)

func patternsWithUrgency(urgency int) domain.PatternAnalysis {
	return domain.PatternAnalysis{
		IdentifiedPatterns: []domain.IdentifiedPattern{
			{PatternType: "emotional", UrgencyLevel: urgency},
		},
		WellnessTrends: domain.WellnessTrends{RiskTrajectory: "stable"},
	}
}

func testPolicy(window time.Duration) (*InterventionPolicy, repository.CareStateStore) {
	store := repository.NewMemoryCareStateStore()
	policy := NewInterventionPolicy(zap.NewNop(), store, NewMemoryCooldownStore(), window)
	return policy, store
}

func TestInterventionPolicyShouldIntervene(t *testing.T) {
	t.Run("urgencia alta interviene", func(t *testing.T) {
		policy, _ := testPolicy(time.Hour)
		ok, reason, urgency := policy.ShouldIntervene("u1", patternsWithUrgency(4))
		if !ok || reason != domain.ReasonHighUrgency || urgency != 4 {
			t.Fatalf("expected high urgency intervention, got (%v, %s, %d)", ok, reason, urgency)
		}
	})

	t.Run("urgencia moderada respeta el tope de intervenciones", func(t *testing.T) {
		policy, store := testPolicy(time.Hour)

		ok, reason, _ := policy.ShouldIntervene("u1", patternsWithUrgency(3))
		if !ok || reason != domain.ReasonModerateUrgency {
			t.Fatalf("expected moderate urgency, got (%v, %s)", ok, reason)
		}

		store.Update("u1", func(state *repository.CareState) {
			state.InterventionCount = moderateUrgencyMaxCount
		})
		ok, reason, _ = policy.ShouldIntervene("u1", patternsWithUrgency(3))
		if ok || reason != domain.ReasonNoInterventionNeeded {
			t.Fatalf("expected no intervention past the count cap, got (%v, %s)", ok, reason)
		}
	})

	t.Run("riesgo en aumento interviene sin urgencia", func(t *testing.T) {
		policy, _ := testPolicy(time.Hour)
		patterns := domain.PatternAnalysis{
			WellnessTrends: domain.WellnessTrends{RiskTrajectory: string(domain.TrendIncreasing)},
		}
		ok, reason, urgency := policy.ShouldIntervene("u1", patterns)
		if !ok || reason != domain.ReasonIncreasingRisk || urgency != 0 {
			t.Fatalf("expected increasing risk intervention, got (%v, %s, %d)", ok, reason, urgency)
		}
	})

	t.Run("sin senales no interviene", func(t *testing.T) {
		policy, _ := testPolicy(time.Hour)
		ok, reason, _ := policy.ShouldIntervene("u1", patternsWithUrgency(1))
		if ok || reason != domain.ReasonNoInterventionNeeded {
			t.Fatalf("expected no intervention, got (%v, %s)", ok, reason)
		}
	})

	t.Run("el enfriamiento gana a la urgencia alta", func(t *testing.T) {
		policy, _ := testPolicy(time.Hour)
		policy.RecordIntervention("u1", domain.ReasonHighUrgency, 5, domain.InterventionPlan{Message: "stay with me"})

		ok, reason, urgency := policy.ShouldIntervene("u1", patternsWithUrgency(5))
		if ok || reason != domain.ReasonTooRecent || urgency != 0 {
			t.Fatalf("expected cooldown to win, got (%v, %s, %d)", ok, reason, urgency)
		}
	})

	t.Run("el enfriamiento expira", func(t *testing.T) {
		policy, store := testPolicy(10 * time.Millisecond)
		policy.RecordIntervention("u1", domain.ReasonHighUrgency, 5, domain.InterventionPlan{Message: "stay with me"})

		time.Sleep(25 * time.Millisecond)
		// El tope de urgencia moderada no aplica con urgencia alta.
		ok, reason, _ := policy.ShouldIntervene("u1", patternsWithUrgency(4))
		if !ok || reason != domain.ReasonHighUrgency {
			t.Fatalf("expected intervention after cooldown expiry, got (%v, %s)", ok, reason)
		}

		state := store.Get("u1")
		if state.InterventionCount != 1 || len(state.Interventions) != 1 {
			t.Fatalf("unexpected recorded state: %+v", state)
		}
	})
}

func TestInterventionPolicyRecordIntervention(t *testing.T) {
	policy, store := testPolicy(time.Hour)
	plan := domain.InterventionPlan{InterventionType: "check_in", UrgencyLevel: 4, Message: "checking in"}

	record := policy.RecordIntervention("u1", domain.ReasonHighUrgency, 4, plan)
	if record.UserID != "u1" || record.Reason != domain.ReasonHighUrgency || record.Urgency != 4 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Plan.Message != "checking in" {
		t.Fatalf("plan not carried into record: %+v", record.Plan)
	}
	if record.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	state := store.Get("u1")
	if state.InterventionCount != 1 || len(state.Interventions) != 1 {
		t.Fatalf("state not updated: %+v", state)
	}
	if state.LastInterventionAt.IsZero() {
		t.Fatalf("expected last intervention timestamp")
	}
}

func TestMemoryCooldownStore(t *testing.T) {
	store := NewMemoryCooldownStore()

	if active, err := store.InCooldown("u1"); err != nil || active {
		t.Fatalf("expected no cooldown initially, got (%v, %v)", active, err)
	}

	if err := store.MarkIntervened("u1", 20*time.Millisecond); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if active, _ := store.InCooldown("u1"); !active {
		t.Fatalf("expected active cooldown")
	}

	time.Sleep(35 * time.Millisecond)
	if active, _ := store.InCooldown("u1"); active {
		t.Fatalf("expected cooldown to expire")
	}

	// Claves vacias se ignoran sin error.
	if err := store.MarkIntervened("   ", time.Minute); err != nil {
		t.Fatalf("empty key mark must be a no-op, got %v", err)
	}
}
