package fleet

import (
	"errors"
	"testing"

	"OmniTrade/internal/domain/models"
)

func TestToggleTwiceRestores(t *testing.T) {
	r := NewRegistry(SeedBots())
	before, _ := r.Get("3")

	if _, ok := r.Toggle("3"); !ok {
		t.Fatal("expected bot 3 to exist")
	}
	mid, _ := r.Get("3")
	if mid.Active == before.Active {
		t.Fatalf("expected active to flip, still %v", mid.Active)
	}
	r.Toggle("3")
	after, _ := r.Get("3")
	if after.Active != before.Active {
		t.Fatalf("expected %v after double toggle, got %v", before.Active, after.Active)
	}
}

func TestToggleUnknownIsNoop(t *testing.T) {
	r := NewRegistry(SeedBots())
	before := r.List()
	if _, ok := r.Toggle("nope"); ok {
		t.Fatal("expected no match")
	}
	after := r.List()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("bot %s changed on unknown toggle", before[i].ID)
		}
	}
}

func TestGuardianTogglesLikeAnyBot(t *testing.T) {
	r := NewRegistry(SeedBots())
	if r.GuardianActive() {
		t.Fatal("guardian seeded inactive")
	}
	b, _ := r.Toggle(GuardianID)
	if !b.Active || !b.IsGuardian {
		t.Fatalf("unexpected guardian %+v", b)
	}
	if !r.GuardianActive() {
		t.Fatal("expected guardian active")
	}
}

func TestListIsACopy(t *testing.T) {
	r := NewRegistry(SeedBots())
	l := r.List()
	l[0].Active = !l[0].Active
	b, _ := r.Get(l[0].ID)
	if b.Active == l[0].Active {
		t.Fatal("mutating List result leaked into registry")
	}
}

func TestInitializeGate(t *testing.T) {
	r := NewRegistry(SeedBots())

	if _, err := r.Initialize("missing"); !errors.Is(err, ErrBotNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := r.Initialize("3"); !errors.Is(err, ErrBotInactive) {
		t.Fatalf("expected inactive, got %v", err)
	}
	entry, err := r.Initialize("1")
	if err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
	if entry.Status != models.LogSuccess || entry.Bot != "VWAP Mean Reversion" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	r.Toggle(GuardianID)
	entry, err = r.Initialize(GuardianID)
	if err != nil {
		t.Fatalf("expected guardian allow, got %v", err)
	}
	if entry.Status != models.LogWarning {
		t.Fatalf("expected warning for guardian, got %s", entry.Status)
	}
}
