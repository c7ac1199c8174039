package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockProvider struct{ err error }

func (m *mockProvider) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	r := New(&mockPinger{}).
		WithStore(&mockPinger{}).
		WithEmbedding(&mockProvider{}).
		WithInference(&mockProvider{}).
		Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{ComponentDatabase, ComponentStore, ComponentEmbedding, ComponentInference} {
		if r.Checks[name] != CheckOK {
			t.Errorf("%s: expected %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_ProviderErrorDegrades(t *testing.T) {
	r := New(&mockPinger{}).
		WithEmbedding(&mockProvider{}).
		WithInference(&mockProvider{err: errors.New("timeout")}).
		Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentInference] != CheckError {
		t.Errorf("expected inference %q, got %q", CheckError, r.Checks[ComponentInference])
	}
}

func TestCheck_DatabaseErrorIsUnhealthy(t *testing.T) {
	r := New(&mockPinger{err: errors.New("conn refused")}).
		WithEmbedding(&mockProvider{err: errors.New("timeout")}).
		Check(context.Background())
	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}

	r = New(&mockPinger{}).WithStore(&mockPinger{err: errors.New("locked")}).Check(context.Background())
	if r.Status != Unhealthy {
		t.Errorf("store failure: expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_OptionalComponentsOmitted(t *testing.T) {
	r := New(&mockPinger{}).Check(context.Background())
	if len(r.Checks) != 1 {
		t.Errorf("expected only the database check, got %v", r.Checks)
	}
}
