package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rentchain/rentclient/internal/core/domain"
)

func TestObserveSession(t *testing.T) {
	before := testutil.ToFloat64(SessionTransitionsTotal.WithLabelValues("resolving", "authenticated"))
	ObserveSession(domain.SessionTransition{
		Old: domain.Session{State: domain.SessionResolving},
		New: domain.Session{State: domain.SessionAuthenticated, IsAuthenticated: true},
	})

	if got := testutil.ToFloat64(SessionTransitionsTotal.WithLabelValues("resolving", "authenticated")); got != before+1 {
		t.Fatalf("expected counter to increase, got %v", got)
	}
	if testutil.ToFloat64(SessionAuthenticated) != 1 {
		t.Fatalf("expected authenticated gauge to be set")
	}
}

func TestObserveLoad(t *testing.T) {
	before := testutil.ToFloat64(UserLoadsTotal.WithLabelValues("error"))
	ObserveLoad("u1", errors.New("boom"))
	if got := testutil.ToFloat64(UserLoadsTotal.WithLabelValues("error")); got != before+1 {
		t.Fatalf("expected error load to be counted, got %v", got)
	}
}
