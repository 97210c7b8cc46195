package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/hydro-project/flowviz/pkg/observability"
)

func TestNew_DefaultsTimeout(t *testing.T) {
	s := New(nil, 0)
	if s.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s default", s.timeout)
	}
}

func TestNew_KeepsExplicitTimeout(t *testing.T) {
	s := New(nil, 2*time.Second)
	if s.timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", s.timeout)
	}
}

func TestErrString(t *testing.T) {
	if got := errString(nil); got != "" {
		t.Errorf("errString(nil) = %q, want empty", got)
	}
	if got := errString(errors.New("boom")); got != "boom" {
		t.Errorf("errString(boom) = %q, want boom", got)
	}
}

func TestSink_ImplementsEngineHooks(t *testing.T) {
	var _ observability.EngineHooks = (*Sink)(nil)
}
