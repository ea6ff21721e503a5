package container

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/wirekit/observability"
)

type invoiceService struct{ total int }
type ledgerService struct{ entries int }

func TestCheckHealthClean(t *testing.T) {
	c := New(WithName("billing"))
	if err := Register[*invoiceService](c, func() *invoiceService {
		return &invoiceService{}
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[*invoiceService](c); err != nil {
		t.Fatal(err)
	}

	h := c.CheckHealth(context.Background())
	if h.Name != "billing" {
		t.Errorf("expected component name 'billing', got %q", h.Name)
	}
	if h.Status != observability.HealthStatusUp {
		t.Errorf("expected up, got %s", h.Status)
	}
	if h.Details["registrations"] != "1" {
		t.Errorf("expected 1 registration, got %q", h.Details["registrations"])
	}
}

func TestCheckHealthDegradedOnCycle(t *testing.T) {
	c := New()
	if err := Register[*invoiceService](c, func() *invoiceService {
		return &invoiceService{}
	}, DependsOn[*ledgerService]()); err != nil {
		t.Fatal(err)
	}
	if err := Register[*ledgerService](c, func() *ledgerService {
		return &ledgerService{}
	}, DependsOn[*invoiceService]()); err != nil {
		t.Fatal(err)
	}

	h := c.CheckHealth(context.Background())
	if h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}
	if !strings.Contains(h.Message, "cycle") {
		t.Errorf("expected cycle message, got %q", h.Message)
	}
}

func TestCheckHealthDegradedOnDanglingEdge(t *testing.T) {
	c := New()
	if err := Register[*invoiceService](c, func() *invoiceService {
		return &invoiceService{}
	}, DependsOn[*ledgerService]()); err != nil {
		t.Fatal(err)
	}

	h := c.CheckHealth(context.Background())
	if h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}
	if !strings.Contains(h.Message, "unregistered") {
		t.Errorf("expected unregistered edge message, got %q", h.Message)
	}
}
