package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/latency"
	"github.com/moneyfer/moneyfer/internal/logging"
	"github.com/moneyfer/moneyfer/internal/store"
)

func newTestService() *Service {
	repo := NewStoreRepository(store.New(store.NewMemoryBackend(), logging.Discard()))
	return NewService(repo, latency.None())
}

func sampleDraft(recipient string) Draft {
	return Draft{
		Recipient:    recipient,
		Amount:       10,
		FromCurrency: "USD",
		ToCurrency:   "NGN",
		Rate:         1500,
		Fee:          0.5,
		Country:      "Nigeria",
		Method:       "Mobile Money",
		Route:        "Direct Route",
	}
}

func TestCreateIsPendingAndNewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t1, err := svc.Create(ctx, sampleDraft("Bob"))
	if err != nil {
		t.Fatalf("create t1: %v", err)
	}
	t2, err := svc.Create(ctx, sampleDraft("Carol"))
	if err != nil {
		t.Fatalf("create t2: %v", err)
	}
	if t1.Status != StatusPending || t2.Status != StatusPending {
		t.Fatalf("expected pending transfers, got %s and %s", t1.Status, t2.Status)
	}
	if t1.ID == t2.ID {
		t.Fatalf("expected unique ids, both %s", t1.ID)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != t2.ID || list[1].ID != t1.ID {
		t.Fatalf("expected [t2, t1], got %+v", list)
	}
}

func TestCreateSameMillisecondGetsDistinctIDs(t *testing.T) {
	svc := newTestService()
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		tr, err := svc.Create(ctx, sampleDraft("Bob"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[tr.ID] {
			t.Fatalf("duplicate id %s", tr.ID)
		}
		seen[tr.ID] = true
	}
}

func TestCreateValidatesDraft(t *testing.T) {
	svc := newTestService()
	draft := sampleDraft("")
	if _, err := svc.Create(context.Background(), draft); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	draft = sampleDraft("Bob")
	draft.Amount = 0
	_, err := svc.Create(context.Background(), draft)
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "amount must be positive" {
		t.Fatalf("expected positive amount error, got %v", err)
	}
}

func TestUpdateStatusChangesOnlyStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleDraft("Bob"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.UpdateStatus(ctx, created.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected createdAt to be preserved")
	}
	want := created
	want.Status = StatusCompleted
	want.CreatedAt = updated.CreatedAt
	if updated != want {
		t.Fatalf("expected only status to change:\n got %+v\nwant %+v", updated, want)
	}

	list, _ := svc.List(ctx)
	if list[0].Status != StatusCompleted {
		t.Fatalf("expected persisted status, got %s", list[0].Status)
	}
}

func TestReverseMatchesStatusUpdate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, sampleDraft("Bob"))
	b, _ := svc.Create(ctx, sampleDraft("Carol"))

	reversed, err := svc.Reverse(ctx, a.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	updated, err := svc.UpdateStatus(ctx, b.ID, StatusReversed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if reversed.Status != StatusReversed || updated.Status != StatusReversed {
		t.Fatalf("expected both reversed, got %s and %s", reversed.Status, updated.Status)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, "transfer-404", StatusCompleted); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	created, _ := svc.Create(ctx, sampleDraft("Bob"))
	if _, err := svc.UpdateStatus(ctx, created.ID, Status("settled")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListEmpty(t *testing.T) {
	list, err := newTestService().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		if got, err := ParseStatus(string(s)); err != nil || got != s {
			t.Fatalf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("done"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
