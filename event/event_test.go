package event

import (
	"testing"
	"time"
)

type loginPayload struct {
	UserID string
}

var testLogin = Define[loginPayload]("eventtest:login")

func TestDefine(t *testing.T) {
	if testLogin.Name() != Name("eventtest:login") {
		t.Errorf("expected name 'eventtest:login', got %q", testLogin.Name())
	}
	if !Registered("eventtest:login") {
		t.Error("expected name to be registered")
	}
	if Registered("eventtest:unknown") {
		t.Error("expected unknown name to not be registered")
	}
}

func TestDefine_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Define to panic on duplicate name")
		}
	}()
	Define[loginPayload]("eventtest:login")
}

func TestDefine_Empty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Define to panic on empty name")
		}
	}()
	Define[struct{}]("")
}

func TestNames_Sorted(t *testing.T) {
	Define[struct{}]("eventtest:names-b")
	Define[struct{}]("eventtest:names-a")

	names := Names()
	if len(names) < 3 {
		t.Fatalf("expected at least 3 registered names, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}

func TestNew(t *testing.T) {
	e := New("eventtest:login", loginPayload{UserID: "alice123"})

	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if e.Name != Name("eventtest:login") {
		t.Errorf("expected name 'eventtest:login', got %q", e.Name)
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	p, ok := PayloadOf[loginPayload](e)
	if !ok {
		t.Fatal("expected payload of type loginPayload")
	}
	if p.UserID != "alice123" {
		t.Errorf("expected UserID 'alice123', got %q", p.UserID)
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		e := New("eventtest:login", loginPayload{})
		if seen[e.ID] {
			t.Fatalf("duplicate event ID %q", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestNew_Options(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := New("eventtest:login", loginPayload{},
		WithID("explicit-id"),
		WithSource("auth"),
		WithCorrelationID("corr-1"),
		WithField("region", "us-east"),
		WithCreatedAt(created),
	)

	if e.ID != "explicit-id" {
		t.Errorf("expected explicit ID, got %q", e.ID)
	}
	if e.Meta.Source != "auth" {
		t.Errorf("expected source 'auth', got %q", e.Meta.Source)
	}
	if e.Meta.CorrelationID != "corr-1" {
		t.Errorf("expected correlation 'corr-1', got %q", e.Meta.CorrelationID)
	}
	if e.Field("region") != "us-east" {
		t.Errorf("expected field region='us-east', got %q", e.Field("region"))
	}
	if !e.CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt %v, got %v", created, e.CreatedAt)
	}
}

func TestEvent_WithPayload_DoesNotMutate(t *testing.T) {
	orig := New("eventtest:login", loginPayload{UserID: "alice123"}, WithField("k", "v"))
	copied := orig.WithPayload(loginPayload{UserID: "bob"})

	if p, _ := PayloadOf[loginPayload](orig); p.UserID != "alice123" {
		t.Errorf("original payload mutated: %q", p.UserID)
	}
	if p, _ := PayloadOf[loginPayload](copied); p.UserID != "bob" {
		t.Errorf("copy payload wrong: %q", p.UserID)
	}
	if copied.ID != orig.ID {
		t.Error("copy should keep the same event ID")
	}
}

func TestEvent_WithMetaField_DoesNotMutate(t *testing.T) {
	orig := New("eventtest:login", loginPayload{}, WithField("a", "1"))
	copied := orig.WithMetaField("b", "2")

	if orig.Field("b") != "" {
		t.Error("original metadata mutated by WithMetaField")
	}
	if copied.Field("a") != "1" || copied.Field("b") != "2" {
		t.Errorf("copy metadata wrong: a=%q b=%q", copied.Field("a"), copied.Field("b"))
	}
}

func TestEvent_EventKey(t *testing.T) {
	e := New("eventtest:login", loginPayload{})
	if e.EventKey() != e.ID {
		t.Errorf("expected EventKey to equal ID %q, got %v", e.ID, e.EventKey())
	}
}

func TestPayloadOf_Mismatch(t *testing.T) {
	e := New("eventtest:login", loginPayload{})
	if _, ok := PayloadOf[int](e); ok {
		t.Error("expected PayloadOf with wrong type to report false")
	}
}
