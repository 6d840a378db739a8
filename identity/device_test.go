package identity

import (
	"fmt"
	"regexp"
	"testing"

	"housefinder/storage"
)

var uuidV4Shape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestDeviceID_StableWithinScope(t *testing.T) {
	p := NewProvider(storage.NewMemoryStore())

	first := p.DeviceID()
	second := p.DeviceID()

	if first != second {
		t.Fatalf("expected stable id, got %s then %s", first, second)
	}
	if len(first) != 36 {
		t.Fatalf("expected 36-char id, got %d chars", len(first))
	}
	if !uuidV4Shape.MatchString(first) {
		t.Fatalf("id does not match UUID-v4 shape: %s", first)
	}
}

func TestDeviceID_ClearRegenerates(t *testing.T) {
	p := NewProvider(storage.NewMemoryStore())

	first := p.DeviceID()
	if err := p.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	second := p.DeviceID()

	if first == second {
		t.Fatalf("expected a fresh id after clear, got %s twice", first)
	}
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, bool, error) { return "", false, fmt.Errorf("storage offline") }
func (brokenStore) Set(string, string) error         { return fmt.Errorf("storage offline") }
func (brokenStore) Delete(string) error              { return fmt.Errorf("storage offline") }

func TestDeviceID_EphemeralFallback(t *testing.T) {
	p := NewProvider(brokenStore{})

	first := p.DeviceID()
	second := p.DeviceID()

	if !uuidV4Shape.MatchString(first) || !uuidV4Shape.MatchString(second) {
		t.Fatalf("fallback ids must still be UUID-v4 shaped: %s / %s", first, second)
	}
	if first == second {
		t.Fatalf("ephemeral ids should differ per call, got %s twice", first)
	}
}
