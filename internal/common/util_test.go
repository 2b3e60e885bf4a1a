package common

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestNewID_LengthAndHex(t *testing.T) {
	s := NewID()
	if len(s) != 32 {
		t.Fatalf("expected length 32, got %d (%q)", len(s), s)
	}
	if strings.Contains(s, "-") {
		t.Fatalf("id must not contain dashes: %q", s)
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("id is not valid hex: %v", err)
	}
	if strings.ToLower(s) != s {
		t.Fatalf("id must be lowercase: %q", s)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := NewID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewDeviceCode_Format(t *testing.T) {
	c := NewDeviceCode()
	if !strings.HasPrefix(c, "dev-") {
		t.Fatalf("expected dev- prefix, got %q", c)
	}
	if len(c) != len("dev-")+8 {
		t.Fatalf("unexpected length: %q", c)
	}
}
