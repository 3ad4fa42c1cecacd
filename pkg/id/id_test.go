package id

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestNew_Version4(t *testing.T) {
	u := New()
	if u == uuid.Nil {
		t.Fatal("nil uuid")
	}
	if u.Version() != 4 {
		t.Fatalf("version = %d, want 4", u.Version())
	}
}

func TestTokenID_Format(t *testing.T) {
	got := TokenID()
	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	u, err := uuid.Parse(got)
	if err != nil || u.Version() != 4 {
		t.Fatalf("TokenID must decode as a v4 uuid: %v", err)
	}
}

func TestTokenID_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := TokenID()
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, v)
		}
		seen[v] = struct{}{}
	}
}
