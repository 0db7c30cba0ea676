package slug

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"  Spaced   Out  ", "spaced-out"},
		{"snake_case_title", "snake-case-title"},
		{"--Already--Hyphenated--", "already-hyphenated"},
		{"Go 1.22 Release Notes", "go-122-release-notes"},
		{"UPPER lower MiXeD", "upper-lower-mixed"},
		{"!!!", ""},
		{"", ""},
		{"a", "a"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tt := range tests {
		if got := Make(tt.title); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestMake_OnlySafeCharacters(t *testing.T) {
	titles := []string{
		"Hello, World!",
		"C'est la vie (encore)",
		"100% Pure -- Guaranteed",
		"___under___score___",
		"émoji 🎉 title",
	}
	for _, title := range titles {
		got := Make(title)
		for _, r := range got {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				t.Errorf("Make(%q) = %q contains unsafe rune %q", title, got, r)
			}
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Errorf("Make(%q) = %q has leading/trailing hyphen", title, got)
		}
		if strings.Contains(got, "--") {
			t.Errorf("Make(%q) = %q contains a hyphen run", title, got)
		}
	}
}

func TestUnique_BaseFree(t *testing.T) {
	got, err := Unique("my-post", func(string) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if got != "my-post" {
		t.Errorf("got %q, want %q", got, "my-post")
	}
}

func TestUnique_FirstCollision(t *testing.T) {
	taken := map[string]bool{"my-post": true}
	got, err := Unique("my-post", func(s string) (bool, error) { return taken[s], nil })
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if got != "my-post-1" {
		t.Errorf("got %q, want %q", got, "my-post-1")
	}
}

func TestUnique_SequentialProbing(t *testing.T) {
	taken := map[string]bool{"x": true, "x-1": true, "x-2": true}
	got, err := Unique("x", func(s string) (bool, error) { return taken[s], nil })
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if got != "x-3" {
		t.Errorf("got %q, want %q", got, "x-3")
	}
}

func TestUnique_RandomFallbackAfterBound(t *testing.T) {
	calls := 0
	got, err := Unique("hot", func(string) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if calls != MaxProbes {
		t.Errorf("probe calls = %d, want %d", calls, MaxProbes)
	}
	if !strings.HasPrefix(got, "hot-") {
		t.Fatalf("fallback slug %q does not keep the base prefix", got)
	}
	suffix := strings.TrimPrefix(got, "hot-")
	if len(suffix) != 8 {
		t.Errorf("fallback suffix %q is not 8 hex chars", suffix)
	}
	if fmt.Sprintf("hot-%d", MaxProbes) == got {
		t.Errorf("fallback slug %q still looks like a sequential probe", got)
	}
}

func TestUnique_PropagatesError(t *testing.T) {
	boom := errors.New("store down")
	_, err := Unique("y", func(string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
}
