package utils

import (
	"strings"
	"testing"
)

func TestGenerateIssueIDShape(t *testing.T) {
	id := GenerateIssueID()

	if !strings.HasPrefix(id, IssueIDPrefix) {
		t.Fatalf("id %q missing prefix %q", id, IssueIDPrefix)
	}

	suffix := strings.TrimPrefix(id, IssueIDPrefix)
	if len(suffix) != 8 {
		t.Fatalf("id %q suffix length = %d, want 8", id, len(suffix))
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			t.Fatalf("id %q contains non-digit suffix character %q", id, r)
		}
	}
}

func TestGenerateIssueIDNonEmpty(t *testing.T) {
	for i := 0; i < 100; i++ {
		if GenerateIssueID() == "" {
			t.Fatal("generated empty id")
		}
	}
}
