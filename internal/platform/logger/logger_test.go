package logger

import (
	"strings"
	"testing"
)

func TestNewSupportsBothModes(t *testing.T) {
	for _, mode := range []string{"production", "prod", "development", "test", ""} {
		if _, err := New(mode); err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
	}
}

func TestSanitizeRedactsSecretKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"api_key", "sk-live-123",
		"authorization", "Bearer abc",
		"file", "notes.txt",
	})
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key: got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("authorization: got=%v", out[3])
	}
	if out[5] != "notes.txt" {
		t.Fatalf("file: got=%v", out[5])
	}
}

func TestSanitizeHashesSessionIDs(t *testing.T) {
	first := sanitizeKVs([]interface{}{"session_id", "abc-123"})
	second := sanitizeKVs([]interface{}{"session_id", "abc-123"})
	other := sanitizeKVs([]interface{}{"session_id", "def-456"})

	hashed, ok := first[1].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") {
		t.Fatalf("session_id not hashed: got=%v", first[1])
	}
	if first[1] != second[1] {
		t.Fatalf("hash not stable: %v vs %v", first[1], second[1])
	}
	if first[1] == other[1] {
		t.Fatalf("distinct ids collide: %v", first[1])
	}
}

func TestSanitizeWalksNestedValues(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"payload", map[string]interface{}{
			"password": "hunter2",
			"topic":    "biology",
		},
	})
	payload, ok := out[1].(map[string]interface{})
	if !ok {
		t.Fatalf("payload type: got=%T", out[1])
	}
	if payload["password"] != "[REDACTED]" {
		t.Fatalf("nested password: got=%v", payload["password"])
	}
	if payload["topic"] != "biology" {
		t.Fatalf("nested topic: got=%v", payload["topic"])
	}
}
