package gcp

import "testing"

func TestClientOptionsFromEnv(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		if got := ClientOptionsFromEnv(); len(got) != 0 {
			t.Fatalf("options: got=%d want=0", len(got))
		}
		if CredentialsConfigured() {
			t.Fatalf("CredentialsConfigured: got=true want=false")
		}
	})

	t.Run("inline json", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		if got := ClientOptionsFromEnv(); len(got) != 1 {
			t.Fatalf("options: got=%d want=1", len(got))
		}
		if !CredentialsConfigured() {
			t.Fatalf("CredentialsConfigured: got=false want=true")
		}
	})

	t.Run("file path", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/gcp/sa.json")
		if got := ClientOptionsFromEnv(); len(got) != 1 {
			t.Fatalf("options: got=%d want=1", len(got))
		}
		if !CredentialsConfigured() {
			t.Fatalf("CredentialsConfigured: got=false want=true")
		}
	})

	t.Run("whitespace only counts as unset", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "   ")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "\t")
		if CredentialsConfigured() {
			t.Fatalf("CredentialsConfigured: got=true want=false")
		}
	})
}
