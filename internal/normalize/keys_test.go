package normalize

import (
	"testing"
)

func TestToLowerDotPath(t *testing.T) {
	tests := map[string]string{
		"HOST":               "host",
		"POOL__MAX":          "pool.max",
		"MAX_CONNECTIONS":    "max_connections",
		"REPLICA__READ_ONLY": "replica.read_only",
		"A__B__C":            "a.b.c",
		"Mixed__Case":        "mixed.case",
		"":                   "",
	}

	for input, want := range tests {
		if got := ToLowerDotPath(input); got != want {
			t.Errorf("ToLowerDotPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEnvToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"database", "DATABASE"},
		{"cache/redis", "CACHE_REDIS"},
		{"rate-limit", "RATE_LIMIT"},
		{"app.v2", "APP_V2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EnvToken(tt.input); got != tt.expected {
				t.Errorf("EnvToken(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
