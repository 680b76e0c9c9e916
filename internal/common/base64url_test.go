//go:build unit

package common

import (
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "SimpleString",
			input:    []byte("hello world"),
			expected: "aGVsbG8gd29ybGQ",
		},
		{
			name:     "EmptyString",
			input:    []byte(""),
			expected: "",
		},
		{
			name:     "WithSpecialChars",
			input:    []byte("hello+world/test"),
			expected: "aGVsbG8rd29ybGQvdGVzdA",
		},
		{
			name:     "EntityIRI",
			input:    []byte("https://example.org/aas/Plant1"),
			expected: "aHR0cHM6Ly9leGFtcGxlLm9yZy9hYXMvUGxhbnQx",
		},
		{
			name:     "WithPaddingNeeded",
			input:    []byte("a"),
			expected: "YQ",
		},
		{
			name:     "WithPaddingNeeded2",
			input:    []byte("ab"),
			expected: "YWI",
		},
		{
			name:     "BinaryData",
			input:    []byte{0, 1, 2, 3, 255, 254},
			expected: "AAECA__-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Encode(tt.input)
			if result != tt.expected {
				t.Errorf("Encode(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []byte
		expectError bool
	}{
		{
			name:        "SimpleString",
			input:       "aGVsbG8gd29ybGQ",
			expected:    []byte("hello world"),
			expectError: false,
		},
		{
			name:        "WithDashUnderscoreChars",
			input:       "aGVsbG8td29ybGRfdGVzdA",
			expected:    []byte("hello-world_test"),
			expectError: false,
		},
		{
			name:        "InvalidBase64",
			input:       "!@#$%^",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "WithAutoPadding1",
			input:       "YQ",
			expected:    []byte("a"),
			expectError: false,
		},
		{
			name:        "WithAutoPadding2",
			input:       "YWI",
			expected:    []byte("ab"),
			expectError: false,
		},
		{
			name:        "BinaryData",
			input:       "AAECA__-",
			expected:    []byte{0, 1, 2, 3, 255, 254},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.input)

			if tt.expectError && err == nil {
				t.Errorf("Decode(%q) expected error but got none", tt.input)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Decode(%q) unexpected error: %v", tt.input, err)
			}
			if !tt.expectError {
				if string(result) != string(tt.expected) {
					t.Errorf("Decode(%q) = %q, want %q", tt.input, string(result), string(tt.expected))
				}
			}
		})
	}
}

// Encoded ids are used as registry path segments, so encoding must round-trip
// and distinct ids must never collide.
func TestEncodeStringRoundTrip(t *testing.T) {
	ids := []string{
		"https://example.org/aas/Plant1",
		"https://example.org/aas/Plant1/",
		"urn:example:submodel:0815",
		"urn:example:submodel:0816",
		"plain-id",
	}

	seen := make(map[string]string, len(ids))
	for _, id := range ids {
		encoded := EncodeString(id)
		if prev, ok := seen[encoded]; ok {
			t.Errorf("EncodeString collision: %q and %q both map to %q", prev, id, encoded)
		}
		seen[encoded] = id

		decoded, err := DecodeString(encoded)
		if err != nil {
			t.Errorf("DecodeString(%q) unexpected error: %v", encoded, err)
		}
		if decoded != id {
			t.Errorf("round trip of %q = %q", id, decoded)
		}
	}
}
