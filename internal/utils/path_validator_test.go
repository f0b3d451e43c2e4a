package utils

import "testing"

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Docs", false},
		{"spaces and dots", "Tax Returns 2024.v2", false},
		{"unicode", "Фото", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"slash", "a/b", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"control char", "a\tb", true},
		{"too long", string(make([]byte, 11)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input, 10)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  My   Photos \n"); got != "My Photos" {
		t.Errorf("NormalizeName() = %q, want %q", got, "My Photos")
	}
}
