package services

import (
	"strings"
	"testing"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		password, err := generatePassword()
		if err != nil {
			t.Fatalf("generatePassword failed: %v", err)
		}
		if len(password) != generatedPasswordLength {
			t.Fatalf("expected length %d, got %d", generatedPasswordLength, len(password))
		}
		for _, r := range password {
			if !strings.ContainsRune(passwordAlphabet, r) {
				t.Fatalf("character %q outside alphabet", r)
			}
		}
		if seen[password] {
			t.Fatalf("duplicate password generated: %s", password)
		}
		seen[password] = true
	}
}

func TestHasCampusDomain(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"asha@students.iiit.ac.in", true},
		{"ravi@research.iiit.ac.in", true},
		{"asha@gmail.com", false},
		{"asha@students.iiit.ac.in.evil.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasCampusDomain(tt.email); got != tt.want {
			t.Errorf("hasCampusDomain(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func BenchmarkGeneratePassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := generatePassword(); err != nil {
			b.Fatal(err)
		}
	}
}
