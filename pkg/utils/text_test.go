package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("diagnóstico", 6); got != "diagnó..." {
		t.Errorf("multibyte truncate got %s", got)
	}
}

func TestFold(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Clínica", "clinica"},
		{"NUTRICIÓN", "nutricion"},
		{"pequeños animales", "pequenos animales"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Telemedicina Veterinaria", "telemedicina-veterinaria"},
		{"  Gestión   de clínicas! ", "gestion-de-clinicas"},
		{"IA & datos 2024", "ia-datos-2024"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
