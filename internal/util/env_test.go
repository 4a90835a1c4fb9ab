package util

import (
	"testing"
	"time"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{name: "unset", want: 500},
		{name: "valid", value: "1000", set: true, want: 1000},
		{name: "not a number", value: "lots", set: true, want: 500},
		{name: "zero", value: "0", set: true, want: 500},
		{name: "negative", value: "-4", set: true, want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("WIKIGRAPH_TEST_INT", tt.value)
			}
			if got := GetEnvInt("WIKIGRAPH_TEST_INT", 500); got != tt.want {
				t.Fatalf("unexpected value: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("WIKIGRAPH_TEST_BOOL", "true")
	if !GetEnvBool("WIKIGRAPH_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("WIKIGRAPH_TEST_BOOL", "yes")
	if GetEnvBool("WIKIGRAPH_TEST_BOOL", false) {
		t.Fatal("expected default for unrecognised value")
	}
}

func TestGetEnvString_EmptyUsesDefault(t *testing.T) {
	t.Setenv("WIKIGRAPH_TEST_STRING", "")
	if got := GetEnvString("WIKIGRAPH_TEST_STRING", "memory"); got != "memory" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("WIKIGRAPH_TEST_DURATION", "90s")
	if got := GetEnvDuration("WIKIGRAPH_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("unexpected duration: %v", got)
	}
	t.Setenv("WIKIGRAPH_TEST_DURATION", "soon")
	if got := GetEnvDuration("WIKIGRAPH_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected default duration, got %v", got)
	}
}
