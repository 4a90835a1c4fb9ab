package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain title", input: "Paris", want: "Paris"},
		{name: "non ascii title", input: "Zürich", want: "Zürich"},
		{name: "null byte", input: "Par\x00is", want: "Paris"},
		{name: "invalid utf8", input: string([]byte{'P', 0xff, 'a'}), want: "Pa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePostgresText(tt.input); got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}
