package jsonutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

type payload struct {
	Score int    `json:"quality_score"`
	Room  string `json:"room_type"`
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"too short", "```{}```", "```{}```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    payload
		wantErr bool
	}{
		{"plain", `{"quality_score": 72, "room_type": "kitchen"}`, payload{72, "kitchen"}, false},
		{"fenced", "```json\n{\"quality_score\": 40}\n```", payload{Score: 40}, false},
		{"prose", `Here you go: {"room_type": "bedroom"} hope it helps`, payload{Room: "bedroom"}, false},
		{"no object", `sorry, I cannot do that`, payload{}, true},
		{"broken", `{"quality_score": }`, payload{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[payload]([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecode_ErrorPreviewKeepsRunesWhole(t *testing.T) {
	// One ASCII byte ahead of the two-byte runes puts byte 200 mid-rune.
	raw := `{"x` + strings.Repeat("é", 150) + `": }`

	_, err := Decode[payload]([]byte(raw))
	if err == nil {
		t.Fatal("Decode() error = nil")
	}
	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Errorf("error message is not valid UTF-8: %q", msg)
	}
	if !strings.Contains(msg, "...") {
		t.Errorf("error message %q was not truncated", msg)
	}
}
