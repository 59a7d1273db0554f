package htmlsanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"plain text", "First tooth!", "First tooth!"},
		{"tags stripped", "<b>erupted</b> today", "erupted today"},
		{"script removed", "note<script>alert('xss')</script>", "note"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"ampersand round trip", "up & down", "up & down"},
		{"whitespace trimmed", "  spaced  ", "spaced"},
		{"img stripped", `<img src=x onerror=alert(1)>photo`, "photo"},
		{"thai text preserved", "ฟันน้ำนมซี่แรก", "ฟันน้ำนมซี่แรก"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Error("nil in, nil out")
	}

	s := "<i>remark</i>"
	got := TextPtr(&s)
	if got == nil || *got != "remark" {
		t.Errorf("TextPtr = %v, want remark", got)
	}

	empty := "<script></script>"
	if got := TextPtr(&empty); got != nil {
		t.Errorf("fully-stripped input should map to nil, got %q", *got)
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"plain note", true},
		{"a < b", true},
		{"a > b", true},
		{"<b>bold</b>", false},
		{"<p>", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsPlainText(tt.input); got != tt.want {
				t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
