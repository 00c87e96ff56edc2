package uri

import (
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcXYZ019-._~", "abcXYZ019-._~"},
		{" ", "%20"},
		{"a b", "a%20b"},
		{"http://example.test/feed.xml", "http%3A%2F%2Fexample.test%2Ffeed.xml"},
		{"\xff\x00", "%FF%00"},
		{"100%", "100%25"},
	}

	for _, tt := range tests {
		if got := Encode(tt.in); got != tt.want {
			t.Errorf("Encode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode_SafeInputUnchanged(t *testing.T) {
	s := "already-safe_string.~42"
	if got := Encode(Encode(s)); got != s {
		t.Errorf("Encode(Encode(%q)) = %q", s, got)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "feed.xml", "feed.xml"},
		{"space", "a%20b", "a b"},
		{"lowercase hex", "%2f%3a", "/:"},
		{"plus is literal", "a+b", "a+b"},
		{"trailing percent", "abc%", "abc%"},
		{"one trailing digit", "abc%4", "abc%4"},
		{"non hex digits", "%zz1", "%zz1"},
		{"percent then valid", "%%41", "%A"},
		{"only percent", "%", "%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.in); got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	inputs := []string{
		"",
		"http://example.test/feed.xml?x=1&y=%20",
		"ünïcödé",
		"%%%",
		string(all),
	}

	for _, s := range inputs {
		if got := Decode(Encode(s)); got != s {
			t.Errorf("Decode(Encode(%q)) = %q", s, got)
		}
	}
}
