package decode

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		input        []byte
		want         string
		wantFallback bool
	}{
		{"Plain ASCII", []byte("fetch(url)"), "fetch(url)", false},
		{"Valid multi-byte", []byte("é日"), "é日", false},
		{"BOM stripped", []byte("\xEF\xBB\xBFbody{}"), "body{}", false},
		{"Empty", nil, "", false},
		{"Invalid byte", []byte("a\xffb"), "a�b", true},
		{"Truncated sequence", []byte("x\xE6\x97"), "x�", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback := Decode(tt.input)
			if fallback != tt.wantFallback {
				t.Errorf("Decode() fallback = %v, want %v", fallback, tt.wantFallback)
			}
			if tt.wantFallback {
				if !utf8.ValidString(got) {
					t.Errorf("Decode() = %q is not valid UTF-8", got)
				}
				if !strings.Contains(got, "�") {
					t.Errorf("Decode() = %q, want replacement character", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_KeepsMatchableText(t *testing.T) {
	got, fallback := Decode([]byte("fetch(\"/x\");\xff\nfetch(\"/y\");"))
	if !fallback {
		t.Fatal("Decode() should report fallback for invalid input")
	}
	if strings.Count(got, "fetch(") != 2 {
		t.Errorf("Decode() = %q lost text around the invalid byte", got)
	}
}
