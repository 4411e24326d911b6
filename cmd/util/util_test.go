package util

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Line longer than %d characters: %q", Wrap, line)
		}
	}

	if got := WrapString("  short   text "); got != "short text" {
		t.Errorf("Expected %q, got %q", "short text", got)
	}
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		arg         string
		forceString bool
		expected    any
	}{
		{"hello", false, "hello"},
		{`"quoted"`, false, "quoted"},
		{"42", false, json.Number("42")},
		{"42", true, "42"},
		{"true", false, true},
		{"null", false, nil},
		{"", false, ""},
		{"1 2", false, "1 2"},
	}

	for _, tc := range testCases {
		t.Run(tc.arg, func(t *testing.T) {
			if got := ParseValue(tc.arg, tc.forceString); got != tc.expected {
				t.Errorf("ParseValue(%q, %v) = %#v, expected %#v", tc.arg, tc.forceString, got, tc.expected)
			}
		})
	}

	obj, ok := ParseValue(`{"a":[1]}`, false).(map[string]any)
	if !ok || len(obj) != 1 {
		t.Errorf("Expected an object, got %#v", obj)
	}
}

func TestFormatValue(t *testing.T) {
	got, err := FormatValue(map[string]any{"b": json.Number("1"), "a": "x"})
	if err != nil {
		t.Fatalf("FormatValue failed: %v", err)
	}
	if got != `{"a":"x","b":1}` {
		t.Errorf("Unexpected output %s", got)
	}
}
