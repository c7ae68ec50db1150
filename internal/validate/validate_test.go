package validate

import (
	"strings"
	"testing"
)

func TestID(t *testing.T) {
	if n, ok := ID(" 42 "); !ok || n != 42 {
		t.Fatalf("want 42, got %d %v", n, ok)
	}
	for _, bad := range []string{"", "0", "-1", "1e3", "abc", "1; DROP"} {
		if _, ok := ID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestQAllowsArabic(t *testing.T) {
	if _, ok := Q("ساعة ذكية"); !ok {
		t.Fatal("arabic query rejected")
	}
	if _, ok := Q("<script>"); ok {
		t.Fatal("markup accepted")
	}
	if _, ok := Q(strings.Repeat("a", 101)); ok {
		t.Fatal("overlong query accepted")
	}
}

func TestURLs(t *testing.T) {
	if _, ok := URL("https://maps.example/x"); !ok {
		t.Fatal("https rejected")
	}
	if _, ok := URL("javascript:alert(1)"); ok {
		t.Fatal("javascript url accepted")
	}
	if _, ok := ImageURL(""); !ok {
		t.Fatal("empty image rejected")
	}
	if _, ok := ImageURL("data:image/png;base64,iVBORw0KGgo="); !ok {
		t.Fatal("data uri rejected")
	}
	if _, ok := ImageURL("data:text/html;base64,PGI+"); ok {
		t.Fatal("non-image data uri accepted")
	}
}

func TestNumbersAndLists(t *testing.T) {
	if Int("x", 99) != 99 || Int("7", 0) != 7 || Int("-3", 1) != 1 {
		t.Fatal("Int coercion")
	}
	if Float("12.5", 0) != 12.5 || Float("", 3) != 3 {
		t.Fatal("Float coercion")
	}
	for _, raw := range []string{"Inf", "+Inf", "-Inf", "NaN", "1e400", "-2"} {
		if got := Float(raw, 7); got != 7 {
			t.Fatalf("Float(%q) = %v, want fallback", raw, got)
		}
	}
	if Int("99999999999999999999", 5) != 5 || Int("1e3", 5) != 5 {
		t.Fatal("Int overflow or exponent must fall back")
	}
	got := List(" Gaming, ,Music ,")
	if len(got) != 2 || got[0] != "Gaming" || got[1] != "Music" {
		t.Fatalf("List: %v", got)
	}
	if Text("  abcdef ", 3) != "abc" {
		t.Fatal("Text cap")
	}
	if !Password("x") || Password("") {
		t.Fatal("Password bounds")
	}
}
