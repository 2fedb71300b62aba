package checksum

import "testing"

func TestFields_OrderAndBoundaries(t *testing.T) {
	if Fields("ab", "c") == Fields("a", "bc") {
		t.Error("field boundaries must change the digest")
	}
	if Fields("a", "b") == Fields("b", "a") {
		t.Error("field order must change the digest")
	}
	if Fields("x", "y") != Fields("x", "y") {
		t.Error("digest must be deterministic")
	}
}

func TestSum_Length(t *testing.T) {
	if got := Sum([]byte("hello")); len(got) != 64 {
		t.Errorf("len = %d, want 64", len(got))
	}
}
