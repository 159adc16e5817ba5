package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty string.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s, want %s", got, empty)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs share a digest")
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("part boundaries must change the key")
	}
	if Key("x") != Sum([]byte("x")) {
		t.Error("single part key should equal Sum")
	}
	if Key("<p>x</p>", "x") != Key("<p>x</p>", "x") {
		t.Error("key is not deterministic")
	}
}
