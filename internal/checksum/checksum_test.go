package checksum

import "testing"

func TestSum(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("distinct inputs collide")
	}
}

func TestETag(t *testing.T) {
	if got := ETag(Sum(nil)); got != `"e3b0c44298fc1c14"` {
		t.Errorf("ETag = %s", got)
	}
	if got := ETag("abc"); got != `"abc"` {
		t.Errorf("short ETag = %s", got)
	}
}
