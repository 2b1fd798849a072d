package wiretime

import (
	"testing"
	"time"

	"github.com/danmuck/bcp/internal/testutil/testlog"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testlog.Start(t)
	p := Future(100 * time.Millisecond)
	buf := make([]byte, 8)
	Encode(buf, p)
	got := Decode(buf)
	if got != p {
		t.Fatalf("round trip mismatch: got %d, want %d", got, p)
	}
}

func TestEncodeIsLittleEndian(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 8)
	Encode(buf, Point(0x0102030405060708))
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, buf[i], want[i])
		}
	}
}

func TestFutureIsAhead(t *testing.T) {
	testlog.Start(t)
	before := time.Now()
	p := Future(50 * time.Millisecond)
	local := Local(p)
	if !local.After(before) {
		t.Fatalf("expected future wire time to decode after %v, got %v", before, local)
	}
}
