package sequence

import (
	"testing"

	"github.com/danmuck/bcp/internal/testutil/testlog"
)

func TestWrapAround(t *testing.T) {
	testlog.Start(t)
	if got := Max.Next(); got != 0 {
		t.Fatalf("SN(255)+1 = %d, want 0", got)
	}
	if got := Number(0).Prev(); got != Max {
		t.Fatalf("SN(0)-1 = %d, want %d", got, Max)
	}
}

func TestAddSubWrap(t *testing.T) {
	testlog.Start(t)
	if got := Number(250).Add(10); got != 4 {
		t.Fatalf("250+10 = %d, want 4", got)
	}
	if got := Number(4).Sub(10); got != 250 {
		t.Fatalf("4-10 = %d, want 250", got)
	}
}

func TestTotalOrderOnRawValue(t *testing.T) {
	testlog.Start(t)
	// Comparison is on the raw value, not nearest-modular-predecessor: 255
	// is NOT "less than" 0 just because it wraps there via Next().
	if !(Number(255) > Number(0)) {
		t.Fatalf("expected 255 > 0 under raw ordering")
	}
}
