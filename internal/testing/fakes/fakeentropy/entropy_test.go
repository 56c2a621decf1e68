package fakeentropy

import (
	"errors"
	"testing"
)

func TestEntropy_Cycles(t *testing.T) {
	e := New(7, 8)

	want := []uint32{7, 8, 7}
	for i, w := range want {
		got, err := e.Draw32()
		if err != nil {
			t.Fatalf("Draw32() error: %v", err)
		}
		if got != w {
			t.Errorf("draw %d = %d, want %d", i, got, w)
		}
	}
	if e.Draws() != 3 {
		t.Errorf("Draws() = %d, want 3", e.Draws())
	}
}

func TestEntropy_Err(t *testing.T) {
	boom := errors.New("boom")
	e := New(1)
	e.Err = boom

	if _, err := e.Draw32(); !errors.Is(err, boom) {
		t.Errorf("Draw32() error = %v, want %v", err, boom)
	}
}

func TestEntropy_Empty(t *testing.T) {
	if _, err := New().Draw32(); err == nil {
		t.Error("Draw32() on empty sequence expected error, got nil")
	}
}
