package utils

import (
	"bytes"
	"testing"
	"time"
)

func TestPaceWriter_PreservesText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPaceWriter(&buf)
	p.sleep = func(time.Duration) {}

	text := "Hola, tu pago mínimo es $450.00.\n¿Algo más?"
	if err := p.WriteText(text); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if buf.String() != text {
		t.Errorf("Expected %q, got %q", text, buf.String())
	}
}

func TestPaceWriter_DelayClasses(t *testing.T) {
	var buf bytes.Buffer
	p := NewPaceWriter(&buf)

	var delays []time.Duration
	p.sleep = func(d time.Duration) { delays = append(delays, d) }

	if err := p.WriteText("a. b"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	want := []time.Duration{defaultDelay, punctuationDelay, whitespaceDelay, defaultDelay}
	if len(delays) != len(want) {
		t.Fatalf("Expected %d delays, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("Delay %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}
