package indicator

import (
	"bytes"
	"testing"

	"github.com/banshee-data/kinradar/internal/monitoring"
)

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error { p.closed = true; return nil }

func TestSerialLEDCommands(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	defer func() { monitoring.Logf = orig }()

	port := &fakePort{}
	led := NewSerialLED(port)

	if err := led.Set(true); err != nil {
		t.Fatalf("Set(true): %v", err)
	}
	if err := led.Set(false); err != nil {
		t.Fatalf("Set(false): %v", err)
	}
	if err := led.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got, want := port.String(), "R\nG\n0\n"; got != want {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if !port.closed {
		t.Error("port not closed")
	}
}

func TestNopIndicator(t *testing.T) {
	var i Indicator = Nop{}
	if err := i.Set(true); err != nil {
		t.Errorf("Nop.Set: %v", err)
	}
	if err := i.Close(); err != nil {
		t.Errorf("Nop.Close: %v", err)
	}
}
