// Package indicator drives the out-of-range alert LED. The radar core only
// produces a boolean; translating it into LED state lives here, next to the
// serial link to the LED controller board.
package indicator

import (
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/banshee-data/kinradar/internal/monitoring"
)

// Indicator consumes the session's out-of-range alert flag.
type Indicator interface {
	// Set applies the alert state. Called only on transitions.
	Set(alert bool) error
	Close() error
}

// Nop discards alert updates. Used when no LED hardware is attached.
type Nop struct{}

func (Nop) Set(bool) error { return nil }
func (Nop) Close() error   { return nil }

// LED command bytes understood by the controller board: steady green when
// the scene is in range, red/yellow blink when mostly out of range.
const (
	cmdLEDGreen       = 'G'
	cmdLEDBlinkRedYel = 'R'
	cmdLEDOff         = '0'
)

// SerialLED writes LED commands to a controller over a serial port. The port
// is injected as an io.WriteCloser so tests run without hardware.
type SerialLED struct {
	port io.WriteCloser
}

// OpenSerialLED opens the controller board at path. 9600 8N1; the board
// ignores anything it does not recognise, so there is no read side.
func OpenSerialLED(path string) (*SerialLED, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open LED controller at %s: %v", path, err)
	}
	return NewSerialLED(port), nil
}

// NewSerialLED wraps an already-open port.
func NewSerialLED(port io.WriteCloser) *SerialLED {
	return &SerialLED{port: port}
}

func (l *SerialLED) Set(alert bool) error {
	cmd := byte(cmdLEDGreen)
	if alert {
		cmd = cmdLEDBlinkRedYel
	}
	if _, err := l.port.Write([]byte{cmd, '\n'}); err != nil {
		return fmt.Errorf("failed to write LED command: %v", err)
	}
	monitoring.Logf("led: alert=%v", alert)
	return nil
}

// Close switches the LED off before closing the port.
func (l *SerialLED) Close() error {
	if _, err := l.port.Write([]byte{cmdLEDOff, '\n'}); err != nil {
		l.port.Close()
		return err
	}
	return l.port.Close()
}
