package term

import (
	"fmt"
	"io"
)

// Sink is the character-cell terminal the renderer draws into. Implementations
// need absolute cursor addressing, clear-to-end-of-line, and SGR-style
// attribute setting with 8-color foreground/background and a bold weight.
type Sink interface {
	io.Writer

	// MoveTo positions the cursor at the given zero-based row.
	MoveTo(row int) error
	// MoveToColumn positions the cursor at the given zero-based column on
	// the current row.
	MoveToColumn(col int) error
	// ClearLine clears from the cursor to the end of the line.
	ClearLine() error
	// SetBold switches the bold weight on or off.
	SetBold(bold bool) error
	// SetForeground selects foreground color 0-7.
	SetForeground(color int) error
	// SetBackground selects background color 0-7.
	SetBackground(color int) error
	// Reset clears all attributes.
	Reset() error
	// Home moves the cursor to the top-left and optionally clears the screen.
	Home(clear bool) error
}

// ANSISink implements Sink with ANSI/VT100 escape sequences.
type ANSISink struct {
	w io.Writer
}

// NewANSISink wraps a writer, typically os.Stdout.
func NewANSISink(w io.Writer) *ANSISink {
	return &ANSISink{w: w}
}

func (s *ANSISink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *ANSISink) MoveTo(row int) error {
	_, err := fmt.Fprintf(s.w, "\x1b[%dH", row+1)
	return err
}

func (s *ANSISink) MoveToColumn(col int) error {
	_, err := fmt.Fprintf(s.w, "\x1b[%dG", col+1)
	return err
}

func (s *ANSISink) ClearLine() error {
	_, err := io.WriteString(s.w, "\x1b[K")
	return err
}

func (s *ANSISink) SetBold(bold bool) error {
	seq := "\x1b[22m"
	if bold {
		seq = "\x1b[1m"
	}
	_, err := io.WriteString(s.w, seq)
	return err
}

func (s *ANSISink) SetForeground(color int) error {
	_, err := fmt.Fprintf(s.w, "\x1b[%dm", color%8+30)
	return err
}

func (s *ANSISink) SetBackground(color int) error {
	_, err := fmt.Fprintf(s.w, "\x1b[%dm", color%8+40)
	return err
}

func (s *ANSISink) Reset() error {
	_, err := io.WriteString(s.w, "\x1b[m")
	return err
}

func (s *ANSISink) Home(clear bool) error {
	seq := "\x1b[H"
	if clear {
		seq = "\x1b[H\x1b[2J"
	}
	_, err := io.WriteString(s.w, seq)
	return err
}

// Flush forwards to the underlying writer when it is buffered, so a frame
// reaches the terminal in one write burst.
func (s *ANSISink) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
