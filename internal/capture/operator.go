package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// Lines pumps r line by line into the returned channel, which is closed at EOF.
// Every consumer of a terminal should share one pump so no line is read twice.
func Lines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// Drain discards lines already waiting in the pump, such as keys pressed after a
// session ended, and returns how many it dropped. It never blocks.
func Drain(lines <-chan string) int {
	n := 0
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// TerminalOperator lets a person at the keyboard drive a session:
// "s" (or an empty line) captures, "q" cancels. Closing the input cancels.
type TerminalOperator struct {
	lines <-chan string
	out   io.Writer
}

// NewTerminalOperator reads decisions from lines and writes prompts to out.
func NewTerminalOperator(lines <-chan string, out io.Writer) *TerminalOperator {
	return &TerminalOperator{lines: lines, out: out}
}

func (t *TerminalOperator) Operate(ctx context.Context, s *Session) {
	fmt.Fprintln(t.out, s.Prompt)
	fmt.Fprintln(t.out, "Press Enter (or s) to capture, q to cancel.")

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription("Camera live"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case ev, ok := <-s.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case EventFrame:
				_ = bar.Add(1)
			case EventRetry:
				_ = bar.Clear()
				if ev.Faces == 0 {
					fmt.Fprintln(t.out, "No face detected. Face the camera and try again.")
				} else {
					fmt.Fprintf(t.out, "%d faces detected. Only one person may be in frame.\n", ev.Faces)
				}
			case EventWarning:
				_ = bar.Clear()
				fmt.Fprintf(t.out, "Could not process frame: %v\n", ev.Err)
			}
		case line, ok := <-t.lines:
			if !ok {
				s.Cancel()
				return
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "", "s":
				s.Capture()
			case "q":
				s.Cancel()
			default:
				fmt.Fprintf(t.out, "Unknown command %q\n", line)
			}
		}
	}
}

// Script replays a fixed list of signals. The first is sent after the first frame and
// each following one after the session rejects a capture. Once the list is exhausted
// the session is left to run until it ends.
type Script struct {
	Signals []Signal
}

func (sc Script) Operate(ctx context.Context, s *Session) {
	next := 0
	send := func() {
		if next < len(sc.Signals) {
			s.signal(sc.Signals[next])
			next++
		}
	}
	started := false
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case EventFrame:
				if !started {
					started = true
					send()
				}
			case EventRetry, EventWarning:
				send()
			}
		}
	}
}
