// Package capture implements the interactive screen capture loop that
// produces hierarchy dumps and clickables summaries.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/hierarchy"
	"github.com/rocketplan/uiflow/pkg/logger"
)

const (
	// Prompt is shown before each capture.
	Prompt = "Press Enter to capture this screen..."

	// DefaultEchoLines is how many summary lines are echoed per capture.
	DefaultEchoLines = 25

	labelLayout = "20060102-150405"
)

// Options configures a capture Loop.
type Options struct {
	OutputDir string
	Label     string    // file label; defaults to the start time
	Input     io.Reader // confirmation source, usually stdin
	Out       io.Writer // operator output
	EchoLines int       // 0 means DefaultEchoLines
	Now       func() time.Time
}

// Snapshot is one parsed screen.
type Snapshot struct {
	Markup     string
	Root       *hierarchy.Node
	Clickables []hierarchy.ClickableEntry
}

// Capture is a snapshot written to disk.
type Capture struct {
	Seq         int
	XMLPath     string
	SummaryPath string
	Lines       []string // summary lines, header included
}

// Take dumps and parses the current screen.
func Take(b core.Bridge) (*Snapshot, error) {
	markup, err := b.DumpHierarchy()
	if err != nil {
		return nil, core.ErrBridgeUnavailable.WithCause(err)
	}
	root, err := hierarchy.Parse(markup)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Markup:     markup,
		Root:       root,
		Clickables: hierarchy.Collect(root),
	}, nil
}

// Loop captures a screen each time the operator confirms.
type Loop struct {
	bridge    core.Bridge
	opts      Options
	label     string
	seq       int
	sessionID string
	log       zerolog.Logger
}

// New creates a Loop. Sequence numbers start at 1.
func New(bridge core.Bridge, opts Options) *Loop {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.EchoLines <= 0 {
		opts.EchoLines = DefaultEchoLines
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	label := opts.Label
	if label == "" {
		label = opts.Now().Format(labelLayout)
	}
	id := uuid.NewString()
	return &Loop{
		bridge:    bridge,
		opts:      opts,
		label:     label,
		seq:       1,
		sessionID: id,
		log:       logger.With("capture").With().Str("session", id).Logger(),
	}
}

// Label returns the file label in use.
func (l *Loop) Label() string { return l.label }

// Next returns the sequence number the next capture will use.
func (l *Loop) Next() int { return l.seq }

// Run checks connectivity, then prompts and captures until the input is
// exhausted or ctx is cancelled. Both count as a normal stop.
func (l *Loop) Run(ctx context.Context) error {
	if err := core.EnsureConnected(l.bridge); err != nil {
		return err
	}
	if err := os.MkdirAll(l.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fmt.Fprintln(l.opts.Out, "[info] Connected device detected. Navigate to a screen and press Enter to capture; Ctrl+C to stop.")
	l.log.Info().Str("dir", l.opts.OutputDir).Str("label", l.label).Msg("capture session started")

	// The reader goroutine may stay blocked on stdin after ctx is cancelled;
	// the process exits right after, so it is not joined.
	lines := make(chan struct{})
	go func() {
		defer close(lines)
		if l.opts.Input == nil {
			return
		}
		r := bufio.NewReader(l.opts.Input)
		for {
			_, err := r.ReadString('\n')
			if err != nil {
				return
			}
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(l.opts.Out, Prompt)
		select {
		case <-ctx.Done():
			l.stop()
			return nil
		case _, ok := <-lines:
			if !ok {
				l.stop()
				return nil
			}
		}

		c, err := l.CaptureOnce()
		if err != nil {
			fmt.Fprintf(l.opts.Out, "[error] %v\n", err)
			l.log.Error().Err(err).Int("seq", l.seq).Msg("capture failed")
			continue
		}
		l.echo(c)
	}
}

func (l *Loop) stop() {
	fmt.Fprintln(l.opts.Out, "\n[done] Stopped by user.")
	l.log.Info().Int("captures", l.seq-1).Msg("capture session stopped")
}

// CaptureOnce takes a snapshot and writes NNN_label.xml and
// NNN_label_clickables.txt. The sequence number advances only on success.
func (l *Loop) CaptureOnce() (*Capture, error) {
	snap, err := Take(l.bridge)
	if err != nil {
		if errors.Is(err, core.ErrMalformedSnapshot) {
			return nil, fmt.Errorf("failed to parse UI XML: %w", err)
		}
		return nil, err
	}

	c := &Capture{
		Seq:         l.seq,
		XMLPath:     filepath.Join(l.opts.OutputDir, fmt.Sprintf("%03d_%s.xml", l.seq, l.label)),
		SummaryPath: filepath.Join(l.opts.OutputDir, fmt.Sprintf("%03d_%s_clickables.txt", l.seq, l.label)),
		Lines:       hierarchy.SummaryLines(snap.Clickables, l.seq, l.label),
	}

	if err := os.WriteFile(c.XMLPath, []byte(snap.Markup), 0o644); err != nil {
		return nil, fmt.Errorf("write dump: %w", err)
	}
	if err := writeSummary(c.SummaryPath, c.Lines); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	l.log.Info().Int("seq", l.seq).Int("clickables", len(snap.Clickables)).Str("summary", c.SummaryPath).Msg("screen captured")
	l.seq++
	return c, nil
}

func writeSummary(path string, lines []string) error {
	f, err := os.Create(path) //#nosec G304 -- path is built from the output dir
	if err != nil {
		return err
	}
	if err := hierarchy.WriteSummary(f, lines); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (l *Loop) echo(c *Capture) {
	fmt.Fprintf(l.opts.Out, "[saved] %s\n", c.XMLPath)
	fmt.Fprintf(l.opts.Out, "[saved] %s\n", c.SummaryPath)

	n := l.opts.EchoLines
	if len(c.Lines) <= n {
		n = len(c.Lines)
	}
	for _, line := range c.Lines[:n] {
		fmt.Fprintln(l.opts.Out, line)
	}
	if extra := len(c.Lines) - l.opts.EchoLines; extra > 0 {
		fmt.Fprintf(l.opts.Out, "... (%d more clickables in summary file)\n", extra)
	}
}
