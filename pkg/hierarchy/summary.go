package hierarchy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SummaryHeader returns the two comment lines that open a clickables summary.
func SummaryHeader(seq int, label string) []string {
	return []string{
		fmt.Sprintf("# Clickable nodes for capture %03d (%s)", seq, label),
		"# Format: idx | text | desc | id | class | bounds",
	}
}

// DescribeNode renders one summary line for a clickable node at 1-based idx.
func DescribeNode(n *Node, idx int) string {
	parts := []string{
		fmt.Sprintf("%02d", idx),
		quotedOrEmpty("text", n.Text),
		quotedOrEmpty("desc", n.Description),
		"id=" + orMarker(n.Identifier, "<none>"),
		"class=" + orMarker(n.Class, "<none>"),
		"bounds=" + orMarker(n.RawBounds, "<unknown>"),
	}
	if n.LongClickable {
		parts = append(parts, "long-clickable")
	}
	return strings.Join(parts, " | ")
}

func quotedOrEmpty(key, v string) string {
	if v == "" {
		return key + "=<empty>"
	}
	return fmt.Sprintf("%s='%s'", key, v)
}

func orMarker(v, marker string) string {
	if v == "" {
		return marker
	}
	return v
}

// SummaryLines renders the header and one line per entry, indexed from 1.
func SummaryLines(entries []ClickableEntry, seq int, label string) []string {
	lines := SummaryHeader(seq, label)
	for i, e := range entries {
		lines = append(lines, DescribeNode(e.Node, i+1))
	}
	return lines
}

// WriteSummary writes lines joined by newlines.
func WriteSummary(w io.Writer, lines []string) error {
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// LoadSummary reads a summary file into an index -> bounds map.
func LoadSummary(path string) (map[int]string, error) {
	f, err := os.Open(path) //#nosec G304 -- summary path comes from the flow file
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSummary(f)
}

// ParseSummary reads summary lines into an index -> bounds map. Blank lines,
// comments, lines without a pipe, a non-integer index or a bounds= field are
// skipped.
func ParseSummary(r io.Reader) (map[int]string, error) {
	mapping := make(map[int]string)
	// Text and desc values are unbounded, so lines are read whole rather
	// than through a size-limited scanner.
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		parseSummaryLine(raw, mapping)
		if err == io.EOF {
			return mapping, nil
		}
	}
}

func parseSummaryLine(raw string, mapping map[int]string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "|") {
		return
	}

	parts := strings.Split(line, "|")
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return
	}

	if bounds, ok := boundsField(parts[1:]); ok {
		mapping[idx] = bounds
	}
}

// boundsField finds the bounds= field, searching from the end so that a
// text or desc value containing "|" or "bounds=" does not shadow it.
func boundsField(fields []string) (string, bool) {
	for i := len(fields) - 1; i >= 0; i-- {
		f := strings.TrimSpace(fields[i])
		if strings.HasPrefix(f, "bounds=") {
			return strings.TrimSpace(strings.TrimPrefix(f, "bounds=")), true
		}
	}
	for _, f := range fields {
		if i := strings.LastIndex(f, "bounds="); i >= 0 {
			return strings.TrimSpace(f[i+len("bounds="):]), true
		}
	}
	return "", false
}
