package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed line in a scanner report.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseScannerFile reads and parses a scanner report file
func ParseScannerFile(path string) ([]Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()
	return ParseScanners(f)
}

// ParseScannersString parses scanner report text
func ParseScannersString(text string) ([]Scanner, error) {
	return ParseScanners(strings.NewReader(text))
}

// ParseScanners parses blocks of the form
//
//	--- scanner 0 ---
//	404,-588,-901
//	528,-643,409
//
// Scanner ids must start at 0 and increase by one.
func ParseScanners(r io.Reader) ([]Scanner, error) {
	var scanners []Scanner
	var current *Scanner

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "---") {
			id, err := parseHeader(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			if id != len(scanners) {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("expected scanner %d, got %d", len(scanners), id)}
			}
			scanners = append(scanners, Scanner{ID: id})
			current = &scanners[len(scanners)-1]
			continue
		}

		if current == nil {
			return nil, &ParseError{Line: lineNo, Msg: "beacon before first scanner header"}
		}
		p, err := parsePoint(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
		current.Beacons = append(current.Beacons, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading scanner report: %w", err)
	}
	return scanners, nil
}

// parseHeader extracts N from "--- scanner N ---"
func parseHeader(line string) (int, error) {
	fields := strings.Fields(strings.Trim(line, "- "))
	if len(fields) != 2 || fields[0] != "scanner" {
		return 0, fmt.Errorf("malformed scanner header %q", line)
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("malformed scanner id %q", fields[1])
	}
	return id, nil
}

func parsePoint(line string) (Point, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Point{}, fmt.Errorf("expected 3 coordinates, got %d in %q", len(parts), line)
	}
	var coords [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Point{}, fmt.Errorf("bad coordinate %q", part)
		}
		coords[i] = v
	}
	return Point{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// FormatScanners writes scanners back out in the report format. Parsing
// the output yields the same scanners.
func FormatScanners(w io.Writer, scanners []Scanner) error {
	bw := bufio.NewWriter(w)
	for i, s := range scanners {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "--- scanner %d ---\n", i)
		for _, p := range s.Beacons {
			fmt.Fprintf(bw, "%d,%d,%d\n", p.X, p.Y, p.Z)
		}
	}
	return bw.Flush()
}

// ScannerSummary provides a summary of a scanner report
type ScannerSummary struct {
	Scanners     int
	Beacons      int
	MinBeacons   int
	MaxBeacons   int
	EmptyIDs     []int
	Fingerprints int
}

// Summarize extracts key information from parsed scanners
func Summarize(scanners []Scanner) ScannerSummary {
	summary := ScannerSummary{Scanners: len(scanners)}
	for i, s := range scanners {
		n := len(s.Beacons)
		summary.Beacons += n
		if i == 0 || n < summary.MinBeacons {
			summary.MinBeacons = n
		}
		if n > summary.MaxBeacons {
			summary.MaxBeacons = n
		}
		if n == 0 {
			summary.EmptyIDs = append(summary.EmptyIDs, i)
		}
		summary.Fingerprints += MinSharedDistances(n)
	}
	return summary
}
