package sim_report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SummaryMarker opens the overall statistics block of the simulator report
const SummaryMarker = "====== Traffic class 0 ======"

var (
	ErrSummaryNotFound  = errors.New("simulation summary not found")
	ErrMalformedSummary = errors.New("malformed simulation summary")
)

// rangeLabels are the report labels of the eight triples. Each triple is
// printed as "<label> average = v", "\tminimum = v", "\tmaximum = v".
var rangeLabels = [...]string{
	"Packet latency",
	"Network latency",
	"Flit latency",
	"Fragmentation",
	"Injected packet rate",
	"Accepted packet rate",
	"Injected flit rate",
	"Accepted flit rate",
}

var scalarLabels = [...]string{
	"Injected packet size average",
	"Accepted packet size average",
	"Hops average",
}

// Parse scans r for SummaryMarker and reads the 27 lines that follow it.
func Parse(r io.Reader) (Result, error) {
	var res Result
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	found := false
	for sc.Scan() {
		lineNo++
		if strings.TrimRight(sc.Text(), "\r") == SummaryMarker {
			found = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("failed to read simulator output: %w", err)
	}
	if !found {
		return res, ErrSummaryNotFound
	}

	next := func(field string) (float64, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, fmt.Errorf("failed to read simulator output: %w", err)
			}
			return 0, fmt.Errorf("%w: %s missing after line %d", ErrMalformedSummary, field, lineNo)
		}
		lineNo++
		v, err := lineValue(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("%w: %s at line %d: %v", ErrMalformedSummary, field, lineNo, err)
		}
		return v, nil
	}

	var err error
	for i, rg := range res.ranges() {
		name := rangeNames[i]
		if rg.Avg, err = next(name + "_avg"); err != nil {
			return Result{}, err
		}
		if rg.Min, err = next(name + "_min"); err != nil {
			return Result{}, err
		}
		if rg.Max, err = next(name + "_max"); err != nil {
			return Result{}, err
		}
	}
	for i, s := range res.scalars() {
		if *s, err = next(scalarNames[i]); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func ParseString(text string) (Result, error) {
	return Parse(strings.NewReader(text))
}

func ParseFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return Parse(f)
}

// lineValue extracts the first token after '=' of a "label = value ..." line.
func lineValue(line string) (float64, error) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return 0, fmt.Errorf("no '=' in %q", line)
	}
	fields := strings.Fields(line[idx+1:])
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value in %q", line)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", fields[0])
	}
	return v, nil
}

// FormatSummary renders res the way the simulator prints it, starting at SummaryMarker.
func FormatSummary(res Result) string {
	var b strings.Builder
	b.WriteString(SummaryMarker + "\n")
	for i, rg := range res.ranges() {
		fmt.Fprintf(&b, "%s average = %s (1 samples)\n", rangeLabels[i], formatFloat(rg.Avg))
		fmt.Fprintf(&b, "\tminimum = %s (1 samples)\n", formatFloat(rg.Min))
		fmt.Fprintf(&b, "\tmaximum = %s (1 samples)\n", formatFloat(rg.Max))
	}
	for i, s := range res.scalars() {
		fmt.Fprintf(&b, "%s = %s (1 samples)\n", scalarLabels[i], formatFloat(*s))
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
