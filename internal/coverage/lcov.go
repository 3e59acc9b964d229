package coverage

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// LCOVSource parses an LCOV tracefile (`SF:`/`FN:`/`FNDA:`/`DA:`/`end_of_record`
// records) into the per-function and per-line coverage the core queries via
// the Source interface.
type LCOVSource struct {
	// functionHits maps "file\x00name" -> (hit count, found count proxy via
	// boolean presence). LCOV's FNDA gives a hit count, not a percentage;
	// hitRate derives a [0,1] coverage figure as 1.0 if hits > 0 else 0.0,
	// matching LCOV's own function-coverage semantics (a function is either
	// exercised or not; line-level granularity is what gives partial
	// percentages, handled by lineHits below).
	functionHits map[string]int
	// lineHits maps "file\x00line" -> hit count, used to compute a bounded
	// line-coverage percentage for FunctionCoverageWithBounds.
	lineHits map[string]int
	fileLineRange map[string][2]int // "file" -> (min line, max line) seen, for sanity only
}

// ParseLCOV reads an LCOV tracefile from r.
func ParseLCOV(r io.Reader) (*LCOVSource, error) {
	src := &LCOVSource{
		functionHits:  make(map[string]int),
		lineHits:      make(map[string]int),
		fileLineRange: make(map[string][2]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	currentFile := ""
	var functionNames []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			currentFile = strings.TrimPrefix(line, "SF:")
			functionNames = nil
		case strings.HasPrefix(line, "FN:"):
			// FN:<line>,<name>
			rest := strings.TrimPrefix(line, "FN:")
			parts := strings.SplitN(rest, ",", 2)
			if len(parts) == 2 {
				functionNames = append(functionNames, parts[1])
			}
		case strings.HasPrefix(line, "FNDA:"):
			// FNDA:<hits>,<name>
			rest := strings.TrimPrefix(line, "FNDA:")
			parts := strings.SplitN(rest, ",", 2)
			if len(parts) != 2 {
				continue
			}
			hits, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			key := currentFile + "\x00" + parts[1]
			src.functionHits[key] += hits
		case strings.HasPrefix(line, "DA:"):
			// DA:<line>,<hits>[,<checksum>]
			rest := strings.TrimPrefix(line, "DA:")
			parts := strings.Split(rest, ",")
			if len(parts) < 2 {
				continue
			}
			lineNo, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			hits, err := strconv.Atoi(parts[1])
			if err != nil {
				continue
			}
			key := currentFile + "\x00" + strconv.Itoa(lineNo)
			src.lineHits[key] = hits
			rng := src.fileLineRange[currentFile]
			if rng[0] == 0 || lineNo < rng[0] {
				rng[0] = lineNo
			}
			if lineNo > rng[1] {
				rng[1] = lineNo
			}
			src.fileLineRange[currentFile] = rng
		case line == "end_of_record":
			currentFile = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return src, nil
}

// FunctionCoverage reports whether name in file was ever hit (LCOV's
// FNDA record); absent if no FN/FNDA data exists for the pair.
func (s *LCOVSource) FunctionCoverage(file, name string) (float64, bool) {
	key := file + "\x00" + name
	hits, ok := s.functionHits[key]
	if !ok {
		return 0, false
	}
	if hits > 0 {
		return 1.0, true
	}
	return 0.0, true
}

// FunctionCoverageWithBounds computes the fraction of DA-recorded lines in
// [startLine, endLine] that have a nonzero hit count, falling back to
// FunctionCoverage if no per-line data falls in range.
func (s *LCOVSource) FunctionCoverageWithBounds(file, name string, startLine, endLine int) (float64, bool) {
	var total, covered int
	for line := startLine; line <= endLine; line++ {
		key := file + "\x00" + strconv.Itoa(line)
		hits, ok := s.lineHits[key]
		if !ok {
			continue
		}
		total++
		if hits > 0 {
			covered++
		}
	}
	if total == 0 {
		return s.FunctionCoverage(file, name)
	}
	return float64(covered) / float64(total), true
}
