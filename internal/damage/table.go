package damage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var tableColumns = []string{"strand", "from", "to", "factor", "geom_prob", "intercept"}

// ParseTable reads a whitespace separated parameter table with one
// mutator per row:
//
//	# comment
//	strand  from  to  factor      geom_prob   intercept
//	3p      G     A   0.79513996  0.26918746  0.039386893
//	5p      C     T   0.43360246  0.35249167  0.027965522
//
// The header must name exactly these columns, in any order. Lines starting
// with # and blank lines are ignored. A non-numeric intercept counts as 0.
func ParseTable(r io.Reader) (Chain, error) {
	scanner := bufio.NewScanner(r)

	var (
		header []string
		chain  Chain
		warned = map[string]bool{}
	)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if header == nil {
			if !sameColumns(fields) {
				return nil, fmt.Errorf("line %d: table header must have the columns %s, got %s",
					lineNum, strings.Join(tableColumns, " "), strings.Join(fields, " "))
			}
			header = fields
			continue
		}

		if len(fields) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNum, len(header), len(fields))
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		m, err := parseRow(row, warned)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		chain = append(chain, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parameter table: %w", err)
	}
	if header == nil {
		return nil, errors.New("parameter table has no header")
	}
	return chain, nil
}

func sameColumns(fields []string) bool {
	got := slices.Clone(fields)
	want := slices.Clone(tableColumns)
	slices.Sort(got)
	slices.Sort(want)
	return slices.Equal(got, want)
}

func parseRow(row map[string]string, warned map[string]bool) (Mutator, error) {
	var m Mutator

	strand := row["strand"]
	if strand == "3" || strand == "5" {
		if !warned[strand] {
			log.Warnf("Deprecated strand value %q, use %q instead", strand, strand+"p")
			warned[strand] = true
		}
		strand += "p"
	}
	switch strand {
	case "5p":
	case "3p":
		m.FromEnd = true
	default:
		return m, fmt.Errorf("illegal strand %q, expected 3p or 5p", row["strand"])
	}

	var err error
	if m.From, err = parseBase("from", row["from"]); err != nil {
		return m, err
	}
	if m.To, err = parseBase("to", row["to"]); err != nil {
		return m, err
	}
	if m.Factor, err = strconv.ParseFloat(row["factor"], 64); err != nil {
		return m, fmt.Errorf("invalid factor %q", row["factor"])
	}
	if m.GeomProb, err = strconv.ParseFloat(row["geom_prob"], 64); err != nil {
		return m, fmt.Errorf("invalid geom_prob %q", row["geom_prob"])
	}
	if !(m.GeomProb >= 0 && m.GeomProb <= 1) {
		return m, fmt.Errorf("geom_prob must be >= 0 and <= 1, got %v", m.GeomProb)
	}
	if m.Intercept, err = strconv.ParseFloat(row["intercept"], 64); err != nil || math.IsNaN(m.Intercept) {
		m.Intercept = 0
	}
	return m, nil
}

func parseBase(column, s string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character or *, got %q", column, s)
	}
	return s[0], nil
}
