// Package cli holds the flag and logging helpers shared by the commands.
package cli

import (
	"fmt"
	"io"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Verbosity is a flag.Value counting repeated -v flags.
type Verbosity int

func (v *Verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *Verbosity) IsBoolFlag() bool { return true }

func (v *Verbosity) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*v++
	}
	return nil
}

// Level returns the log level for the verbosity: Info by default, Debug
// for -v and Trace for -v -v.
func (v Verbosity) Level() log.Level {
	switch {
	case v >= 2:
		return log.TraceLevel
	case v == 1:
		return log.DebugLevel
	}
	return log.InfoLevel
}

// SetupLogging configures the standard logger to write to w.
func SetupLogging(w io.Writer, v Verbosity) {
	log.SetOutput(w)
	log.SetLevel(v.Level())
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
}

// ParseSep parses a column separator. The two characters \t stand for a
// tab.
func ParseSep(s string) (byte, error) {
	if s == `\t` {
		return '\t', nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("-sep must be a single character, got %q", s)
	}
	return s[0], nil
}
