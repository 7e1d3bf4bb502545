package cli

import (
	"flag"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want log.Level
	}{
		{nil, log.InfoLevel},
		{[]string{"-v"}, log.DebugLevel},
		{[]string{"-v", "-v"}, log.TraceLevel},
		{[]string{"-v", "-v", "-v"}, log.TraceLevel},
		{[]string{"-v=false"}, log.InfoLevel},
	}

	for _, tt := range tests {
		var v Verbosity
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Var(&v, "v", "verbose")
		require.NoError(t, fs.Parse(tt.args))
		assert.Equal(t, tt.want, v.Level(), "%v", tt.args)
	}
}

func TestParseSep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{",", ',', false},
		{";;", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSep(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
