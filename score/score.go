// Package score writes timelines as Csound CSD documents that play slices
// of a single sound file with diskin.
package score

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rwelin/soundgraph"
)

// Score is everything needed to render one timeline.
type Score struct {
	Asset  string  // sound file played by the instrument
	Tempo  float64 // beats per minute
	Output string  // audio file Csound writes
	Events []soundgraph.Event
}

const instrument = `
sr     = 44100
ksmps  = 32
nchnls = 2
0dbfs  = 1

instr 1

a1, a2  diskin %s, p4, p5
    outs a1, a2

endin
`

// quote returns path as a Csound string literal. Csound strings have no
// escapes for quotes or line breaks, so paths holding them are rejected.
func quote(path string) (string, error) {
	if strings.ContainsAny(path, "\"\r\n") {
		return "", fmt.Errorf("asset path %q cannot be written as a Csound string", path)
	}
	return `"` + path + `"`, nil
}

// Write writes s as a CSD document.
//
// Score statements are
//
//	i1 <start beat> <duration beats> <pitch ratio> <skip seconds>
func Write(w io.Writer, s Score) error {
	asset, err := quote(s.Asset)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format, args...)
	}

	p("<CsoundSynthesizer>\n")
	p("<CsOptions>\n")
	p("-o %s -W\n", s.Output)
	p("</CsOptions>\n")
	p("<CsInstruments>\n")
	p(instrument, asset)
	p("</CsInstruments>\n")
	p("<CsScore>\n")
	p("t 0 %s\n", num(s.Tempo))
	for _, e := range s.Events {
		p("i1\t%s\t%s\t%s\t%s\n", num(e.StartBeat), num(e.DurationBeats), num(e.PitchRatio), num(e.SkipTime))
	}
	p("e\n")
	p("</CsScore>\n")
	p("</CsoundSynthesizer>\n")
	return bw.Flush()
}

// WriteFile writes s to filename, replacing any existing file.
func WriteFile(filename string, s Score) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write score %s: %w", filename, err)
	}
	return f.Close()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
