// 21 Mar 2024

// Package sseannot is the body of the sseannot command. It reads a
// template annotation and a query with its detected SSEs, matches them
// and writes the query with template labels.
package sseannot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrew-torda/sse_annot/pkg/annot"
	"github.com/andrew-torda/sse_annot/pkg/annotio"
	"github.com/andrew-torda/sse_annot/pkg/diag"
)

// CmdFlag is literally command line flags after parsing
type CmdFlag struct {
	Strategy      string  // dp, bb, mom or combined
	Soft          bool    // soft matching, strands may be broken
	MaxGap        int     // largest gap when joining strands for soft matching
	Timeout       float64 // seconds for mom before falling back to dp, 0 means wait
	MaxMetric     string  // K0[,K1,K2]
	LengthPenalty bool    // add the length difference penalty to the metric
	Alternatives  bool    // offer joined templates from the template's sse_merging
	AssignSheets  bool    // work out query sheet IDs from the ladders
	KeepSheetIDs  bool    // do not rename query sheets to template sheets
	Corrections   string  // file with manual corrections
	TemplateID    string  // entry in the template file, default is the first
	QueryID       string  // entry in the query file, also used for corrections
	DebugDir      string  // write matrices here
	Verbose       bool    // debugging lines on standard error
	Quiet         bool    // no warnings
}

// DefaultMaxGap is for soft matching.
const DefaultMaxGap = 0

var errNoSSEs = errors.New("no SSEs")

// parseMaxMetric reads up to three comma separated numbers. Missing
// ones are zero.
func parseMaxMetric(s string) (annot.MaxMetric, error) {
	if s == "" {
		return annot.DefaultMaxMetric, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return annot.MaxMetric{}, fmt.Errorf("max metric %q has more than 3 values", s)
	}
	var k [3]float64
	for i, p := range parts {
		var err error
		if k[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return annot.MaxMetric{}, fmt.Errorf("max metric %q: %w", s, err)
		}
	}
	return annot.MaxMetric{A: k[0], B: k[1], C: k[2]}, nil
}

// warnTo is where warnings go.
func warnTo(flags *CmdFlag) io.Writer {
	if flags.Quiet {
		return nil
	}
	return os.Stderr
}

// readTwoFiles reads template and query at the same time.
func readTwoFiles(flags *CmdFlag, templFile, queryFile string) (tmpl, query annotio.Entry, err error) {
	var g errgroup.Group
	g.Go(func() (err error) {
		tmpl, err = annotio.ReadFile(templFile, flags.TemplateID, warnTo(flags))
		return err
	})
	g.Go(func() (err error) {
		query, err = annotio.ReadFile(queryFile, flags.QueryID, warnTo(flags))
		return err
	})
	err = g.Wait()
	return tmpl, query, err
}

// buildContext makes the problem and applies whatever the strategy
// wants done first.
func buildContext(flags *CmdFlag, strat annot.Strategy, scoring annot.Scoring,
	tmpl, query annotio.Entry, log annot.Log) (annot.Context, error) {
	c := annot.NewContext(scoring, tmpl.SSEs, query.SSEs)
	c.Log = log
	if err := c.InitTemplateConnectivity(tmpl.Edges); err != nil {
		return c, fmt.Errorf("template %s: %w", tmpl.Name, err)
	}
	if err := c.InitCandidateConnectivity(query.Edges); err != nil {
		return c, fmt.Errorf("query %s: %w", query.Name, err)
	}
	if strat != annot.StratBB && strat != annot.StratCombined {
		return c, nil
	}
	var err error
	if flags.Alternatives && len(tmpl.Merging) > 0 {
		if c, err = c.WithAlternativeTemplates(tmpl.Merging); err != nil {
			return c, err
		}
	}
	if flags.Soft {
		if c, _, _, err = c.Ordered(); err != nil {
			return c, err
		}
		if c, err = c.SoftenedMulti(flags.MaxGap); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Mymain does the work. outfile of "" or "-" means standard output.
func Mymain(flags *CmdFlag, templFile, queryFile, outfile string) (err error) {
	name := flags.Strategy
	if name == "" {
		name = annot.StratDynProg.String()
	}
	strat, err := annot.ParseStrategy(name)
	if err != nil {
		return err
	}
	mm, err := parseMaxMetric(flags.MaxMetric)
	if err != nil {
		return err
	}
	tmpl, query, err := readTwoFiles(flags, templFile, queryFile)
	if err != nil {
		return err
	}
	if len(tmpl.SSEs) == 0 {
		return fmt.Errorf("template %s in %s: %w", tmpl.Name, templFile, errNoSSEs)
	}

	log := annot.Log{
		Warn:  warnTo(flags),
		Quiet: flags.Quiet,
		Debug: diag.Config{On: flags.Verbose || flags.DebugDir != "", Dir: flags.DebugDir, Log: os.Stderr},
	}
	c, err := buildContext(flags, strat, annot.DefaultScoring(mm, flags.LengthPenalty), tmpl, query, log)
	if err != nil {
		return err
	}
	annotator, err := annot.StrategyFunc(strat, annot.StratOpts{
		Soft:    flags.Soft,
		Timeout: time.Duration(flags.Timeout * float64(time.Second)),
	})
	if err != nil {
		return err
	}
	w, err := annot.NewWrapper(c, annotator, annot.WrapOpts{
		CheckSheets:  true,
		RenameSheets: !flags.KeepSheetIDs,
		AssignSheets: flags.AssignSheets,
	})
	if err != nil {
		return err
	}
	if flags.Corrections != "" {
		corrs, err := annotio.ReadCorrectionsFile(flags.Corrections, query.Name)
		if err != nil {
			return err
		}
		w = w.WithCorrections(corrs, annot.NewSegmentFitter(query.SSEs))
	}

	ctx := context.Background()
	start := time.Now()
	annotated, err := w.Annotated(ctx)
	if err != nil {
		return err
	}
	log.Debug.Printf("Annotation of %s with %v took %v", query.Name, strat, time.Since(start))
	metrics, err := w.Metrics(ctx)
	if err != nil {
		return err
	}
	susp, err := w.Suspiciousness(ctx)
	if err != nil {
		return err
	}
	conn, err := w.AnnotatedConnectivity(ctx, w.Context.CConn.Edges())
	if err != nil {
		return err
	}
	r := annotio.Result{
		Name:           query.Name,
		Comment:        fmt.Sprintf("Annotated by %s using template %s", strat, tmpl.Name),
		SSEs:           annotated,
		Metrics:        metrics,
		Suspiciousness: susp,
		Edges:          conn,
	}
	if outfile == "" || outfile == "-" {
		return annotio.Write(os.Stdout, r)
	}
	return annotio.WriteFile(outfile, r)
}
