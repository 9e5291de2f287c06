// 22 Mar 2024

package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	. "github.com/andrew-torda/sse_annot/pkg/common"
	"github.com/andrew-torda/sse_annot/pkg/sseannot"
)

// usage
func usage() int {
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]), "[opts] template.json query.json")
	flag.PrintDefaults()
	return (ExitUsageError)
}

// main
func main() {
	var flags sseannot.CmdFlag
	outfile := "-"
	flag.StringVar(&flags.Strategy, "s", "dp", "matching strategy: dp, bb, mom or combined")
	flag.BoolVar(&flags.Soft, "n", false, "soft matching, query strands may be broken")
	flag.IntVar(&flags.MaxGap, "g", sseannot.DefaultMaxGap, "max gap when joining strands in soft matching")
	flag.Float64Var(&flags.Timeout, "f", 0, "seconds for mom before falling back to dp, 0 waits")
	flag.StringVar(&flags.MaxMetric, "k", "30,0,0", "max metric K0[,K1,K2]")
	flag.BoolVar(&flags.LengthPenalty, "l", false, "add length difference to the metric")
	flag.BoolVar(&flags.Alternatives, "N", false, "use joined templates from sse_merging (bb, combined)")
	flag.StringVar(&flags.Corrections, "C", "", "file with manual corrections")
	flag.BoolVar(&flags.AssignSheets, "a", false, "assign query sheet IDs from the ladders")
	flag.BoolVar(&flags.KeepSheetIDs, "K", false, "keep query sheet IDs")
	flag.StringVar(&flags.TemplateID, "t", "", "template entry, default first in file")
	flag.StringVar(&flags.QueryID, "i", "", "query entry, default first in file")
	flag.StringVar(&flags.DebugDir, "d", "", "write matrices and pictures to this directory")
	flag.BoolVar(&flags.Verbose, "v", false, "verbose")
	flag.BoolVar(&flags.Quiet, "q", false, "no warnings")
	flag.StringVar(&outfile, "o", "", "output file name, default stdout")

	flag.Parse()

	templ := flag.Arg(0)
	query := flag.Arg(1)
	if templ == "" || query == "" || flag.NArg() > 2 {
		os.Exit(usage())
	}
	if err := sseannot.Mymain(&flags, templ, query, outfile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	} else {
		os.Exit(ExitSuccess)
	}
}
