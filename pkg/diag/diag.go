// 6 Mar 2024

// Package diag has the debugging side channel for the annotation code.
// Nothing here changes a result. If debugging is off, every function is
// a no-op, so callers do not have to check first.
package diag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config is passed down to anything which might want to say something
// while debugging. The zero value is switched off.
type Config struct {
	On  bool      // write debugging output at all
	Dir string    // directory for matrix dumps, no dumps if empty
	Log io.Writer // debug lines, usually os.Stderr
}

// Printf writes a line if debugging is on.
func (c Config) Printf(format string, a ...any) {
	if !c.On || c.Log == nil {
		return
	}
	_, _ = fmt.Fprintf(c.Log, format+"\n", a...)
}

// Dumping says if matrices will be written. Printf lines only need On.
func (c Config) Dumping() bool { return c.On && c.Dir != "" }

// path of a dump file
func (c Config) path(name string) string { return filepath.Join(c.Dir, name) }

// DumpTSV writes a labelled matrix as tab separated values to
// Dir/name.tsv.
func (c Config) DumpTSV(name string, rows, cols []string, val func(i, j int) float64) (err error) {
	if !c.Dumping() {
		return nil
	}
	fname := c.path(name + ".tsv")
	fp, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("debug dump: %w", err)
	}
	defer func() {
		if e := fp.Close(); e != nil && err == nil {
			err = e
		}
	}()
	w := bufio.NewWriter(fp)
	fmt.Fprintln(w, "\t"+strings.Join(cols, "\t"))
	for i, r := range rows {
		w.WriteString(r)
		for j := range cols {
			fmt.Fprintf(w, "\t%g", val(i, j))
		}
		w.WriteByte('\n')
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", fname, err)
	}
	c.Printf("wrote %s", fname)
	return nil
}
