// 19 Mar 2024

package annotio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andrew-torda/sse_annot/pkg/annot"
)

const commentChar = '#'

// ReadCorrections reads lines of
//
//	pdb	label	chain	start	end
//
// separated by tabs and keeps those for pdb. Everything after a # is
// ignored. start = end = 0 means "not found".
func ReadCorrections(r io.Reader, pdb string) ([]annot.Correction, error) {
	var ret []annot.Correction
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if i := strings.IndexByte(line, commentChar); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) != 5 {
			return nil, fmt.Errorf("corrections line %d: want 5 fields, got %d: %w", lineNo, len(f), ErrFormat)
		}
		for i := range f {
			f[i] = strings.TrimSpace(f[i])
		}
		if f[0] != pdb {
			continue
		}
		start, err := strconv.Atoi(f[3])
		if err != nil {
			return nil, fmt.Errorf("corrections line %d: %w", lineNo, err)
		}
		end, err := strconv.Atoi(f[4])
		if err != nil {
			return nil, fmt.Errorf("corrections line %d: %w", lineNo, err)
		}
		ret = append(ret, annot.Correction{PDB: f[0], Label: f[1], Chain: f[2], Start: start, End: end})
	}
	return ret, scanner.Err()
}

// ReadCorrectionsFile is ReadCorrections on a named file.
func ReadCorrectionsFile(fname, pdb string) ([]annot.Correction, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	c, err := ReadCorrections(fp, pdb)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return c, nil
}
