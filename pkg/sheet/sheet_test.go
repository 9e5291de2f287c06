// 7 Mar 2024

package sheet_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	. "github.com/andrew-torda/sse_annot/pkg/sheet"
)

func TestComponents(t *testing.T) {
	c, err := dense.ConnFromEdges(6, []dense.Edge{
		{A: 4, B: 1, Type: dense.Anti},
		{A: 1, B: 2, Type: dense.Parallel},
		{A: 3, B: 5, Type: dense.Anti},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Components(c)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{0}, {1, 2, 4}, {3, 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal("components (-want +got)\n", diff)
	}

	isSheet := func(i int) bool { return i != 0 }
	ids, err := IDs(c, isSheet)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1, 1, 2, 1, 2}, ids); diff != "" {
		t.Fatal("ids (-want +got)\n", diff)
	}
}

func TestMatch(t *testing.T) {
	rename, problems := Match([]Pair{{1, 7}, {1, 7}, {2, 3}})
	if problems != nil {
		t.Fatal("unexpected", problems)
	}
	if diff := cmp.Diff(map[int]int{7: 1, 3: 2}, rename); diff != "" {
		t.Fatal("rename (-want +got)\n", diff)
	}

	tdata := [][]Pair{
		{{1, 7}, {1, 8}}, // template sheet split
		{{1, 7}, {2, 7}}, // two template sheets in one
	}
	for i, td := range tdata {
		rename, problems := Match(td)
		if rename != nil || len(problems) != 1 {
			t.Errorf("case %d: got %v %v", i, rename, problems)
		}
	}
	if rename, problems := Match(nil); rename == nil || problems != nil {
		t.Fatal("no strands should give an empty mapping")
	}
}
