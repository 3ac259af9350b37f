package model

import (
	"encoding/csv"
	"io"
	"io/fs"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/internal/expr"
)

// table is one behavior model table: string key columns plus a compiled
// probability expression per row.
type table struct {
	name    string
	columns []string
	rows    []tableRow
}

type tableRow struct {
	keys []string
	prob expr.Expr
}

func (t *table) column(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}

	return -1
}

// value returns the named key column of row i.
func (t *table) value(i int, column string) string {
	return t.rows[i].keys[t.column(column)]
}

// readTable reads <name>.csv, or <name>.csv.gz if the plain file does not
// exist. The header must equal columns followed by probColumn.
func readTable(fsys fs.FS, name string, columns []string, probColumn string) (*table, error) {
	var r io.Reader
	f, err := fsys.Open(name + ".csv")
	if errors.Is(err, fs.ErrNotExist) {
		f, err = fsys.Open(name + ".csv.gz")
		if err != nil {
			return nil, errors.Wrapf(err, "opening table %s", name)
		}
		defer f.Close()

		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading table %s", name)
		}
		defer gzr.Close()
		r = gzr
	} else if err != nil {
		return nil, errors.Wrapf(err, "opening table %s", name)
	} else {
		defer f.Close()
		r = f
	}

	t, err := parseTable(r, name, columns, probColumn)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", name)
	}

	return t, nil
}

func parseTable(r io.Reader, name string, columns []string, probColumn string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	want := append(append([]string(nil), columns...), probColumn)
	if len(header) != len(want) {
		return nil, errors.Errorf("header has %d columns, expected %v", len(header), want)
	}
	for i, col := range header {
		if strings.TrimSpace(col) != want[i] {
			return nil, errors.Errorf("column %d is %q, expected %q", i, col, want[i])
		}
	}

	t := &table{name: name, columns: append([]string(nil), columns...)}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		keys := make([]string, len(columns))
		for i := range keys {
			keys[i] = strings.TrimSpace(record[i])
		}
		prob, err := expr.Parse(record[len(columns)])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		t.rows = append(t.rows, tableRow{keys: keys, prob: prob})
	}

	return t, nil
}

// join returns the inner join of left and right on the given columns. The
// result has left's columns followed by right's columns not joined on, and
// each row's expression is the product of the matched rows' expressions.
// Row order follows left, then right.
func join(left, right *table, on ...string) (*table, error) {
	leftIdx := make([]int, len(on))
	rightIdx := make([]int, len(on))
	for i, col := range on {
		leftIdx[i] = left.column(col)
		rightIdx[i] = right.column(col)
		if leftIdx[i] < 0 || rightIdx[i] < 0 {
			return nil, errors.Errorf("cannot join %s and %s on missing column %q",
				left.name, right.name, col)
		}
	}

	joined := make(map[int]struct{}, len(on))
	for _, i := range rightIdx {
		joined[i] = struct{}{}
	}
	var extra []int
	result := &table{
		name:    left.name + "+" + right.name,
		columns: append([]string(nil), left.columns...),
	}
	for i, col := range right.columns {
		if _, ok := joined[i]; !ok {
			extra = append(extra, i)
			result.columns = append(result.columns, col)
		}
	}

	byKey := make(map[string][]int, len(right.rows))
	for i, row := range right.rows {
		k := compositeKey(row.keys, rightIdx)
		byKey[k] = append(byKey[k], i)
	}

	for _, l := range left.rows {
		for _, i := range byKey[compositeKey(l.keys, leftIdx)] {
			r := right.rows[i]
			keys := make([]string, 0, len(result.columns))
			keys = append(keys, l.keys...)
			for _, j := range extra {
				keys = append(keys, r.keys[j])
			}

			result.rows = append(result.rows, tableRow{
				keys: keys,
				prob: expr.Mul(l.prob, r.prob),
			})
		}
	}

	return result, nil
}

func compositeKey(keys []string, idx []int) string {
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = keys[j]
	}
	return strings.Join(parts, "\x00")
}
