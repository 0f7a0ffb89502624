package core

import (
	"fmt"
	"slices"
)

// Dataset is an immutable rows x cols table of float64 samples.
// Columns are addressed by 0-based feature index. Values are stored
// column-major so a feature leaf can copy one contiguous column.
type Dataset struct {
	rows  int
	cols  int
	data  []float64 // column-major: data[c*rows+r]
	names []string
}

// NewDataset builds a Dataset from row-major samples.
// Every row must have the same length. Names are optional; when given
// there must be one per column.
func NewDataset(rows [][]float64, names ...string) (*Dataset, error) {
	nrows := len(rows)
	ncols := 0
	if nrows > 0 {
		ncols = len(rows[0])
	}

	for i, row := range rows {
		if len(row) != ncols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), ncols, ErrShapeMismatch)
		}
	}

	if len(names) > 0 && len(names) != ncols {
		return nil, fmt.Errorf("%d column names for %d columns: %w", len(names), ncols, ErrShapeMismatch)
	}

	data := make([]float64, nrows*ncols)
	for r, row := range rows {
		for c, v := range row {
			data[c*nrows+r] = v
		}
	}

	return &Dataset{
		rows:  nrows,
		cols:  ncols,
		data:  data,
		names: slices.Clone(names),
	}, nil
}

// NewDatasetFromColumns builds a Dataset from column vectors of equal length.
func NewDatasetFromColumns(columns [][]float64, names ...string) (*Dataset, error) {
	ncols := len(columns)
	nrows := 0
	if ncols > 0 {
		nrows = len(columns[0])
	}

	for i, col := range columns {
		if len(col) != nrows {
			return nil, fmt.Errorf("column %d has %d rows, expected %d: %w", i, len(col), nrows, ErrShapeMismatch)
		}
	}

	if len(names) > 0 && len(names) != ncols {
		return nil, fmt.Errorf("%d column names for %d columns: %w", len(names), ncols, ErrShapeMismatch)
	}

	data := make([]float64, 0, nrows*ncols)
	for _, col := range columns {
		data = append(data, col...)
	}

	return &Dataset{
		rows:  nrows,
		cols:  ncols,
		data:  data,
		names: slices.Clone(names),
	}, nil
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int { return d.rows }

// Cols returns the number of features.
func (d *Dataset) Cols() int { return d.cols }

// Names returns a copy of the column names (nil if the dataset is unnamed).
func (d *Dataset) Names() []string { return slices.Clone(d.names) }

// Name returns the name of column i, falling back to x<i>.
func (d *Dataset) Name(i int) string {
	if i >= 0 && i < len(d.names) && d.names[i] != "" {
		return d.names[i]
	}
	return fmt.Sprintf("x%d", i)
}

// At returns the value at row r, column c.
func (d *Dataset) At(r, c int) float64 {
	return d.data[c*d.rows+r]
}

// Column returns a copy of column i.
func (d *Dataset) Column(i int) ([]float64, error) {
	if i < 0 || i >= d.cols {
		return nil, fmt.Errorf("column %d of %d: %w", i, d.cols, ErrFeatureIndex)
	}
	return slices.Clone(d.data[i*d.rows : (i+1)*d.rows]), nil
}

// ColumnIndex returns the index of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	return slices.Index(d.names, name)
}

// Row returns a copy of row r.
func (d *Dataset) Row(r int) []float64 {
	out := make([]float64, d.cols)
	for c := range out {
		out[c] = d.data[c*d.rows+r]
	}
	return out
}

// Head returns a dataset holding at most the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n >= d.rows || n < 0 {
		return d
	}
	cols := make([][]float64, d.cols)
	for c := range cols {
		cols[c] = d.data[c*d.rows : c*d.rows+n]
	}
	// lengths are consistent by construction
	head, _ := NewDatasetFromColumns(cols, d.names...)
	return head
}

// SplitTarget removes the named column and returns it as the target vector
// together with the remaining feature table. Feature indices of the remaining
// columns shift left past the removed one.
func (d *Dataset) SplitTarget(name string) (*Dataset, []float64, error) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, nil, fmt.Errorf("target column %q not found in %v", name, d.names)
	}

	target, err := d.Column(idx)
	if err != nil {
		return nil, nil, err
	}

	cols := make([][]float64, 0, d.cols-1)
	names := make([]string, 0, d.cols-1)
	for c := 0; c < d.cols; c++ {
		if c == idx {
			continue
		}
		cols = append(cols, d.data[c*d.rows:(c+1)*d.rows])
		names = append(names, d.names[c])
	}

	features, err := NewDatasetFromColumns(cols, names...)
	if err != nil {
		return nil, nil, err
	}
	return features, target, nil
}
