// Package export writes a data grid's filtered and sorted rows to files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jask/jaskgrid/internal/grid"
)

// CSV writes a header of column labels followed by one record per row.
func CSV[R any](w io.Writer, columns []grid.Column[R], rows []R) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Label()
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for i, row := range rows {
		if err := formatRow(columns, row, i, record); err != nil {
			return err
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// YAML writes a sequence of mappings keyed by column key, in column order.
// Null values are written as YAML null.
func YAML[R any](w io.Writer, columns []grid.Column[R], rows []R) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for i, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range columns {
			v, err := c.Value(row)
			if err != nil {
				return &grid.AccessorError{Column: c.Key, Index: i, Err: err}
			}
			val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			if !grid.IsNull(v) {
				val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: grid.Format(v)}
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Key},
				val,
			)
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func formatRow[R any](columns []grid.Column[R], row R, index int, dst []string) error {
	for j, c := range columns {
		v, err := c.Value(row)
		if err != nil {
			return &grid.AccessorError{Column: c.Key, Index: index, Err: err}
		}
		dst[j] = grid.Format(v)
	}
	return nil
}
