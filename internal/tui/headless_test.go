package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskgrid/internal/grid"
)

func TestParseSort(t *testing.T) {
	t.Parallel()

	spec, err := ParseSort("amount:desc")
	require.NoError(t, err)
	require.Equal(t, grid.SortSpec{Key: "amount", Direction: grid.Desc}, spec)

	spec, err = ParseSort("date")
	require.NoError(t, err)
	require.Equal(t, grid.Asc, spec.Direction)

	spec, err = ParseSort("")
	require.NoError(t, err)
	require.False(t, spec.IsSorted())

	_, err = ParseSort("date:sideways")
	require.Error(t, err)
}

func TestExportLedger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := ExportLedger(&buf, ledgerRows(), Query{
		Search:  "salary",
		Sort:    "amount:desc",
		Columns: []string{"amount", "description"},
	}, "csv")
	require.NoError(t, err)
	require.Equal(t, "Description,Amount\nSALARY ACME,4200.00\nSALARY BONUS,500.00\n", buf.String())
}

func TestExportLedgerPageAndCategory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := ExportLedger(&buf, ledgerRows(), Query{
		Sort:     "date",
		Columns:  []string{"date"},
		Page:     2,
		PageSize: 2,
	}, "csv")
	require.NoError(t, err)
	require.Equal(t, "Date\n2026-01-03\n2026-01-04\n", buf.String())

	buf.Reset()
	err = ExportLedger(&buf, ledgerRows(), Query{Category: "Income", Columns: []string{"description"}}, "yaml")
	require.NoError(t, err)
	require.Equal(t, "- description: SALARY ACME\n- description: SALARY BONUS\n", buf.String())
}

func TestExportLedgerErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := ExportLedger(&buf, ledgerRows(), Query{Sort: "notes"}, "csv")
	require.ErrorIs(t, err, grid.ErrNotSortable)

	err = ExportLedger(&buf, ledgerRows(), Query{Columns: []string{"amonut"}}, "csv")
	require.ErrorIs(t, err, grid.ErrUnknownColumn)
	require.ErrorContains(t, err, `did you mean "amount"`)

	err = ExportLedger(&buf, ledgerRows(), Query{}, "xml")
	require.ErrorContains(t, err, "unknown export format")
}
