package xlsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLocateHeader(t *testing.T) {
	tests := []struct {
		name     string
		rows     []Row
		want     []string
		wantIdx  int
		wantOK   bool
	}{
		{
			name: "header on first row",
			rows: []Row{
				NewRow("Series", "Code", "2020"),
				NewRow("GDP growth", "DGDP", "1.5"),
			},
			want:    []string{"Series", "Code"},
			wantIdx: 0,
			wantOK:  true,
		},
		{
			name: "header after preamble",
			rows: []Row{
				NewRow("Country report"),
				NewRow(),
				NewRow("  Series ", " Code ", "2020"),
			},
			want:    []string{"Series", "Code"},
			wantIdx: 2,
			wantOK:  true,
		},
		{
			name: "no header",
			rows: []Row{
				NewRow("a", "b"),
				NewRow("c", "d"),
			},
			want:   []string{"Series", "Code"},
			wantOK: false,
		},
		{
			name: "partial match rejected",
			rows: []Row{
				NewRow("Series", "Name"),
			},
			want:   []string{"Series", "Code"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := LocateHeader(&Table{Rows: tt.rows}, tt.want)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}

func TestLocateHeader_ScanLimit(t *testing.T) {
	rows := make([]Row, 0, HeaderScanLimit+2)
	for i := 0; i < HeaderScanLimit; i++ {
		rows = append(rows, NewRow("filler"))
	}
	rows = append(rows, NewRow("Series", "Code"))

	_, ok := LocateHeader(&Table{Rows: rows}, []string{"Series", "Code"})
	assert.False(t, ok, "header beyond scan limit must not be found")
}

func TestRow_Float(t *testing.T) {
	row := NewRow("1.5", "–", "", "NaN", "1,234.5", "abc")

	v, ok := row.Float(0)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = row.Float(1)
	assert.False(t, ok, "missing marker is not a number")

	_, ok = row.Float(2)
	assert.False(t, ok)

	_, ok = row.Float(3)
	assert.False(t, ok, "NaN is rejected")

	v, ok = row.Float(4)
	assert.True(t, ok)
	assert.Equal(t, 1234.5, v)

	_, ok = row.Float(5)
	assert.False(t, ok)

	_, ok = row.Float(99)
	assert.False(t, ok, "out of range column")
}

func TestRow_Empty(t *testing.T) {
	row := NewRow("x", "", "  ", "–")
	assert.False(t, row.Empty(0))
	assert.True(t, row.Empty(1))
	assert.True(t, row.Empty(2))
	assert.True(t, row.Empty(3))
	assert.True(t, row.Empty(10))
}

func TestTable_HeaderColumns(t *testing.T) {
	table := &Table{Rows: []Row{
		NewRow("Series", "Code", "2020", "2021", "", "ignored"),
	}}
	assert.Equal(t, []string{"Series", "Code", "2020", "2021"}, table.HeaderColumns(0))
	assert.Nil(t, table.HeaderColumns(5))
}

func TestTable_Body(t *testing.T) {
	table := &Table{Rows: []Row{
		NewRow("h1", "h2"),
		NewRow("a", "b"),
		NewRow("c", "d"),
	}}
	body := table.Body(0)
	require.Len(t, body, 2)
	assert.Equal(t, "a", body[0].Get(0))
	assert.Nil(t, table.Body(2))
}

func TestOpenWorkbook_Errors(t *testing.T) {
	_, err := OpenWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E1001")

	badExt := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(badExt, []byte("x"), 0o644))
	_, err = OpenWorkbook(badExt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E1002")
}

func TestWorkbook_Table(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partners.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "XPM1"))
	require.NoError(t, f.SetSheetRow("XPM1", "A1", &[]interface{}{"Geography", "Code", "2023"}))
	require.NoError(t, f.SetSheetRow("XPM1", "A2", &[]interface{}{"Germany", "DE", 40.0}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"XPM1"}, wb.SheetNames())

	table, err := wb.Table("XPM1")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Geography", table.Rows[0].Get(0))
	assert.Equal(t, "Germany", table.Rows[1].Get(0))

	rate, ok := table.Rows[1].Float(2)
	require.True(t, ok)
	assert.Equal(t, 40.0, rate)
}

func TestColorClassifier(t *testing.T) {
	c := ColorClassifier{FontColorSuffix: "00588D"}

	assert.True(t, c.IsEstimate(&excelize.Style{
		Font: &excelize.Font{Color: "FF00588D"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1},
	}))
	assert.False(t, c.IsEstimate(&excelize.Style{
		Font: &excelize.Font{Color: "FF000000"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1},
	}))
	assert.False(t, c.IsEstimate(&excelize.Style{
		Font: &excelize.Font{Color: "FF00588D"},
	}))
	assert.False(t, c.IsEstimate(nil))
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.csv")
	content := "title line\nsubtitle\nName,Score\nGermany,81.1\nItaly,69.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := ReadCSV(path, 2)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Name", table.Rows[0].Get(0))
	assert.Equal(t, "Germany", table.Rows[1].Get(0))

	_, err = ReadCSV(filepath.Join(t.TempDir(), "none.csv"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E1001")
}
