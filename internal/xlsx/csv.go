package xlsx

import (
	"encoding/csv"
	"os"
	"path/filepath"

	apperrors "tradepulse/internal/errors"
)

// ReadCSV reads a CSV file into a table, discarding the first skipRows
// rows. Ragged rows are allowed.
func ReadCSV(path string, skipRows int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.WrapProcessing(apperrors.CodeFileNotFound, err, "file not found: %s", path)
		}
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "opening %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "reading %s", path)
	}

	if skipRows > len(records) {
		skipRows = len(records)
	}
	records = records[skipRows:]

	t := &Table{Name: filepath.Base(path), Rows: make([]Row, len(records))}
	for i, rec := range records {
		t.Rows[i] = NewRow(rec...)
	}
	return t, nil
}
