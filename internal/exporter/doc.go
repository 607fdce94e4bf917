// Package exporter writes pipeline results as CSV snapshots.
//
// CSVWriter holds the core writing functionality with support for
// headers, streaming, and a UTF-8 BOM for Excel compatibility.
// ResultExporter builds on it with one timestamped export per dataset.
//
// Example usage:
//
//	exp := exporter.NewResultExporter(cfg.Paths.ExportDir)
//	name, err := exp.ExportCustomsCountry(rows)
package exporter
