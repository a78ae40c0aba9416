// Package exporter writes view result tables to files or HTTP responses.
//
// It has two writers:
//
// CSVWriter: CSV output prefixed with a UTF-8 BOM so spreadsheet tools
// detect the encoding.
//
// XLSXWriter: a single-sheet workbook built with excelize, keeping numeric
// cells numeric.
//
// Example usage:
//
//	table := exporter.NewTable("team-wickets", "team", "wickets")
//	table.AddRow("India", 42)
//
//	format, err := exporter.ParseFormat("xlsx")
//	if err != nil {
//		return err
//	}
//	err = exporter.Write(w, format, table)
package exporter
