package excel

// ExcelData is a sheet or CSV file as read from disk: trimmed headers and the
// raw cell text of every data row
type ExcelData struct {
	Headers []string
	Rows    [][]string
}
