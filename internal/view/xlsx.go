package view

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// SheetName is the worksheet the spreadsheet skin writes to.
const SheetName = "Prospects"

// WorkbookFor builds a single-sheet workbook with a header row followed by
// one row per lead.
func WorkbookFor(leads []lead.Display) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add sheet")
	}

	addRow(sheet, Headers)
	for _, d := range leads {
		addRow(sheet, Row(d))
	}
	return f, nil
}

// WriteXLSX streams the workbook for leads to w.
func WriteXLSX(w io.Writer, leads []lead.Display) error {
	f, err := WorkbookFor(leads)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}
