// Package output renders reader results as terminal tables, adapted from
// the teacher's output/table.go: the same go-pretty/v6 styling and
// Print*/newTable conventions, reduced to the eMRTD MRZ/BAC and VEVR-01
// domain this module actually reads.
package output

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"docreader/mrz"
	"docreader/vevr"
)

var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
	colorWarn    = text.Colors{text.FgYellow}
)

func getTableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = text.Colors{text.FgWhite}
	style.Color.RowAlternate = text.Colors{text.FgHiWhite}
	style.Options.SeparateRows = false
	return style
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(getTableStyle())
	t.Style().Options.SeparateRows = false
	return t
}

// PrintMRZRecord prints a parsed MRZ record's fields.
func PrintMRZRecord(rec mrz.Record) {
	fmt.Println()
	t := newTable()
	t.SetTitle("MACHINE READABLE ZONE")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 22},
		{Number: 2, Colors: colorValue, WidthMin: 45},
	})

	t.AppendRow(table.Row{"Document Type", rec.DocumentType})
	t.AppendRow(table.Row{"Issuing State", rec.Issuer})
	t.AppendRow(table.Row{"Document Number", rec.DocumentNumber})
	t.AppendRow(table.Row{"Primary Identifier", rec.PrimaryIdentifier})
	if rec.SecondaryIdentifier != nil {
		t.AppendRow(table.Row{"Secondary Identifier", *rec.SecondaryIdentifier})
	}
	t.AppendRow(table.Row{"Nationality", rec.HolderNationality})
	t.AppendRow(table.Row{"Date of Birth", rec.DateOfBirth})
	t.AppendRow(table.Row{"Sex", rec.Sex})
	t.AppendRow(table.Row{"Date of Expiry", rec.DateOfExpiry})
	if rec.OptionalData1 != "" {
		t.AppendRow(table.Row{"Optional Data 1", rec.OptionalData1})
	}
	if rec.OptionalData2 != nil && *rec.OptionalData2 != "" {
		t.AppendRow(table.Row{"Optional Data 2", *rec.OptionalData2})
	}
	if rec.NameMightBeTruncated {
		t.AppendRow(table.Row{"Name", colorWarn.Sprint("possibly truncated by field width")})
	}
	t.Render()
}

// PrintBACResult prints the outcome of a Basic Access Control handshake.
func PrintBACResult(success bool, protocol string, err error) {
	fmt.Println()
	t := newTable()
	t.SetTitle("BASIC ACCESS CONTROL")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 18},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})

	if success {
		t.AppendRow(table.Row{"Status", colorSuccess.Sprint("✓ secure channel established")})
		t.AppendRow(table.Row{"Secure Channel", protocol})
	} else {
		t.AppendRow(table.Row{"Status", colorError.Sprint("✗ handshake failed")})
		if err != nil {
			t.AppendRow(table.Row{"Reason", err.Error()})
		}
	}
	t.Render()
}

// PrintVEVRRecord prints a VEVR-01 vehicle-registration record and its
// signature-verification outcome.
func PrintVEVRRecord(rec *vevr.Record) {
	fmt.Println()
	t := newTable()
	t.SetTitle("VEVR-01 VEHICLE REGISTRATION RECORD")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMax: 70},
	})

	t.AppendRow(table.Row{"Data Object (tag)", fmt.Sprintf("0x%X", rec.DataObject.Tag())})
	t.AppendRow(table.Row{"Certificate (DER)", fmt.Sprintf("%d bytes", len(rec.Certificate.Raw()))})
	t.AppendRow(table.Row{"Signature", fmt.Sprintf("%X", rec.Signature.Raw())})
	if rec.Verified {
		t.AppendRow(table.Row{"Signature Status", colorSuccess.Sprint("✓ verified")})
	} else {
		t.AppendRow(table.Row{"Signature Status", colorError.Sprint("✗ not verified")})
	}
	t.Render()
}

// PrintReaderInfo prints the connected reader and card ATR.
func PrintReaderInfo(readerName, atr string) {
	fmt.Println()
	t := newTable()
	t.SetTitle("READER & CARD INFO")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 15},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})
	t.AppendRow(table.Row{"Reader", readerName})
	t.AppendRow(table.Row{"ATR", atr})
	t.Render()
}

// PrintReaderList prints available PC/SC readers.
func PrintReaderList(readers []string) {
	fmt.Println()
	t := newTable()
	t.SetTitle("AVAILABLE SMART CARD READERS")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 8},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})

	if len(readers) == 0 {
		t.AppendRow(table.Row{"Status", colorWarn.Sprint("No readers found")})
	} else {
		for i, r := range readers {
			t.AppendRow(table.Row{fmt.Sprintf("[%d]", i), r})
		}
	}
	t.Render()
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(colorError.Sprintf("✗ Error: %s", msg))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Println(colorSuccess.Sprintf("✓ %s", msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Println(colorWarn.Sprintf("⚠ %s", msg))
}
