package cmd

import (
	"errors"
	"fmt"

	"docreader/output"
	"docreader/pcsc"
)

var (
	errNoReaders       = errors.New("no smart card readers found")
	errMultipleReaders = errors.New("multiple readers found, use -r <index> to select one")
)

// listReaders prints the list of available PC/SC readers.
func listReaders() error {
	readers, err := pcsc.ListReaders()
	if err != nil {
		return fmt.Errorf("listing readers: %w", err)
	}
	output.PrintReaderList(readers)
	return nil
}

func hexString(b []byte) string {
	return fmt.Sprintf("%X", b)
}

func printError(msg string) {
	output.PrintError(msg)
}

func printSuccess(msg string) {
	if !outputJSON {
		output.PrintSuccess(msg)
	}
}

func printWarning(msg string) {
	if !outputJSON {
		output.PrintWarning(msg)
	}
}
