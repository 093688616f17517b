// Package cmd implements the CLI surface, adapted from the teacher's
// cobra-based cmd/root.go: a persistent --reader/--json flag pair, a
// connectAndPrepareReader-style helper that auto-selects a lone PC/SC
// reader, and one subcommand per top-level operation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"docreader/output"
	"docreader/pcsc"
)

var (
	version = "1.0.0"

	readerIndex int
	outputJSON  bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docreader",
	Short: "eMRTD and VEVR-01 card reader",
	Long: `docreader v` + version + `

Reads ICAO 9303 machine-readable travel documents over Basic Access
Control and Secure Messaging, and VEVR-01 vehicle-registration cards.`,
	Version: version,
}

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	rootCmd.PersistentFlags().IntVarP(&readerIndex, "reader", "r", -1,
		"Reader index (the lone reader is auto-selected; with several, the reader list is printed)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false,
		"Suppress table and status output (no JSON document is written)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connectAndPrepareReader connects to a PC/SC reader, auto-selecting the
// lone available one if readerIndex was left at its default, following
// the teacher's connectAndPrepareReader idiom minus the SIM-specific PIN/
// ADM verification steps this domain has no equivalent of.
func connectAndPrepareReader() (*pcsc.Transport, error) {
	if readerIndex < 0 {
		readers, err := pcsc.ListReaders()
		if err != nil {
			return nil, err
		}
		if len(readers) == 0 {
			return nil, errNoReaders
		}
		if len(readers) == 1 {
			readerIndex = 0
			logger.Info("auto-selected reader", "name", readers[0])
		} else {
			output.PrintReaderList(readers)
			return nil, errMultipleReaders
		}
	}

	t, err := pcsc.Connect(readerIndex)
	if err != nil {
		return nil, err
	}

	if err := t.Reconnect(false); err != nil {
		logger.Warn("warm reset failed, continuing anyway", "error", err)
	}

	if !outputJSON {
		output.PrintReaderInfo(t.Name(), hexString(t.ATR()))
	}

	return t, nil
}
