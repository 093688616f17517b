package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"docreader/output"
	"docreader/vevr"
)

var vevrFileID string

// defaultVEVRFileID is the VEVR-01 applet's well-known elementary file
// identifier (EF01 in the 4-hex-digit form the --file-id flag takes).
var defaultVEVRFileID = []byte{0xEF, 0x01}

var readVEVRCmd = &cobra.Command{
	Use:   "read-vevr",
	Short: "Read and verify a VEVR-01 vehicle registration card",
	Long: `read-vevr selects the VEVR-01 elementary file, reads its registration
data object, certificate, and signature, and verifies the signature
before printing the record.

Example:
  docreader read-vevr
  docreader read-vevr --file-id EF02`,
	RunE: runReadVEVR,
}

func init() {
	readVEVRCmd.Flags().StringVar(&vevrFileID, "file-id", "", "VEVR-01 file identifier as 4 hex digits (default EF01)")
	rootCmd.AddCommand(readVEVRCmd)
}

func runReadVEVR(cmd *cobra.Command, args []string) error {
	fileID := defaultVEVRFileID
	if vevrFileID != "" {
		parsed, err := parseFileID(vevrFileID)
		if err != nil {
			printError(err.Error())
			return err
		}
		fileID = parsed
	}

	t, err := connectAndPrepareReader()
	if err != nil {
		printError(err.Error())
		return err
	}
	defer t.Close()

	ctx := context.Background()
	rec, err := vevr.ReadRecord(ctx, t, fileID)
	if err != nil {
		printError(err.Error())
		return err
	}

	if _, err := vevr.Verify(rec); err != nil {
		printError(err.Error())
		return err
	}

	if !outputJSON {
		output.PrintVEVRRecord(rec)
	}
	if rec.Verified {
		printSuccess("signature verified")
	} else {
		printWarning("signature verification failed")
	}
	return nil
}

// parseFileID parses a 4-hex-digit file identifier flag into its 2-byte
// wire form.
func parseFileID(s string) ([]byte, error) {
	if len(s) != 4 {
		return nil, fmt.Errorf("read-vevr: --file-id must be exactly 4 hex digits, got %q", s)
	}
	var b [2]byte
	if _, err := fmt.Sscanf(s, "%02x%02x", &b[0], &b[1]); err != nil {
		return nil, fmt.Errorf("read-vevr: invalid --file-id %q: %w", s, err)
	}
	return b[:], nil
}
