// Command docreader reads ICAO 9303 machine-readable travel documents and
// VEVR-01 vehicle-registration cards over a PC/SC smart card reader.
package main

import "docreader/cmd"

func main() {
	cmd.Execute()
}
