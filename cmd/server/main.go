// Package main is the entry point for the bank2sf2 API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/bank2sf2/pkg/api"
	"github.com/james-see/bank2sf2/pkg/converter"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	factor := flag.Float64("attenuation-factor", converter.DefaultAttenuationFactor, "Scale applied to DLS gain when computing attenuation")
	flag.Parse()

	opts := converter.DefaultOptions()
	opts.AttenuationFactor = *factor

	fmt.Printf("Starting bank2sf2 API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
