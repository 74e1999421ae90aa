// Command dedupe runs the engine directly against a JSON file, with no
// network layer, for scripted and CI use.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/engine"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func main() {
	inputPath := flag.String("input", "", "path to a JSON file containing an EngineInput")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: dedupe -input <path>")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *inputPath, err)
		os.Exit(1)
	}

	var input models.EngineInput
	if err := json.Unmarshal(raw, &input); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *inputPath, err)
		os.Exit(1)
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		fmt.Fprintf(os.Stderr, "%+v\n", msg)
	})
	driver := engine.NewDriver(logger)

	enc := json.NewEncoder(os.Stdout)
	for msg := range driver.Run(context.Background(), input) {
		if err := enc.Encode(msg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode message: %v\n", err)
			os.Exit(1)
		}
		if msg.Type == models.MessageError {
			os.Exit(1)
		}
	}
}
