package main

import (
	"fmt"
	"os"

	"github.com/alex-voss/sdmeta/core"
)

// printResult renders a ParseResult the way the teacher's core.Printer
// renders a core.Metadata in text mode (core/output.go): a status line
// followed by grouped fields.
func printResult(result core.ParseResult) {
	switch result.Status {
	case core.StatusSuccess:
		m := result.Metadata
		fmt.Printf("Software:  %s\n", m.Software)
		fmt.Printf("Prompt:    %s\n", m.Base.Prompt)
		if m.Base.NegativePrompt != "" {
			fmt.Printf("Negative:  %s\n", m.Base.NegativePrompt)
		}
		if m.Base.Width > 0 && m.Base.Height > 0 {
			fmt.Printf("Size:      %dx%d\n", m.Base.Width, m.Base.Height)
		}
		if m.Base.Sampling != nil {
			s := m.Base.Sampling
			if s.HasSteps {
				fmt.Printf("Steps:     %d\n", s.Steps)
			}
			if s.HasSampler {
				fmt.Printf("Sampler:   %s\n", s.Sampler)
			}
			if s.HasSeed {
				fmt.Printf("Seed:      %d\n", s.Seed)
			}
		}
		if m.Base.Model != nil && m.Base.Model.Name != "" {
			fmt.Printf("Model:     %s\n", m.Base.Model.Name)
		}
		if len(m.Nodes) > 0 {
			fmt.Printf("Nodes:     %d\n", len(m.Nodes))
		}
	case core.StatusEmpty:
		fmt.Println("No metadata found.")
	case core.StatusUnrecognized:
		fmt.Println("Metadata present but not recognized by any known tool.")
	case core.StatusInvalid:
		printError(fmt.Errorf("%s", result.Message))
	}
}

// printError writes to stderr, matching the teacher's PrintError
// (core/output.go).
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
