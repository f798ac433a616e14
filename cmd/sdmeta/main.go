// sdmeta — AI image metadata CLI
// Version: 0.1.0
//
// Usage:
//   sdmeta <command> [flags] <file>
//
// Commands:
//   read      Print the metadata a file carries
//   write     Copy metadata from one file onto another (same or cross format)
//   strip     Remove all recognized metadata from a file
//   version   Print version information
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/alex-voss/sdmeta"
	"github.com/alex-voss/sdmeta/core"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "read":
		runRead(args)
	case "write":
		runWrite(args)
	case "strip":
		runStrip(args)
	case "version", "--version", "-v":
		fmt.Printf("sdmeta v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`sdmeta v%s

USAGE
  sdmeta <command> [flags] <file>

COMMANDS
  read      Print the metadata a file carries
  write     Copy metadata from one file onto another (same or cross format)
  strip     Remove all recognized metadata from a file
  version   Print version information

QUICK EXAMPLES
  sdmeta read image.png
  sdmeta read --json image.png
  sdmeta write --from source.png --out tagged.jpg target.jpg
  sdmeta strip --out clean.png image.png
`, version)
}

func runRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output as canonical A1111/raw text instead of a summary")
	fs.Usage = func() { fmt.Println("Usage: sdmeta read [--json] <file>") }
	fs.Parse(args)
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	result := sdmeta.Read(data)
	if *jsonOut {
		fmt.Println(sdmeta.Stringify(result))
		return
	}
	printResult(result)
}

func runWrite(args []string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	from := fs.String("from", "", "Source file to copy metadata from")
	out := fs.String("out", "", "Output path (required)")
	force := fs.Bool("force", false, "Passed to Write; unrecognized data is still dropped on a cross-format write")
	fs.Usage = func() { fmt.Println("Usage: sdmeta write --from <src> --out <dst> <target>") }
	fs.Parse(args)
	if fs.NArg() < 1 || *from == "" || *out == "" {
		fs.Usage()
		os.Exit(1)
	}

	srcData, err := os.ReadFile(*from)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	targetData, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	result := sdmeta.Read(srcData)
	written, warnings, err := sdmeta.Write(targetData, result, sdmeta.WriteOptions{Force: *force})
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Reason)
	}
	if err := os.WriteFile(*out, written, 0o644); err != nil {
		printError(err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func runStrip(args []string) {
	fs := flag.NewFlagSet("strip", flag.ExitOnError)
	out := fs.String("out", "", "Output path (required)")
	fs.Usage = func() { fmt.Println("Usage: sdmeta strip --out <dst> <file>") }
	fs.Parse(args)
	if fs.NArg() < 1 || *out == "" {
		fs.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	empty := core.ParseResult{Status: core.StatusEmpty}
	written, _, err := sdmeta.Write(data, empty, sdmeta.WriteOptions{})
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, written, 0o644); err != nil {
		printError(err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}
