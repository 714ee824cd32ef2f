// Command regenc generates a standalone Go matcher from a regex pattern.
//
// Usage:
//
//	regenc [options] NAME REGEX
//
// NAME is the exported type name the generated source declares; REGEX is
// the pattern, in the same syntax accepted by stdlib regexp. By default
// the generated source is written to stdout; use -o to write it to a
// file instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/coregx/regenc"
)

func main() {
	var (
		shortHelpFlag = flag.Bool("h", false, "show help page")
		longHelpFlag  = flag.Bool("help", false, "show help page")
		outputFlag    = flag.String("o", "", "output file, defaults to stdout")
		packageFlag   = flag.String("package", "generated", "package name for the generated source")
		noPrefilter   = flag.Bool("no-prefilter", false, "disable the Aho-Corasick literal prefilter")
	)
	flag.Usage = usage
	flag.Parse()

	if *shortHelpFlag || *longHelpFlag {
		flag.Usage()
		os.Exit(0)
	}

	if flag.NArg() != 2 {
		argError(1, "expected NAME REGEX, got %d argument(s)", flag.NArg())
	}

	typeName, pattern := flag.Arg(0), flag.Arg(1)

	cfg := regenc.DefaultConfig()
	cfg.PackageName = *packageFlag
	cfg.EnablePrefilter = !*noPrefilter

	src, err := regenc.Generate(typeName, pattern, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "regenc:", err)
		os.Exit(3)
	}

	out := output(*outputFlag)
	defer out.Close()
	if _, err := out.Write(src); err != nil {
		fmt.Fprintln(os.Stderr, "regenc:", err)
		os.Exit(4)
	}
}

var usagePage = `usage: %s [options] NAME REGEX

regenc compiles REGEX, known at build time, into a standalone Go type
named NAME that matches strings without interpreting regex bytecode at
runtime.

	-h -help
		display this help message.
	-o OUTPUT_FILE
		write the generated source to OUTPUT_FILE. Defaults to stdout.
	-package NAME
		package name for the generated source. Defaults to "generated".
	-no-prefilter
		disable the Aho-Corasick literal prefilter, even when the
		pattern has good required literals.
`

func usage() {
	fmt.Printf(usagePage, os.Args[0])
}

func argError(exit int, msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
	fmt.Fprintln(os.Stderr)
	flag.Usage()
	os.Exit(exit)
}

func output(filename string) *os.File {
	if filename == "" {
		return os.Stdout
	}
	f, err := os.Create(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, "regenc:", err)
		os.Exit(2)
	}
	return f
}
