// Command extract-rolls lists the roll/registration numbers found in a roster file.
//
//	extract-rolls [-out path] [-quiet] <file.txt|file.csv|file.xlsx>
//
// Identifiers are printed in order of first appearance and written, one per line,
// to <file>.rolls.txt unless -out says otherwise.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/noah-isme/exam-logistics-api/internal/roster"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("extract-rolls: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("extract-rolls", flag.ContinueOnError)
	var (
		outPath string
		quiet   bool
	)
	fs.StringVar(&outPath, "out", "", "Output path (default <file>.rolls.txt)")
	fs.BoolVar(&quiet, "quiet", false, "Do not echo identifiers to stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("exactly one input file is required")
	}
	input := fs.Arg(0)
	if outPath == "" {
		outPath = input + ".rolls.txt"
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := roster.Read(roster.FormatFromFilename(input), f)
	if err != nil {
		return err
	}
	ids := extractIDs(rows)

	if err := writeLines(outPath, ids); err != nil {
		return err
	}
	if !quiet {
		for _, id := range ids {
			fmt.Fprintln(stdout, id)
		}
	}
	fmt.Fprintf(stdout, "%d identifiers written to %s\n", len(ids), outPath)
	return nil
}

// extractIDs returns every distinct identifier in first-appearance order. Cells of a
// row are rejoined into one line so a label in one column still tags the id in the next.
func extractIDs(rows []roster.Row) []string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " "))
	}
	return roster.ScanIdentifiers(strings.Join(lines, "\n"))
}

func writeLines(path string, lines []string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	w := bufio.NewWriter(out)
	if len(lines) > 0 {
		if _, err := w.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
			_ = out.Close()
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return out.Close()
}
