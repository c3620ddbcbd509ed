// Command classify runs the message pipeline offline: it reads a JSON batch
// from a file or stdin and writes the classified items as JSON to stdout.
//
// Input shape:
//
//	{
//	  "messages": [...],
//	  "subscribed_chats": ["chat-1", ...],
//	  "period": {"start": "...", "end": "..."}
//	}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"classdigest/internal/classify"
	"classdigest/internal/filter"
	"classdigest/internal/pipeline"
	"classdigest/internal/rules"
)

func main() {
	input := flag.String("in", "-", "input file, or - for stdin")
	rulesPath := flag.String("rules", "", "optional YAML rules override file")
	pretty := flag.Bool("pretty", false, "indent the JSON output")
	verbose := flag.Bool("v", false, "log classification details to stderr")
	flag.Parse()

	if err := run(*input, *rulesPath, *pretty, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "classify:", err)
		os.Exit(1)
	}
}

func run(input, rulesPath string, pretty, verbose bool) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rs := rules.Default()
	if rulesPath != "" {
		var err error
		if rs, err = rules.Load(rulesPath); err != nil {
			return err
		}
	}

	data, err := readInput(input)
	if err != nil {
		return err
	}

	var req pipeline.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	proc := pipeline.New(filter.New(0), classify.New(rs, log), log)
	resp, err := proc.Process(req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}

func readInput(input string) ([]byte, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(input) //nolint:gosec // operator-supplied input file
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
