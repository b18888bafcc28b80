package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/startuplens/internal/report"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputText = "text"
)

func validateOutput(format string) error {
	switch format {
	case outputJSON, outputYAML, outputText:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or text)", format)
	}
}

func printResult(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return printOutput(cmd.OutOrStdout(), format, v)
}

// printOutput writes v as indented JSON, YAML or a text report. YAML is
// derived from the JSON form so both formats share field names. Values with
// no text rendering fall back to JSON.
func printOutput(w io.Writer, format string, v any) error {
	if format == outputText {
		if text, err := report.Render(v); err == nil {
			_, err = io.WriteString(w, text)
			return err
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if format != outputYAML {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
