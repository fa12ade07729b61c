package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/recera/vuec/cmd/vuec/internal/template"
	"github.com/recera/vuec/pkg/compiler/ast"
)

func newParseCommand() *cobra.Command {
	var format string
	var output string
	var name string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a template and print its AST",
		Long: `Parses a .vue component or an HTML template and prints the AST document.
Use "-" to read the template from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer p.Close()

			var result *template.Result
			if args[0] == "-" {
				source, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read standard input: %w", err)
				}
				result, err = p.processor.ProcessSource(name, string(source))
				if err != nil {
					return err
				}
			} else {
				result, err = p.processor.ProcessFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", args[0], err)
				}
			}

			for _, w := range result.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s: %s\n", result.Path, w)
			}

			data, err := encodeDocument(result.Document, format)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s from %s\n", output, result.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or cbor")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to a file instead of stdout")
	cmd.Flags().StringVar(&name, "stdin-name", "stdin.html", "File name used for standard input")

	return cmd
}

// encodeDocument serializes doc in the requested format.
func encodeDocument(doc ast.Document, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		return append(data, '\n'), nil
	case "cbor":
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, err
		}
		data, err := em.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or cbor)", format)
	}
}
