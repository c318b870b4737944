package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"menu_studio_app_go/services"
	"menu_studio_app_go/services/layout"
)

// readDocument loads the HTML file named by the command's argument
func readDocument(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(b), nil
}

// writeOutput writes to out, or to the command's stdout when out is empty
func writeOutput(cmd *cobra.Command, out string, data []byte) error {
	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

// transformCmd builds a command that runs a string transform over a file
func transformCmd(use, short string, transform func(string) string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   use + " <file.html>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, []byte(transform(doc)))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func detectCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "detect <file.html>",
		Short: "List the repositionable sections of a menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			sections := layout.DetectSections(doc)
			if sections == nil {
				sections = []layout.Section{}
			}
			b, err := json.MarshalIndent(sections, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode sections: %w", err)
			}
			return writeOutput(cmd, out, append(b, '\n'))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func normalizeCmd() *cobra.Command {
	return transformCmd("normalize", "Lock pages to A4 and add the shrink-to-fit script", layout.NormalizeForDisplay)
}

func paginateCmd() *cobra.Command {
	return transformCmd("paginate", "Prepare a menu for multi-page PDF output", layout.PreparePDFDocument)
}

func applyCmd() *cobra.Command {
	var out string
	var positionsFile string

	cmd := &cobra.Command{
		Use:   "apply <file.html>",
		Short: "Place sections at absolute positions read from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(positionsFile)
			if err != nil {
				return fmt.Errorf("failed to read positions: %w", err)
			}
			var positions []layout.Position
			if err := json.Unmarshal(raw, &positions); err != nil {
				return fmt.Errorf("invalid positions file: %w", err)
			}

			return writeOutput(cmd, out, []byte(layout.ApplyPositions(doc, positions)))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&positionsFile, "positions", "p", "", "JSON array of {left, top, width, height}")
	_ = cmd.MarkFlagRequired("positions")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string
	var chromePath string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "export <file.html>",
		Short: "Render a menu to a paginated A4 PDF with headless Chrome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("--out is required for PDF output")
			}

			services.Browser = services.NewChromeRenderer(chromePath)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pdf, err := services.GeneratePDF(ctx, doc, services.DefaultPDFOptions())
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, out, pdf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(pdf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PDF file")
	cmd.Flags().StringVar(&chromePath, "chrome", "", "Chrome or headless-shell binary (default: $CHROME_PATH)")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "bound for the whole export")
	return cmd
}
