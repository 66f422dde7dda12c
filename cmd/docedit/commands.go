package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docedit/internal/chunker"
	"github.com/dgallion1/docedit/internal/docdiff"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/markdown"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/dgallion1/docedit/internal/tools"
)

func newToolsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := tools.NewDefault(tools.Options{}).All()
			if asJSON {
				return writeJSON(cmd, all)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCATEGORY\tMUTATES\tDESCRIPTION")
			for _, t := range all {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", t.Name, t.Category, t.Mutates, t.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output tool definitions as JSON")
	return cmd
}

func newMD2NodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "md2nodes <path|->",
		Short: "Translate markdown into document nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, markdown.ParseToNodes(string(raw)))
		},
	}
}

func newImportCmd() *cobra.Command {
	var (
		output   string
		pdftotxt bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert a .md, .html, .txt, .csv, .pdf or .docx file into a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := parser.Document(f, args[0], parser.Options{PDFFallbackPdftotext: pdftotxt})
			if err != nil {
				return err
			}
			if output != "" {
				return writeDocFile(output, doc)
			}
			return writeJSON(cmd, doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&pdftotxt, "pdftotext", true, "Fall back to pdftotext for PDFs without a text layer")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <doc.json|->",
		Short: "Render a JSON document as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDoc(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), markdown.RenderDoc(doc))
			return nil
		},
	}
}

func newStructureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "structure <doc.json|->",
		Short: "Print the block outline of a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDoc(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, chunker.ExtractStructure(editor.New(doc).Doc(), chunker.DefaultLimits()))
		},
	}
}

type runConfig struct {
	doc   string
	args  string
	write bool
	diff  bool
}

func newRunCmd() *cobra.Command {
	cfg := runConfig{}
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run one tool against a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, args[0], cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.doc, "doc", "", "JSON document file (required)")
	cmd.Flags().StringVar(&cfg.args, "args", "{}", "Tool arguments as a JSON object, or @file")
	cmd.Flags().BoolVar(&cfg.write, "write", false, "Write the changed document back to --doc")
	cmd.Flags().BoolVar(&cfg.diff, "diff", false, "Print a markdown diff of the change")
	cmd.MarkFlagRequired("doc")
	return cmd
}

func runTool(cmd *cobra.Command, name string, cfg runConfig) error {
	registry := tools.NewDefault(tools.Options{})
	if registry.Get(name) == nil {
		return fmt.Errorf("unknown tool %q (see 'docedit tools')", name)
	}

	doc, err := loadDoc(cmd, cfg.doc)
	if err != nil {
		return err
	}
	toolArgs, err := readArgs(cfg.args)
	if err != nil {
		return err
	}

	ed := editor.New(doc)
	before := ed.Doc()
	result := registry.Invoke(cmd.Context(), ed, name, toolArgs)

	out := map[string]any{"tool": name, "result": result, "version": ed.Version()}
	if cfg.diff {
		out["diff"] = docdiff.Docs(before, ed.Doc(), docdiff.Options{})
	}
	if err := writeJSON(cmd, out); err != nil {
		return err
	}

	if er, failed := result.(tools.ErrorResult); failed {
		return fmt.Errorf("%s: %s", er.Code, er.Error)
	}
	if cfg.write && ed.Version() > 0 {
		return writeDocFile(cfg.doc, ed.Doc())
	}
	return nil
}

func readArgs(value string) (json.RawMessage, error) {
	raw := []byte(value)
	if strings.HasPrefix(value, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, err
		}
		raw = data
	}
	if !json.Valid(raw) {
		return nil, errors.New("--args must be valid JSON")
	}
	return json.RawMessage(raw), nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, errors.New("input is empty")
		}
		return raw, nil
	}
	return os.ReadFile(path)
}

func loadDoc(cmd *cobra.Command, path string) (*doctree.Node, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	doc, err := doctree.Parse(raw)
	if err != nil {
		return nil, err
	}
	if doc.Type != doctree.TypeDoc {
		return nil, fmt.Errorf("%s: root node must be %q, got %q", path, doctree.TypeDoc, doc.Type)
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func writeDocFile(path string, doc *doctree.Node) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeJSON(cmd *cobra.Command, v any) error {
	pretty, _ := cmd.Flags().GetBool("pretty")
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
