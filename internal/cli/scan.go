package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/rawdata/internal/app"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/render"
)

type outputFormat string

const (
	formatJSON     outputFormat = "json"
	formatMarkdown outputFormat = "markdown"
	formatHTML     outputFormat = "html"
)

type scanFlags struct {
	mode    string
	backend string
	file    string
	overlay bool
	upload  bool
	format  string
	output  string
	pdf     string
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Scan a page or PDF and print the result",
		Example: `  rawdata scan https://example.com --mode quick
  rawdata scan --file ./saved.html --format markdown
  rawdata scan https://example.com/report.pdf --upload`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest(args)
			if err != nil {
				return err
			}
			format, err := parseFormat(flags.format)
			if err != nil {
				return err
			}

			a, err := opts.application()
			if err != nil {
				return err
			}
			defer shutdown(a, opts.logger)

			stderr := cmd.ErrOrStderr()
			out, err := a.Orch.Scan(cmd.Context(), req, func(p pdftext.Progress) {
				fmt.Fprintf(stderr, "%s %d/%d\n", p.Stage, p.Page, p.Total)
			})
			if err != nil {
				return err
			}

			if out.Receipt != nil {
				fmt.Fprintf(stderr, "Shareable link: %s (expires in %ds)\n", out.Receipt.URL, out.Receipt.ExpiresIn)
			}
			if out.UploadError != "" {
				fmt.Fprintf(stderr, "Upload failed: %s\n", out.UploadError)
			}
			if out.HistoryID != "" {
				fmt.Fprintf(stderr, "Saved to history as %s\n", out.HistoryID)
			}

			if flags.pdf != "" {
				if err := writeFile(flags.pdf, func(w io.Writer) error {
					return render.PDF(w, out.Result, out.HistoryID)
				}); err != nil {
					return fmt.Errorf("write pdf: %w", err)
				}
			}

			if flags.output == "" {
				return writeResult(cmd.OutOrStdout(), out.Result, out.HistoryID, format)
			}
			return writeFile(flags.output, func(w io.Writer) error {
				return writeResult(w, out.Result, out.HistoryID, format)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", "", "Scan mode: quick, full or deep (default from config)")
	f.StringVar(&flags.backend, "backend", "", "How to reach the page: http or browser (default from config)")
	f.StringVar(&flags.file, "file", "", "Scan a local HTML or PDF file instead of fetching")
	f.BoolVar(&flags.overlay, "overlay", false, "Draw the element overlay (browser backend)")
	f.BoolVar(&flags.upload, "upload", false, "Upload the result to the relay and print the link")
	f.StringVar(&flags.format, "format", string(formatJSON), "Output format: json, markdown or html")
	f.StringVarP(&flags.output, "output", "o", "", "Write the result to a file instead of stdout")
	f.StringVar(&flags.pdf, "pdf", "", "Also write a PDF report to this path")

	return cmd
}

// toRequest turns the flags and positional url into a scan request. Zero
// fields are filled from config by the orchestrator.
func (f *scanFlags) toRequest(args []string) (app.ScanRequest, error) {
	req := app.ScanRequest{
		Mode:    model.Mode(f.mode),
		Backend: app.Backend(f.backend),
		Overlay: f.overlay,
		Upload:  f.upload,
	}
	if len(args) > 0 {
		req.URL = strings.TrimSpace(args[0])
	}

	if f.file == "" {
		if req.URL == "" {
			return req, errors.New("a url or --file is required")
		}
		return req, nil
	}

	body, err := os.ReadFile(f.file)
	if err != nil {
		return req, fmt.Errorf("read %s: %w", f.file, err)
	}
	req.Body = body
	req.ContentType = "text/html"
	if strings.EqualFold(filepath.Ext(f.file), ".pdf") || bytes.HasPrefix(body, []byte("%PDF")) {
		req.ContentType = pdftext.ContentType
	}
	if req.URL == "" {
		abs, err := filepath.Abs(f.file)
		if err != nil {
			abs = f.file
		}
		req.URL = "file://" + filepath.ToSlash(abs)
	}
	return req, nil
}

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatJSON, formatMarkdown, formatHTML:
		return f, nil
	case "md":
		return formatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

func writeResult(w io.Writer, r *model.ScanResult, id string, format outputFormat) error {
	switch format {
	case formatMarkdown:
		_, err := io.WriteString(w, render.Markdown(r, id))
		return err
	case formatHTML:
		return render.HTML(w, r, id)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
}

// writeFile replaces path atomically through a temp file in the same directory.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rawdata-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	name := tmp.Name()
	tmp = nil
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
