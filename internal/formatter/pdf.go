package formatter

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jung-kurt/gofpdf"

	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/types"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10
	pdfLineHeight = 5
	pdfFontSize   = 9
	pdfTabWidth   = 4

	pdfStyle = "github"
)

// pdfWriter bundles the document with the UTF-8 to cp1252 translation the
// core fonts need.
type pdfWriter struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	style *chroma.Style
}

func (w *pdfWriter) cell(font, style string, size float64, text string) {
	w.pdf.SetFont(font, style, size)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, w.tr(text), "", "L", false)
}

func (w *pdfWriter) heading(text string) {
	w.pdf.Ln(pdfLineHeight / 2)
	w.cell("Helvetica", "B", pdfFontSize+3, text)
	w.pdf.Ln(pdfLineHeight / 2)
}

// WritePDF renders repo as a syntax-highlighted A4 PDF: a summary page
// followed by one section per file.
func WritePDF(out io.Writer, repo *types.PackedRepository) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Repository Summary", true)
	pdf.AddPage()

	style := styles.Get(pdfStyle)
	if style == nil {
		style = styles.Fallback
	}
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), style: style}

	if repo.Instruction != "" {
		w.heading("User Instruction")
		w.cell("Helvetica", "", pdfFontSize, repo.Instruction)
	}

	s := repo.Summary
	w.heading("Repository Summary")
	summary := []string{
		fmt.Sprintf("Files: %d", s.FileCount),
		fmt.Sprintf("Directories: %d", s.DirectoryCount),
		fmt.Sprintf("Total Size: %s", FormatSize(s.TotalSize)),
		fmt.Sprintf("Binary Files: %d", s.BinaryFileCount),
	}
	if len(s.Extensions) > 0 {
		summary = append(summary, "Extensions: "+strings.Join(s.Extensions, ", "))
	}
	if s.TotalTokens > 0 {
		summary = append(summary, fmt.Sprintf("Total Tokens: %d", s.TotalTokens))
	}
	w.cell("Helvetica", "", pdfFontSize, strings.Join(summary, "\n"))

	w.heading("Security Check")
	w.cell("Helvetica", "", pdfFontSize, securityLine(repo))
	for i, f := range repo.SuspiciousFiles {
		w.cell("Courier", "", pdfFontSize, fmt.Sprintf("%d. %s", i+1, f))
	}

	if len(repo.BinaryFiles) > 0 {
		w.heading("Binary Files")
		for i, f := range repo.BinaryFiles {
			w.cell("Courier", "", pdfFontSize, fmt.Sprintf("%d. %s", i+1, f))
		}
	}

	if len(repo.Files) > 0 {
		w.heading("Directory Structure")
		w.cell("Courier", "", pdfFontSize, asciiTree(BuildTree(repo.Files, ".").String()))
	}

	logger := logging.GetLogger("formatter")
	for _, f := range repo.Files {
		pdf.AddPage()
		w.cell("Helvetica", "B", pdfFontSize+1, "File: "+f.RelativePath)
		meta := "Size: " + FormatSize(f.Size)
		if f.TokenCount > 0 {
			meta += fmt.Sprintf("   Tokens: %d", f.TokenCount)
		}
		w.cell("Helvetica", "", pdfFontSize-1, meta)
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		if f.IsBinary {
			w.cell("Helvetica", "I", pdfFontSize, "Binary file, content omitted.")
			continue
		}
		if err := w.highlighted(f.Content, f.RelativePath); err != nil {
			logger.Warn().Err(err).Str("path", f.RelativePath).Msg("Syntax highlighting failed, writing plain text")
			w.cell("Courier", "", pdfFontSize, expandTabs(f.Content))
		}
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// highlighted writes code token by token in the colours of the style.
func (w *pdfWriter) highlighted(code, filename string) error {
	lexer := lexers.Match(path.Base(filename))
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	w.pdf.SetFont("Courier", "", pdfFontSize)
	fg := w.style.Get(chroma.Text).Colour
	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := w.style.Get(token.Type)
		fontStyle := ""
		if entry.Bold == chroma.Yes {
			fontStyle += "B"
		}
		if entry.Italic == chroma.Yes {
			fontStyle += "I"
		}
		w.pdf.SetFontStyle(fontStyle)

		switch {
		case entry.Colour.IsSet():
			w.pdf.SetTextColor(int(entry.Colour.Red()), int(entry.Colour.Green()), int(entry.Colour.Blue()))
		case fg.IsSet():
			w.pdf.SetTextColor(int(fg.Red()), int(fg.Green()), int(fg.Blue()))
		default:
			w.pdf.SetTextColor(0, 0, 0)
		}

		w.pdf.Write(pdfLineHeight, w.tr(expandTabs(token.Value)))
	}
	w.pdf.Ln(-1)
	return nil
}

func securityLine(repo *types.PackedRepository) string {
	switch repo.Security.State {
	case types.SecurityDisabled:
		return "Security check was disabled."
	case types.SecurityCompletedNoFindings:
		return "Security check completed - no suspicious files found."
	case types.SecurityCompletedWithFindings:
		return fmt.Sprintf("WARNING: %d suspicious file(s) detected that may contain sensitive information:", len(repo.SuspiciousFiles))
	case types.SecurityFailed:
		return "Security check failed: " + repo.Security.Reason
	}
	return ""
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", pdfTabWidth))
}

// asciiTree swaps the box-drawing connectors for characters the core
// fonts can show.
func asciiTree(tree string) string {
	return strings.NewReplacer("├── ", "|-- ", "└── ", "`-- ", "│   ", "|   ").Replace(tree)
}
