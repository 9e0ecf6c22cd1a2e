package chart

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// Report is the text printed under the chart in a PDF.
type Report struct {
	Title string
	Body  string
}

const (
	pdfFont        = "Helvetica"
	pdfMargin      = 40.0
	pdfTextHeight  = 180.0
	pdfTitleSize   = 14.0
	pdfBodySize    = 11.0
	pdfBodyLeading = 15.0
)

// WritePDF writes a one-page PDF with the chart at its pixel size (one pixel
// per point) and the report text below it.
func WritePDF(w io.Writer, elems []Element, report Report) error {
	frame := FrameOf(elems)
	width := float64(frame.Width) + 2*pdfMargin
	height := float64(frame.Height) + 2*pdfMargin + pdfTextHeight

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, e := range elems {
		s := layout(e)
		for _, r := range s.rects {
			c := ParseHex(r.fill)
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.Rect(pdfMargin+r.x, pdfMargin+r.y, r.w, r.h, "F")
		}
		for _, l := range s.lines {
			if len(l.points) < 2 {
				continue
			}
			c := ParseHex(l.color)
			pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
			pdf.SetLineWidth(l.width)
			pdf.MoveTo(pdfMargin+l.points[0].X, pdfMargin+l.points[0].Y)
			for _, p := range l.points[1:] {
				pdf.LineTo(pdfMargin+p.X, pdfMargin+p.Y)
			}
			pdf.DrawPath("D")
		}
		for _, t := range s.texts {
			style := ""
			if t.bold {
				style = "B"
			}
			c := ParseHex(t.color)
			pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
			pdf.SetFont(pdfFont, style, t.Size)

			content := tr(t.Content)
			x, y := pdfMargin+t.X, pdfMargin+t.Y
			offset := anchorFactor(t.Anchor) * pdf.GetStringWidth(content)
			if t.Rotate != 0 {
				pdf.TransformBegin()
				pdf.TransformRotate(-t.Rotate, x, y)
				pdf.Text(x-offset, y, content)
				pdf.TransformEnd()
				continue
			}
			pdf.Text(x-offset, y, content)
		}
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(pdfMargin, pdfMargin+float64(frame.Height)+pdfMargin/2)
	if report.Title != "" {
		pdf.SetFont(pdfFont, "B", pdfTitleSize)
		pdf.CellFormat(float64(frame.Width), pdfTitleSize*1.5, tr(report.Title), "", 1, "L", false, 0, "")
	}
	if report.Body != "" {
		pdf.SetFont(pdfFont, "", pdfBodySize)
		pdf.MultiCell(float64(frame.Width), pdfBodyLeading, tr(report.Body), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
