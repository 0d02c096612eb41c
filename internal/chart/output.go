package chart

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	apperrors "tradecharts/internal/errors"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
)

// DefaultDPI is the raster resolution used when none is given.
const DefaultDPI = 300

// NormalizeFormat maps a format name or file extension to one of the
// supported formats.
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, format)
}

// WriteTo encodes the figure in format. dpi only applies to raster formats.
func (f *Figure) WriteTo(w io.Writer, format string, dpi int) (int64, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return 0, err
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	var out io.WriterTo
	switch format {
	case FormatPNG, FormatJPEG:
		img := vgimg.NewWith(
			vgimg.UseWH(f.Width, f.Height),
			vgimg.UseDPI(dpi),
		)
		f.Draw(draw.New(img))
		if format == FormatPNG {
			out = vgimg.PngCanvas{Canvas: img}
		} else {
			out = vgimg.JpegCanvas{Canvas: img}
		}
	case FormatSVG:
		c := vgsvg.New(f.Width, f.Height)
		f.Draw(draw.New(c))
		out = c
	case FormatPDF:
		c := vgpdf.New(f.Width, f.Height)
		f.Draw(draw.New(c))
		out = c
	}

	n, err := out.WriteTo(w)
	if err != nil {
		return n, apperrors.NewRenderError("encode "+format, err)
	}
	return n, nil
}

// Save writes the figure to path, choosing the format from its extension.
func (f *Figure) Save(path string, dpi int) error {
	format, err := NormalizeFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create "+path, err)
	}
	defer file.Close()

	bw := bufio.NewWriter(file)
	if _, err := f.WriteTo(bw, format, dpi); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return apperrors.NewStorageError("write "+path, err)
	}
	return file.Close()
}

// Size is the figure size in inches.
func (f *Figure) Size() (width, height float64) {
	return float64(f.Width / vg.Inch), float64(f.Height / vg.Inch)
}
