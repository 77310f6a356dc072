package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrorText stands in for the document text when plain text extraction fails.
const ErrorText = "Error extracting text from PDF"

var configOnce sync.Once

// Configuration returns a relaxed pdfcpu configuration that never touches the
// user's config directory.
func Configuration() *model.Configuration {
	configOnce.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PlainText returns the running text of every page joined with newlines. The
// primary path scrapes text operators from pdfcpu's decoded content streams;
// documents that yield nothing there are retried with the span reader's plain
// text output.
func PlainText(data []byte) (string, error) {
	text, err := contentStreamText(data)
	if err != nil {
		return "", err
	}
	if text != "" {
		return text, nil
	}

	fallback, err := readerText(data)
	if err != nil {
		// The first pass parsed the file, so an empty result is still valid
		return "", nil
	}
	return fallback, nil
}

func contentStreamText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), Configuration())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtraction, pageNr, err)
		}
		if r == nil {
			pages = append(pages, "")
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtraction, pageNr, err)
		}
		pages = append(pages, pageText(string(content)))
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

func readerText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtraction, i, err)
		}
		pages = append(pages, strings.TrimSpace(t))
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
