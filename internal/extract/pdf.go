package extract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"taxdesk/internal/domain"
	"taxdesk/internal/tabular"
)

const (
	// Below this many readable characters the document is treated as
	// scanned and handed to OCR.
	minDigitalTextChars = 50

	// Pages are stacked in one coordinate space by shifting each page's
	// Y range down by this much. Keeps row clustering from mixing pages.
	pageYOffset = 10000
)

// extractPDF runs the tiered PDF pipeline: positioned text extraction,
// then OCR for scanned documents, then raw text only.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*Result, error) {
	tokens, err := extractPositionedTokens(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentParse, err)
	}

	if tokenTextLen(tokens) >= minDigitalTextChars {
		rows, headers := e.buildStructuredRows(ctx, tokens)
		return &Result{
			RawText: rowsToText(tokens),
			Rows:    rows,
			Headers: headers,
			Format:  domain.FormatPDF,
		}, nil
	}

	log.Printf("extract: pdf has %d chars of digital text, falling back to OCR", tokenTextLen(tokens))

	ocrTokens, ocrText, ocrErr := e.extractScannedPDF(ctx, data)
	if ocrErr != nil {
		log.Printf("extract: ocr failed, returning raw text only: %v", ocrErr)
		return &Result{
			RawText: rowsToText(tokens),
			Format:  domain.FormatPDF,
		}, nil
	}

	// OCR on a near-blank scan can come back with almost nothing; a
	// handful of noise characters is not a table worth classifying.
	if ocrTooSparse(ocrText, ocrTokens) {
		log.Printf("extract: ocr yielded %d chars, returning raw text only", len(strings.TrimSpace(ocrText)))
		return &Result{
			RawText: ocrText,
			Format:  domain.FormatPDF,
		}, nil
	}

	rows, headers := e.buildStructuredRows(ctx, ocrTokens)
	return &Result{
		RawText: ocrText,
		Rows:    rows,
		Headers: headers,
		Format:  domain.FormatPDF,
	}, nil
}

// extractPositionedTokens reads every page's text objects with their
// coordinates, shifting each page down so later pages sort below earlier
// ones. Pages are read concurrently; output is ordered by page.
func extractPositionedTokens(data []byte) (tokens []tabular.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pageTokens := make([][]tabular.Token, numPages)
	var wg sync.WaitGroup
	for i := 1; i <= numPages; i++ {
		wg.Add(1)
		go func(pageNum int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("extract: page %d extraction panicked: %v", pageNum, r)
				}
			}()
			page := reader.Page(pageNum)
			if page.V.IsNull() {
				return
			}
			content := page.Content()
			toks := make([]tabular.Token, 0, len(content.Text))
			for _, t := range content.Text {
				if strings.TrimSpace(t.S) == "" {
					continue
				}
				toks = append(toks, tabular.Token{
					Text:   t.S,
					X:      t.X,
					Y:      t.Y - float64(pageNum-1)*pageYOffset,
					Width:  t.W,
					Height: t.FontSize,
					Page:   pageNum,
				})
			}
			pageTokens[pageNum-1] = toks
		}(i)
	}
	wg.Wait()

	for _, toks := range pageTokens {
		tokens = append(tokens, toks...)
	}
	return tokens, nil
}

// ocrTooSparse reports whether an OCR pass produced too little text to
// bother with header classification.
func ocrTooSparse(text string, tokens []tabular.Token) bool {
	return len(strings.TrimSpace(text)) < minDigitalTextChars || len(tokens) == 0
}

func tokenTextLen(tokens []tabular.Token) int {
	n := 0
	for _, t := range tokens {
		n += len(strings.TrimSpace(t.Text))
	}
	return n
}
