package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"taxdesk/internal/tabular"
)

const defaultOCRWorkers = 3

// pdfcpu names extracted images like "doc_page_3_Im0.png"; the first
// number group after "page" is the page number.
var imagePagePattern = regexp.MustCompile(`_(\d+)_`)

// pageImage is one rendered page ready for OCR.
type pageImage struct {
	path    string
	pageNum int
}

// pageResult holds one page's OCR output.
type pageResult struct {
	pageNum int
	tokens  []tabular.Token
	text    string
}

// extractScannedPDF renders page images with pdfcpu and runs Tesseract
// over them with a bounded worker pool. Token Y coordinates are negated
// and page-shifted so image space (top-left origin, Y down) matches the
// bottom-up ordering the row clusterer expects.
func (e *Extractor) extractScannedPDF(ctx context.Context, data []byte) ([]tabular.Token, string, error) {
	images, cleanup, err := renderPageImages(data)
	if err != nil {
		return nil, "", err
	}
	defer cleanup()

	if len(images) == 0 {
		return nil, "", fmt.Errorf("no page images extracted")
	}

	maxWorkers := e.ocrCfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultOCRWorkers
	}
	workers := len(images)
	if workers > maxWorkers {
		workers = maxWorkers
	}

	jobs := make(chan pageImage)
	results := make(chan pageResult, len(images))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := gosseract.NewClient()
			defer client.Close()
			if e.ocrCfg.TessdataPrefix != "" {
				client.SetTessdataPrefix(e.ocrCfg.TessdataPrefix)
			}
			lang := e.ocrCfg.Language
			if lang == "" {
				lang = "eng"
			}
			if err := client.SetLanguage(lang); err != nil {
				log.Printf("extract: failed to set ocr language %q: %v", lang, err)
				return
			}
			for img := range jobs {
				res, err := ocrPage(client, img)
				if err != nil {
					log.Printf("extract: ocr failed for page %d: %v", img.pageNum, err)
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, img := range images {
			select {
			case jobs <- img:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	var pages []pageResult
	for res := range results {
		pages = append(pages, res)
	}
	if len(pages) == 0 {
		return nil, "", fmt.Errorf("ocr produced no output for %d pages", len(images))
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].pageNum < pages[j].pageNum })

	var tokens []tabular.Token
	var texts []string
	for _, p := range pages {
		tokens = append(tokens, p.tokens...)
		if t := strings.TrimSpace(p.text); t != "" {
			texts = append(texts, t)
		}
	}
	return tokens, strings.Join(texts, "\n\n"), nil
}

// ocrPage runs word-level OCR over one page image.
func ocrPage(client *gosseract.Client, img pageImage) (pageResult, error) {
	if err := client.SetImage(img.path); err != nil {
		return pageResult{}, fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return pageResult{}, fmt.Errorf("reading text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return pageResult{}, fmt.Errorf("reading bounding boxes: %w", err)
	}

	tokens := make([]tabular.Token, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		height := float64(box.Box.Dy())
		if height <= 0 {
			height = 12
		}
		tokens = append(tokens, tabular.Token{
			Text:   word,
			X:      float64(box.Box.Min.X),
			Y:      -float64(box.Box.Min.Y) - float64(img.pageNum)*pageYOffset,
			Width:  float64(box.Box.Dx()),
			Height: height,
			Page:   img.pageNum,
		})
	}
	return pageResult{pageNum: img.pageNum, tokens: tokens, text: text}, nil
}

// renderPageImages writes the PDF to a temp file and extracts its page
// images into a temp directory. The returned cleanup removes both.
func renderPageImages(data []byte) ([]pageImage, func(), error) {
	tempDir, err := os.MkdirTemp("", "taxdesk-ocr")
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp dir: %w", err)
	}

	tempFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, nil, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() {
		os.RemoveAll(tempDir)
		os.Remove(tempFile.Name())
	}

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		cleanup()
		return nil, nil, fmt.Errorf("writing temp pdf: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("extracting page images: %w", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("reading temp dir: %w", err)
	}

	var images []pageImage
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		images = append(images, pageImage{
			path:    filepath.Join(tempDir, entry.Name()),
			pageNum: pageNumberFromFilename(entry.Name()),
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].pageNum < images[j].pageNum })
	return images, cleanup, nil
}

func pageNumberFromFilename(name string) int {
	m := imagePagePattern.FindStringSubmatch(name)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
