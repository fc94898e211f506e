package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"notable/internal/domain/models"
)

// docxExtractor renders the paragraphs of an OOXML word-processing document
// (word/document.xml) as simple HTML, one <p> per paragraph.
type docxExtractor struct {
	policy *bluemonday.Policy
}

func (e *docxExtractor) Extract(_ context.Context, _ *models.Media, payload []byte) (*models.Transcript, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	doc, err := readZipFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read docx body: %w", err)
	}

	paragraphs, err := docxParagraphs(doc)
	if err != nil {
		return nil, fmt.Errorf("parse docx body: %w", err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString("<p>")
		xml.EscapeText(&b, []byte(p))
		b.WriteString("</p>")
	}

	return &models.Transcript{Text: e.policy.Sanitize(b.String())}, nil
}

// docxParagraphs walks the document XML, collecting the text runs (w:t) of
// each paragraph (w:p).
func docxParagraphs(doc []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteString("\t")
				}
			case "br":
				if inPara {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara && strings.TrimSpace(current.String()) != "" {
					paragraphs = append(paragraphs, current.String())
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s missing from archive", name)
}
