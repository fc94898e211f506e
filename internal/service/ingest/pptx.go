package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"notable/internal/domain/models"
)

// pptxExtractor produces one labeled section per slide of an OOXML
// presentation, in deck order.
type pptxExtractor struct {
	policy *bluemonday.Policy
}

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func (e *pptxExtractor) Extract(_ context.Context, _ *models.Media, payload []byte) (*models.Transcript, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}

	type slide struct {
		number int
		file   *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: n, file: f})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides in archive")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	sections := make([]models.Section, 0, len(slides))
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return nil, fmt.Errorf("open slide %d: %w", s.number, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read slide %d: %w", s.number, err)
		}

		text, err := slideText(raw)
		if err != nil {
			return nil, fmt.Errorf("parse slide %d: %w", s.number, err)
		}

		sections = append(sections, models.Section{
			Label: fmt.Sprintf("Slide %d", s.number),
			Text:  e.policy.Sanitize(text),
		})
	}

	return &models.Transcript{Sections: sections}, nil
}

// slideText joins the slide's text runs (a:t elements), one line per run.
func slideText(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var (
		lines  []string
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText && len(bytes.TrimSpace(t)) > 0 {
				lines = append(lines, string(t))
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
