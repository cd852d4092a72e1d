package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html/charset"
)

// locExpr matches <loc> elements under any namespace prefix, in document order.
var locExpr = xpath.MustCompile("//*[local-name()='loc']")

var (
	errNoRoot          = errors.New("no root element")
	errMultipleRoots   = errors.New("more than one root element")
	errTextOutsideRoot = errors.New("text outside the root element")
)

// ParseError indicates the sitemap body is not a well-formed XML document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sitemap parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extract returns the text of every <loc> element that carries non-empty
// text, in document order. Text is whitespace-trimmed, so a <loc> holding
// only whitespace is skipped and not counted. A well-formed document without
// <loc> elements yields an empty slice and no error.
func Extract(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := checkStructure(b); err != nil {
		return nil, &ParseError{Err: err}
	}
	doc, err := xmlquery.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	nodes := xmlquery.QuerySelectorAll(doc, locExpr)
	urls := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text := strings.TrimSpace(n.InnerText())
		if text == "" {
			continue
		}
		urls = append(urls, text)
	}
	return urls, nil
}

// checkStructure requires exactly one root element and nothing but
// whitespace around it. xmlquery builds a tree for several top-level
// elements or stray text without complaint.
func checkStructure(b []byte) error {
	d := xml.NewDecoder(bytes.NewReader(b))
	d.CharsetReader = charset.NewReaderLabel
	depth, roots := 0, 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if roots++; roots > 1 {
					return errMultipleRoots
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return errTextOutsideRoot
			}
		}
	}
	if roots == 0 {
		return errNoRoot
	}
	return nil
}
