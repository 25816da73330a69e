package smugmug

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoJSON is returned when a response contains no JSON document.
var ErrNoJSON = errors.New("no JSON document in response")

// extractJSON pulls the JSON document out of an API response.
//
// The API browser wraps its JSON in an HTML page:
//
//	<html>...<pre>{"Response": {...}}</pre>...</html>
//
// The text of the last <pre> element is the document; goquery decodes the
// HTML entities inside it. A body that already is a bare JSON object is
// returned as-is.
func extractJSON(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return trimmed, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse API page: %w", err)
	}

	pre := doc.Find("pre").Last()
	if pre.Length() == 0 {
		return nil, ErrNoJSON
	}

	return []byte(pre.Text()), nil
}
