// Package parser turns raw response bodies into typed values.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var (
	// ErrNoParser is returned by the default parser.
	ErrNoParser = errors.New("parser: no response parser configured")
	// ErrNullValue is returned when a body decodes to nothing usable.
	ErrNullValue = errors.New("parser: response decoded to a null value")
)

// Parser converts a raw response body into a value of type T.
type Parser[T any] interface {
	Parse(raw string) (T, error)
}

// Func adapts a plain function to Parser.
type Func[T any] func(raw string) (T, error)

func (f Func[T]) Parse(raw string) (T, error) { return f(raw) }

type defaultParser[T any] struct{}

// Default returns the parser used when none is configured. It always fails.
func Default[T any]() Parser[T] { return defaultParser[T]{} }

func (defaultParser[T]) Parse(string) (T, error) {
	var zero T
	return zero, ErrNoParser
}

type jsonParser[T any] struct{}

// JSON decodes the whole body into T.
func JSON[T any]() Parser[T] { return jsonParser[T]{} }

func (jsonParser[T]) Parse(raw string) (T, error) {
	var out T
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return out, ErrNullValue
	}
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return out, fmt.Errorf("decode json response: %w", err)
	}
	return out, nil
}

type pathParser[T any] struct {
	path string
}

// Path decodes the sub-document at a gjson path into T, e.g. "data.items".
func Path[T any](path string) Parser[T] { return pathParser[T]{path: strings.TrimSpace(path)} }

func (p pathParser[T]) Parse(raw string) (T, error) {
	var out T
	if !gjson.Valid(raw) {
		return out, fmt.Errorf("decode json response: invalid json")
	}
	res := gjson.Get(raw, p.path)
	if !res.Exists() || res.Type == gjson.Null {
		return out, fmt.Errorf("path %q: %w", p.path, ErrNullValue)
	}
	if err := json.Unmarshal([]byte(res.Raw), &out); err != nil {
		return out, fmt.Errorf("decode json path %q: %w", p.path, err)
	}
	return out, nil
}

// Text passes the body through unchanged.
func Text() Parser[string] {
	return Func[string](func(raw string) (string, error) { return raw, nil })
}

type selectorParser struct {
	selector string
}

// Selector extracts the trimmed text of every element matching a CSS selector
// from an HTML body.
func Selector(selector string) Parser[[]string] {
	return selectorParser{selector: selector}
}

func (s selectorParser) Parse(raw string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []string
	doc.Find(s.selector).Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			out = append(out, text)
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("selector %q: %w", s.selector, ErrNullValue)
	}
	return out, nil
}
