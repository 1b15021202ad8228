// Package source decodes catalog snapshot documents shared by the file and
// remote sources.
//
// A document is either a bare list of items or a mapping with an "items"
// list and an optional "version". Each item is a mapping; id, title, genre,
// synopsis and artwork are recognized, any other scalar field is kept as an
// extra. Integer ids are normalized to their decimal form. Field values that
// are not scalars degrade to the empty string.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// Format is a snapshot document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported catalog file extension %q", domain.ErrInvalidArgument, filepath.Ext(path))
	}
}

// Parse decodes data and builds a validated snapshot stamped with fetchedAt.
func Parse(data []byte, format Format, fetchedAt time.Time) (catalog.Snapshot, error) {
	doc, err := decode(data, format)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, err)
	}

	records, version, err := unwrap(doc)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, err)
	}

	items := make([]catalog.Item, 0, len(records))
	for i, rec := range records {
		m, ok := rec.(map[string]any)
		if !ok {
			return catalog.Snapshot{}, domain.NewSnapshotError(i, "", "item is not a mapping")
		}
		items = append(items, toItem(m))
	}

	return catalog.NewSnapshot(items, version, fetchedAt)
}

func decode(data []byte, format Format) (any, error) {
	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return doc, nil
}

// unwrap returns the item list and the document version, if any.
func unwrap(doc any) ([]any, string, error) {
	switch v := doc.(type) {
	case nil:
		return nil, "", nil
	case []any:
		return v, "", nil
	case map[string]any:
		version, _ := scalarString(v["version"])
		raw, ok := v["items"]
		if !ok || raw == nil {
			return nil, version, nil
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, "", fmt.Errorf("items must be a list, got %T", raw)
		}
		return list, version, nil
	default:
		return nil, "", fmt.Errorf("document must be a list or a mapping, got %T", doc)
	}
}

func toItem(m map[string]any) catalog.Item {
	var extra map[string]string
	for k, v := range m {
		switch k {
		case "id", "title", "genre", "synopsis", "artwork":
			continue
		}
		s, ok := scalarString(v)
		if !ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = s
	}
	field := func(name string) string {
		s, _ := scalarString(m[name])
		return s
	}
	return catalog.Reconstruct(
		field("id"), field("title"), field("genre"), field("synopsis"), field("artwork"), extra,
	)
}

// scalarString renders a decoded scalar as text. Collections report false.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	default:
		return "", false
	}
}
