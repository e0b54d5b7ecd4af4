package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TagShape is the layout a tag document was stored in.
type TagShape int

const (
	// TagShapeNone means no tags were found or the layout was not recognized.
	TagShapeNone TagShape = iota
	// TagShapeList is a bare array: ["llm", "rag"]. Every entry is a detail tag.
	TagShapeList
	// TagShapeFlat is an object with "top" and/or "tags" arrays.
	TagShapeFlat
	// TagShapeNested wraps a flat object one level down: {"tags": {"top": [...], "tags": [...]}}.
	TagShapeNested
)

func (s TagShape) String() string {
	switch s {
	case TagShapeList:
		return "list"
	case TagShapeFlat:
		return "flat"
	case TagShapeNested:
		return "nested"
	default:
		return "none"
	}
}

// TagSet holds the two tag tiers of a paper, already normalized.
type TagSet struct {
	Top    []string // coarse categories, e.g. "llm"
	Detail []string // fine-grained tags, e.g. "retrieval augmented generation"
}

// EmptyTags returns a TagSet with non-nil empty tiers.
func EmptyTags() TagSet {
	return TagSet{Top: []string{}, Detail: []string{}}
}

// All returns the top tags followed by the detail tags. Duplicates are kept.
func (t TagSet) All() []string {
	all := make([]string, 0, len(t.Top)+len(t.Detail))
	all = append(all, t.Top...)
	return append(all, t.Detail...)
}

// ParseTags decodes a tag document in any of the supported layouts.
// On error the returned TagSet is empty and the shape is TagShapeNone.
func ParseTags(data []byte) (TagSet, TagShape, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return EmptyTags(), TagShapeNone, fmt.Errorf("decode tags: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		return TagSet{Top: []string{}, Detail: normalizeTagList(v)}, TagShapeList, nil

	case map[string]any:
		container, shape := v, TagShapeFlat
		if inner, ok := v["tags"].(map[string]any); ok {
			container, shape = inner, TagShapeNested
		}
		tags := EmptyTags()
		if top, ok := container["top"].([]any); ok {
			tags.Top = normalizeTagList(top)
		}
		if detail, ok := container["tags"].([]any); ok {
			tags.Detail = normalizeTagList(detail)
		}
		return tags, shape, nil

	default:
		return EmptyTags(), TagShapeNone, fmt.Errorf("%w: %T", ErrUnknownTagForm, raw)
	}
}

// NormalizeTag trims and lower-cases a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// normalizeTagList keeps scalar entries, normalizes them and drops blanks.
func normalizeTagList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}
		if s = NormalizeTag(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
