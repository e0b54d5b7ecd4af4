package search

import (
	"fmt"
	"strings"
)

// Field is a searchable document field.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// AllFields returns every searchable field in scoring order.
func AllFields() []Field {
	return []Field{FieldTitle, FieldContent, FieldTags}
}

// Search type presets accepted by Query.
const (
	SearchTypeAll     = "all"
	SearchTypeContent = "content"
	SearchTypeTags    = "tags"
)

// FieldsForSearchType maps a preset to its fields. Unknown presets search everything.
func FieldsForSearchType(searchType string) []Field {
	switch strings.TrimSpace(searchType) {
	case SearchTypeContent:
		return []Field{FieldTitle, FieldContent}
	case SearchTypeTags:
		return []Field{FieldTags}
	default:
		return AllFields()
	}
}

// ParseFields converts field names. Names are matched case-insensitively and
// blanks are ignored.
func ParseFields(names []string) ([]Field, error) {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch f := Field(name); f {
		case FieldTitle, FieldContent, FieldTags:
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	return fields, nil
}

// fieldSet records which fields a query scores. An empty selection means all.
type fieldSet struct {
	title, content, tags bool
}

func newFieldSet(fields []Field) fieldSet {
	if len(fields) == 0 {
		return fieldSet{title: true, content: true, tags: true}
	}
	var fs fieldSet
	for _, f := range fields {
		switch f {
		case FieldTitle:
			fs.title = true
		case FieldContent:
			fs.content = true
		case FieldTags:
			fs.tags = true
		}
	}
	return fs
}
