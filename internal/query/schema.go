// Package query turns list request parameters into filtered, sorted and paginated
// storage queries.
package query

type FieldType int

const (
	String FieldType = iota
	Int
	Time
)

type Field struct {
	Column string
	Type   FieldType
}

// Schema is the allow-list of fields a resource can be filtered, selected and sorted by.
// Keys are the json names clients use.
type Schema struct {
	Fields map[string]Field
	// Always lists columns fetched even when the client narrows "select".
	Always []string
	// DefaultSort is used when the request has no "sort", e.g. "-createdAt".
	DefaultSort string
}

func (s *Schema) field(name string) (Field, bool) {
	f, ok := s.Fields[name]
	return f, ok
}
