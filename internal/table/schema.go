// internal/table/schema.go
package table

/*
 * Column schema for the tabular engine.
 *
 * A Schema names the fields a record exposes, their semantic kind and whether
 * the view may filter or sort on them. Only string fields are filterable;
 * a Filterable flag on a number field is ignored.
 *
 * Field order is significant: it is the column order for rendering and the
 * order in which active filter conditions are evaluated.
 */

// Kind is the semantic type of a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Field describes one column of a record.
type Field struct {
	Name       string // key passed to Record.Value
	Label      string // header text for rendering
	Kind       Kind
	Filterable bool
	Sortable   bool
}

// StringField returns a filterable, sortable string field.
func StringField(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindString, Filterable: true, Sortable: true}
}

// NumberField returns a sortable number field.
func NumberField(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindNumber, Sortable: true}
}

// CanFilter reports whether substring filters apply to this field.
func (f Field) CanFilter() bool {
	return f.Filterable && f.Kind == KindString
}

// Schema is an ordered, name-indexed set of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema. Later duplicates of a field name are dropped.
func NewSchema(fields ...Field) Schema {
	s := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := s.index[f.Name]; dup || f.Name == "" {
			continue
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns the fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FilterableFields returns the fields that accept a filter needle, in order.
func (s Schema) FilterableFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.CanFilter() {
			out = append(out, f)
		}
	}
	return out
}

// position returns the declaration index of a field, or -1.
func (s Schema) position(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}
