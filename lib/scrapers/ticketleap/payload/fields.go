// Package payload builds the multipart bodies submitted to the ticketleap
// admin forms.
package payload

import (
	"strings"

	"github.com/go-resty/resty/v2"
)

type Field struct {
	Name  string
	Value string
}

// Fields is an ordered list of form fields. A name may appear more than once
// (multi-valued inputs like "dates").
type Fields struct {
	list []Field
}

func NewFields(fields ...Field) Fields {
	out := Fields{}
	for _, f := range fields {
		out.Add(f.Name, f.Value)
	}
	return out
}

func (f Fields) Len() int {
	return len(f.list)
}

func (f Fields) All() []Field {
	out := make([]Field, len(f.list))
	copy(out, f.list)
	return out
}

func (f Fields) Get(name string) (string, bool) {
	for _, field := range f.list {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

func (f Fields) Values(name string) []string {
	var out []string
	for _, field := range f.list {
		if field.Name == name {
			out = append(out, field.Value)
		}
	}
	return out
}

// Add appends a field, keeping any existing fields of the same name.
func (f *Fields) Add(name, value string) {
	f.list = append(f.list, Field{Name: name, Value: value})
}

// Set replaces the value of the first field called name in place and drops
// any later duplicates, or appends the field when it does not exist yet.
func (f *Fields) Set(name, value string) {
	found := false
	kept := f.list[:0]
	for _, field := range f.list {
		if field.Name != name {
			kept = append(kept, field)
			continue
		}
		if found {
			continue
		}
		found = true
		kept = append(kept, Field{Name: name, Value: value})
	}
	f.list = kept
	if !found {
		f.Add(name, value)
	}
}

func (f *Fields) Delete(name string) {
	kept := f.list[:0]
	for _, field := range f.list {
		if field.Name != name {
			kept = append(kept, field)
		}
	}
	f.list = kept
}

func (f *Fields) DeletePrefix(prefix string) {
	kept := f.list[:0]
	for _, field := range f.list {
		if !strings.HasPrefix(field.Name, prefix) {
			kept = append(kept, field)
		}
	}
	f.list = kept
}

// Merge sets every field of other onto f. Multi-valued names in other
// replace all existing values of that name.
func (f *Fields) Merge(other Fields) {
	seen := map[string]bool{}
	for _, field := range other.list {
		if seen[field.Name] {
			f.Add(field.Name, field.Value)
			continue
		}
		seen[field.Name] = true
		f.Set(field.Name, field.Value)
	}
}

func (f Fields) Clone() Fields {
	return Fields{list: f.All()}
}

// Build starts from base (scraped form state or a static template) and
// applies overrides by field name.
func Build(base, overrides Fields) Fields {
	out := base.Clone()
	out.Merge(overrides)
	return out
}

// Multipart encodes every field as a text part, the admin forms expect
// multipart/form-data even when no file is attached.
func (f Fields) Multipart() []*resty.MultipartField {
	parts := make([]*resty.MultipartField, len(f.list))
	for i, field := range f.list {
		parts[i] = &resty.MultipartField{
			Param:  field.Name,
			Reader: strings.NewReader(field.Value),
		}
	}
	return parts
}
