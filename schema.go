package catalogsearch

import (
	"fmt"
	"reflect"
)

const tagKey = "catalog"

// Field roles accepted in `catalog:"..."` struct tags.
const (
	roleID       = "id"
	roleTitle    = "title"
	roleGenre    = "genre"
	roleSynopsis = "synopsis"
	roleArtwork  = "artwork"
)

// schemaMeta maps struct fields to item roles, parsed once per TypedIndex.
type schemaMeta struct {
	typ   reflect.Type
	roles map[string]int // role -> struct field index
}

// parseSchema reflects on T and extracts catalog struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("catalogsearch: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("catalogsearch: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, roles: make(map[string]int)}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("catalogsearch: field %s is not exported", f.Name)
		}
		switch tag {
		case roleID, roleTitle, roleGenre, roleSynopsis, roleArtwork:
		default:
			return nil, fmt.Errorf("catalogsearch: unknown role %q on field %s", tag, f.Name)
		}
		if _, dup := meta.roles[tag]; dup {
			return nil, fmt.Errorf("catalogsearch: duplicate %s tag on field %s", tag, f.Name)
		}
		meta.roles[tag] = i
	}

	if _, ok := meta.roles[roleID]; !ok {
		return nil, fmt.Errorf("catalogsearch: no field with `catalog:\"id\"` tag in %s", t)
	}
	if _, ok := meta.roles[roleTitle]; !ok {
		return nil, fmt.Errorf("catalogsearch: no field with `catalog:\"title\"` tag in %s", t)
	}
	return meta, nil
}

// toItem converts a struct value to an Item. Nil pointers become empty items.
func (m *schemaMeta) toItem(v reflect.Value) Item {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return Item{}
		}
		v = v.Elem()
	}
	return Item{
		ID:       m.field(v, roleID),
		Title:    m.field(v, roleTitle),
		Genre:    m.field(v, roleGenre),
		Synopsis: m.field(v, roleSynopsis),
		Artwork:  m.field(v, roleArtwork),
	}
}

// field renders the struct field for role as text; missing roles are "".
func (m *schemaMeta) field(v reflect.Value, role string) string {
	idx, ok := m.roles[role]
	if !ok {
		return ""
	}
	f := v.Field(idx)
	switch f.Kind() {
	case reflect.String:
		return f.String()
	case reflect.Pointer, reflect.Interface:
		if f.IsNil() {
			return ""
		}
		return fmt.Sprint(f.Elem().Interface())
	default:
		return fmt.Sprint(f.Interface())
	}
}
