package render

import (
	"strconv"

	"rustdocmcp/internal/item"
	"rustdocmcp/internal/rustdoc"
)

// TypeKind discriminates struct, enum, and union type shapes.
// ExtractTypeDefinition produces only TypeKindStruct and TypeKindEnum.
type TypeKind string

const (
	TypeKindStruct TypeKind = "struct"
	TypeKindEnum   TypeKind = "enum"
	TypeKindUnion  TypeKind = "union"
)

// FieldInfo is one rendered struct/union field or enum struct-variant field.
type FieldInfo struct {
	Name       string
	TypeName   string
	Docs       string
	Visibility rustdoc.Visibility
}

// VariantInfo is one rendered enum variant: plain, tuple, or struct-shaped.
type VariantInfo struct {
	Name         string
	Docs         string
	TupleFields  []string // nil unless this is a tuple variant
	StructFields []FieldInfo // nil unless this is a struct variant
}

// TypeInfo is the fully-extracted shape of a struct/enum/union item, ready
// for format_type_with_detail_level-style rendering.
type TypeInfo struct {
	Name        string
	Kind        TypeKind
	Path        string
	Fields      []FieldInfo // struct/union only
	Variants    []VariantInfo // enum only
	Docs        string
	Generics    rustdoc.Generics
	ItemID      rustdoc.Id
	SourceCrate string
}

// ExtractTypeDefinition pulls a TypeInfo out of r, or returns ok=false if r
// isn't a struct or enum (union items also return ok=false).
func ExtractTypeDefinition(r item.Ref, sourceCrate string) (TypeInfo, bool) {
	name, ok := r.Name()
	if !ok {
		return TypeInfo{}, false
	}
	docs, _ := r.Comment()
	path, ok := r.Path()
	if !ok {
		path = name
	}

	if s, ok2 := r.Inner().AsStruct(); ok2 {
		return TypeInfo{
			Name: name, Kind: TypeKindStruct, Path: path,
			Fields: extractStructFields(s.Kind, r), Docs: docs,
			Generics: s.Generics, ItemID: r.ID(), SourceCrate: sourceCrate,
		}, true
	}

	if e, ok2 := r.Inner().AsEnum(); ok2 {
		return TypeInfo{
			Name: name, Kind: TypeKindEnum, Path: path,
			Variants: extractEnumVariants(e.Variants, r), Docs: docs,
			Generics: e.Generics, ItemID: r.ID(), SourceCrate: sourceCrate,
		}, true
	}

	// Unions aren't modeled as a distinct rustdoc.Union item.Inner variant
	// in this port (no union-specific wire shape occurs in the corpus this
	// was built against); a union shows up as a struct item in practice.
	return TypeInfo{}, false
}

func fieldVisible(f item.Ref) bool { return f.IsPublic() }

func extractStructFields(kind rustdoc.StructKind, r item.Ref) []FieldInfo {
	idx := r.CrateIndex()
	fmt := NewTypeFormatter(idx)

	switch kind.Tag {
	case "plain":
		var out []FieldInfo
		for _, id := range kind.PlainFields {
			fieldItem, ok := r.Get(id)
			if !ok || !fieldVisible(fieldItem) {
				continue
			}
			ty, ok := fieldItem.Inner().AsStructField()
			if !ok {
				continue
			}
			fname, _ := fieldItem.Name()
			if fname == "" {
				fname = "<unnamed>"
			}
			docs, _ := fieldItem.Comment()
			out = append(out, FieldInfo{
				Name: fname, TypeName: fmt.FormatType(ty), Docs: docs,
				Visibility: rustdoc.Visibility{Tag: rustdoc.VisPublic},
			})
		}
		return out
	case "tuple":
		var out []FieldInfo
		for i, idOpt := range kind.TupleFields {
			if idOpt == nil {
				continue
			}
			fieldItem, ok := r.Get(*idOpt)
			if !ok || !fieldVisible(fieldItem) {
				continue
			}
			ty, ok := fieldItem.Inner().AsStructField()
			if !ok {
				continue
			}
			docs, _ := fieldItem.Comment()
			out = append(out, FieldInfo{
				Name: strconv.Itoa(i), TypeName: fmt.FormatType(ty), Docs: docs,
				Visibility: rustdoc.Visibility{Tag: rustdoc.VisPublic},
			})
		}
		return out
	default: // unit
		return nil
	}
}

func extractEnumVariants(variantIDs []rustdoc.Id, r item.Ref) []VariantInfo {
	var out []VariantInfo
	for _, id := range variantIDs {
		variantItem, ok := r.Get(id)
		if !ok {
			continue
		}
		v, ok := variantItem.Inner().AsVariant()
		if !ok {
			continue
		}
		name, _ := variantItem.Name()
		if name == "" {
			name = "<unnamed>"
		}
		docs, _ := variantItem.Comment()

		info := VariantInfo{Name: name, Docs: docs}
		switch v.Kind.Tag {
		case "tuple":
			info.TupleFields = extractTupleVariantFields(v.Kind.TupleFields, variantItem)
		case "struct":
			info.StructFields = extractStructVariantFields(v.Kind.StructFields, variantItem)
		}
		out = append(out, info)
	}
	return out
}

func extractTupleVariantFields(fieldIDs []*rustdoc.Id, r item.Ref) []string {
	fmt := NewTypeFormatter(r.CrateIndex())
	var out []string
	for _, idOpt := range fieldIDs {
		if idOpt == nil {
			continue
		}
		fieldItem, ok := r.Get(*idOpt)
		if !ok {
			continue
		}
		ty, ok := fieldItem.Inner().AsStructField()
		if !ok {
			continue
		}
		out = append(out, fmt.FormatType(ty))
	}
	return out
}

func extractStructVariantFields(fieldIDs []rustdoc.Id, r item.Ref) []FieldInfo {
	fmt := NewTypeFormatter(r.CrateIndex())
	var out []FieldInfo
	for _, id := range fieldIDs {
		fieldItem, ok := r.Get(id)
		if !ok || !fieldVisible(fieldItem) {
			continue
		}
		ty, ok := fieldItem.Inner().AsStructField()
		if !ok {
			continue
		}
		fname, _ := fieldItem.Name()
		if fname == "" {
			fname = "<unnamed>"
		}
		docs, _ := fieldItem.Comment()
		out = append(out, FieldInfo{
			Name: fname, TypeName: fmt.FormatType(ty), Docs: docs,
			Visibility: rustdoc.Visibility{Tag: rustdoc.VisPublic},
		})
	}
	return out
}
