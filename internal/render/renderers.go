package render

import (
	stdfmt "fmt"
	"strings"

	"rustdocmcp/internal/item"
	"rustdocmcp/internal/rustdoc"
)

// RenderStruct renders a struct item: its signature at every detail level,
// a doc summary at medium/high, and its public fields at high.
func RenderStruct(r item.Ref, s rustdoc.Struct, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := nameOr(r)
	path := pathOr(r, name)
	fmt := NewTypeFormatter(r.CrateIndex())

	out.WriteString("struct ")
	out.WriteString(name)
	fmt.WriteGenerics(&out, s.Generics)
	fmt.WriteWhereClause(&out, s.Generics.WherePredicates, 7+len(name))
	out.WriteString(" {\n")
	stdfmt.Fprintf(&out, "  // in %s\n", locationLine(crateName, path))
	out.WriteString("}\n")

	writeSummaryIfDetailed(&out, r, detail)

	if detail == DetailHigh {
		out.WriteString("\nFields:\n")
		switch s.Kind.Tag {
		case "plain":
			for _, id := range s.Kind.PlainFields {
				writeFieldLine(&out, r, id, fmt)
			}
		case "tuple":
			for i, idOpt := range s.Kind.TupleFields {
				if idOpt == nil {
					continue
				}
				writeIndexedFieldLine(&out, r, i, *idOpt, fmt)
			}
		default: // unit
			out.WriteString("  (unit struct)\n")
		}
	}

	return out.String()
}

// RenderEnum renders an enum item: signature, doc summary, and at high
// detail every variant's shape.
func RenderEnum(r item.Ref, e rustdoc.Enum, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := nameOr(r)
	path := pathOr(r, name)
	fmt := NewTypeFormatter(r.CrateIndex())

	out.WriteString("enum ")
	out.WriteString(name)
	fmt.WriteGenerics(&out, e.Generics)
	fmt.WriteWhereClause(&out, e.Generics.WherePredicates, 5+len(name))
	out.WriteString(" {\n")
	stdfmt.Fprintf(&out, "  // in %s\n", locationLine(crateName, path))
	out.WriteString("}\n")

	writeSummaryIfDetailed(&out, r, detail)

	if detail == DetailHigh {
		out.WriteString("\nVariants:\n")
		for _, variantID := range e.Variants {
			variantItem, ok := r.Get(variantID)
			if !ok {
				continue
			}
			v, ok := variantItem.Inner().AsVariant()
			if !ok {
				continue
			}
			writeVariantLine(&out, variantItem, v, fmt)
		}
	}

	return out.String()
}

func writeVariantLine(out *strings.Builder, variantItem item.Ref, v rustdoc.Variant, fmt TypeFormatter) {
	name := nameOr(variantItem)
	switch v.Kind.Tag {
	case "tuple":
		stdfmt.Fprintf(out, "  %s(", name)
		first := true
		for _, idOpt := range v.Kind.TupleFields {
			if idOpt == nil {
				continue
			}
			fieldItem, ok := variantItem.Get(*idOpt)
			if !ok {
				continue
			}
			ty, ok := fieldItem.Inner().AsStructField()
			if !ok {
				continue
			}
			if !first {
				out.WriteString(", ")
			}
			first = false
			out.WriteString(fmt.FormatType(ty))
		}
		out.WriteString("),\n")
	case "struct":
		stdfmt.Fprintf(out, "  %s {\n", name)
		for _, fieldID := range v.Kind.StructFields {
			fieldItem, ok := variantItem.Get(fieldID)
			if !ok {
				continue
			}
			ty, ok := fieldItem.Inner().AsStructField()
			if !ok {
				continue
			}
			stdfmt.Fprintf(out, "    %s: %s,\n", nameOr(fieldItem), fmt.FormatType(ty))
		}
		out.WriteString("  },\n")
	default: // plain
		stdfmt.Fprintf(out, "  %s,\n", name)
	}
}

// RenderFunction renders a free function or method's signature, plus a doc
// summary at medium/high.
func RenderFunction(r item.Ref, detail DetailLevel, crateName string) string {
	var out strings.Builder
	path := pathOr(r, nameOr(r))
	fmt := NewTypeFormatter(r.CrateIndex())

	fmt.WriteFunctionSignature(&out, r)
	out.WriteByte('\n')
	stdfmt.Fprintf(&out, "// in %s\n", locationLine(crateName, path))

	writeSummaryIfDetailed(&out, r, detail)
	return out.String()
}

// RenderTrait renders a trait item: signature with supertraits, doc
// summary, and at high detail every method's signature.
func RenderTrait(r item.Ref, t rustdoc.Trait, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := nameOr(r)
	path := pathOr(r, name)
	fmt := NewTypeFormatter(r.CrateIndex())

	out.WriteString("trait ")
	out.WriteString(name)
	fmt.WriteGenerics(&out, t.Generics)
	supertraitLen := 6 + len(name)
	fmt.WriteSupertraitBounds(&out, t.Bounds, supertraitLen)
	fmt.WriteWhereClause(&out, t.Generics.WherePredicates, supertraitLen)
	out.WriteString(" {\n")
	stdfmt.Fprintf(&out, "  // in %s\n", locationLine(crateName, path))
	out.WriteString("}\n")

	writeSummaryIfDetailed(&out, r, detail)

	if detail == DetailHigh {
		out.WriteString("\nMethods:\n")
		for _, id := range t.Items {
			methodItem, ok := r.Get(id)
			if !ok || methodItem.Kind() != rustdoc.KindFunction {
				continue
			}
			out.WriteString("  ")
			fmt.WriteFunctionSignature(&out, methodItem)
			out.WriteByte('\n')
		}
	}

	return out.String()
}

// categoryOrder lists the item kinds a module render groups children into,
// in display order, matching the original's CATEGORY_ORDER table.
var categoryOrder = []struct {
	kind  rustdoc.ItemKind
	label string
}{
	{rustdoc.KindModule, "Modules"},
	{rustdoc.KindStruct, "Structs"},
	{rustdoc.KindEnum, "Enums"},
	{rustdoc.KindTrait, "Traits"},
	{rustdoc.KindUnion, "Unions"},
	{rustdoc.KindTypeAlias, "Type Aliases"},
	{rustdoc.KindFunction, "Functions"},
	{rustdoc.KindConstant, "Constants"},
	{rustdoc.KindStatic, "Statics"},
	{rustdoc.KindMacro, "Macros"},
}

// RenderModule renders a module item: its path, doc summary, and its
// children grouped by kind, with per-kind detail scaling with detail and a
// "... and N more" line once a category's item limit is hit.
func RenderModule(r item.Ref, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := r.Item().NameOr(crateName)
	path := pathOr(r, name)

	stdfmt.Fprintf(&out, "module %s\n", name)
	stdfmt.Fprintf(&out, "// in %s\n", locationLine(crateName, path))

	writeSummaryIfDetailed(&out, r, detail)

	limit := itemLimit(detail)
	groups := make(map[rustdoc.ItemKind][]item.Ref)
	for _, child := range r.ChildRefs(false) {
		groups[child.Kind()] = append(groups[child.Kind()], child)
	}

	for _, cat := range categoryOrder {
		items := groups[cat.kind]
		if len(items) == 0 {
			continue
		}
		stdfmt.Fprintf(&out, "\n%s:\n", cat.label)
		shown := len(items)
		if shown > limit {
			shown = limit
		}
		for _, child := range items[:shown] {
			writeModuleChildLine(&out, child, detail)
		}
		if len(items) > shown {
			stdfmt.Fprintf(&out, "  ... and %d more\n", len(items)-shown)
		}
	}

	return out.String()
}

func writeModuleChildLine(out *strings.Builder, child item.Ref, detail DetailLevel) {
	childName := nameOr(child)
	switch detail {
	case DetailLow:
		stdfmt.Fprintf(out, "  %s\n", childName)
	case DetailMedium:
		stdfmt.Fprintf(out, "  %s", childName)
		if doc, ok := firstDocLine(child); ok {
			out.WriteString(" // ")
			out.WriteString(doc)
		}
		out.WriteByte('\n')
	default: // high
		if sig, ok := RenderItemSignature(child); ok {
			stdfmt.Fprintf(out, "  %s\n", sig)
		} else {
			stdfmt.Fprintf(out, "  %s\n", childName)
		}
		if doc, ok := firstDocLine(child); ok {
			out.WriteString("    // ")
			out.WriteString(doc)
			out.WriteByte('\n')
		}
	}
}

// firstDocLine returns r's doc comment's first trimmed line, or ok=false if
// it has no doc comment or that line is blank.
func firstDocLine(r item.Ref) (string, bool) {
	docs, ok := r.Comment()
	if !ok {
		return "", false
	}
	first, _, _ := strings.Cut(docs, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false
	}
	return first, true
}

// RenderTypeAlias renders a `type Foo<T> = ...;` item.
func RenderTypeAlias(r item.Ref, ta rustdoc.TypeAlias, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := nameOr(r)
	path := pathOr(r, name)
	fmt := NewTypeFormatter(r.CrateIndex())

	stdfmt.Fprintf(&out, "type %s", name)
	fmt.WriteGenerics(&out, ta.Generics)
	out.WriteString(" = ")
	out.WriteString(fmt.FormatType(ta.Type))
	out.WriteString(";\n")
	stdfmt.Fprintf(&out, "// in %s\n", locationLine(crateName, path))

	writeSummaryIfDetailed(&out, r, detail)
	return out.String()
}

// RenderConstant renders a `const FOO: T;` item.
func RenderConstant(r item.Ref, ty rustdoc.Type, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := nameOr(r)
	path := pathOr(r, name)
	fmt := NewTypeFormatter(r.CrateIndex())

	stdfmt.Fprintf(&out, "const %s: %s;\n", name, fmt.FormatType(ty))
	stdfmt.Fprintf(&out, "// in %s\n", locationLine(crateName, path))

	writeSummaryIfDetailed(&out, r, detail)
	return out.String()
}

// RenderStatic renders a `static FOO: T;` (or `static mut`) item.
func RenderStatic(r item.Ref, s rustdoc.Static, detail DetailLevel, crateName string) string {
	var out strings.Builder
	name := nameOr(r)
	path := pathOr(r, name)
	fmt := NewTypeFormatter(r.CrateIndex())

	mut := ""
	if s.IsMutable {
		mut = "mut "
	}
	stdfmt.Fprintf(&out, "static %s%s: %s;\n", mut, name, fmt.FormatType(s.Type))
	stdfmt.Fprintf(&out, "// in %s\n", locationLine(crateName, path))

	writeSummaryIfDetailed(&out, r, detail)
	return out.String()
}

// RenderItemSignature produces a bare one-line signature for r, used when
// listing a module's children at high detail. Returns ok=false for item
// kinds with no concise signature form (fields, variants, impls, ...).
func RenderItemSignature(r item.Ref) (string, bool) {
	name, ok := r.Name()
	if !ok {
		return "", false
	}
	fmt := NewTypeFormatter(r.CrateIndex())
	var s strings.Builder

	switch inner := r.Inner(); inner.Kind {
	case rustdoc.KindFunction:
		if !fmt.WriteFunctionSignature(&s, r) {
			return "", false
		}
	case rustdoc.KindStruct:
		st, _ := inner.AsStruct()
		s.WriteString("struct " + name)
		fmt.WriteGenerics(&s, st.Generics)
	case rustdoc.KindEnum:
		e, _ := inner.AsEnum()
		s.WriteString("enum " + name)
		fmt.WriteGenerics(&s, e.Generics)
	case rustdoc.KindTrait:
		t, _ := inner.AsTrait()
		s.WriteString("trait " + name)
		fmt.WriteGenerics(&s, t.Generics)
		fmt.WriteSupertraitBounds(&s, t.Bounds, 6+len(name))
	case rustdoc.KindTypeAlias:
		ta, _ := inner.AsTypeAlias()
		s.WriteString("type " + name)
		fmt.WriteGenerics(&s, ta.Generics)
		s.WriteString(" = ")
		s.WriteString(fmt.FormatType(ta.Type))
	case rustdoc.KindConstant:
		c, _ := inner.AsConstant()
		s.WriteString("const " + name + ": ")
		s.WriteString(fmt.FormatType(c.Type))
	case rustdoc.KindStatic:
		st, _ := inner.AsStatic()
		mut := ""
		if st.IsMutable {
			mut = "mut "
		}
		s.WriteString("static " + mut + name + ": ")
		s.WriteString(fmt.FormatType(st.Type))
	case rustdoc.KindModule:
		s.WriteString("mod " + name)
	case rustdoc.KindMacro:
		s.WriteString("macro " + name)
	default:
		return "", false
	}
	return s.String(), true
}

// extractSummary returns docs' first paragraph (up to the first blank
// line), trimmed - used to keep Medium/High renders from dumping an
// entire doc comment inline.
func extractSummary(docs string) string {
	first, _, _ := strings.Cut(docs, "\n\n")
	return strings.TrimSpace(first)
}

func writeSummaryIfDetailed(out *strings.Builder, r item.Ref, detail DetailLevel) {
	if detail != DetailMedium && detail != DetailHigh {
		return
	}
	docs, ok := r.Comment()
	if !ok {
		return
	}
	stdfmt.Fprintf(out, "\n%s\n", extractSummary(docs))
}

func nameOr(r item.Ref) string {
	if n, ok := r.Name(); ok {
		return n
	}
	return "<unnamed>"
}

// pathOr renders r's module path relative to its crate, dropping the
// leading crate-name segment rustdoc's path summary always carries. Returns
// "" for the crate root itself (whose summary path is just the crate name),
// so locationLine doesn't print it twice.
func pathOr(r item.Ref, fallback string) string {
	segs, ok := r.CrateIndex().PathSegments(r.ID())
	if !ok {
		return fallback
	}
	if len(segs) <= 1 {
		return ""
	}
	return strings.Join(segs[1:], "::")
}

// locationLine joins a crate name and an item's crate-relative path into
// the "in crate::path" comment renderers attach after a signature,
// collapsing to just the crate name when path is empty (the crate root).
func locationLine(crateName, path string) string {
	if path == "" {
		return crateName
	}
	return crateName + "::" + path
}

// writeFieldLine writes one plain-struct-field line at high detail,
// skipping non-public fields entirely.
func writeFieldLine(out *strings.Builder, r item.Ref, id rustdoc.Id, f TypeFormatter) {
	fieldItem, ok := r.Get(id)
	if !ok || !fieldItem.IsPublic() {
		return
	}
	ty, ok := fieldItem.Inner().AsStructField()
	if !ok {
		return
	}
	stdfmt.Fprintf(out, "  %s: %s\n", nameOr(fieldItem), f.FormatType(ty))
}

// writeIndexedFieldLine writes one tuple-struct-field line ("  0: T"), by
// positional index rather than name.
func writeIndexedFieldLine(out *strings.Builder, r item.Ref, i int, id rustdoc.Id, f TypeFormatter) {
	fieldItem, ok := r.Get(id)
	if !ok || !fieldItem.IsPublic() {
		return
	}
	ty, ok := fieldItem.Inner().AsStructField()
	if !ok {
		return
	}
	stdfmt.Fprintf(out, "  %d: %s\n", i, f.FormatType(ty))
}
