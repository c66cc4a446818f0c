package render

import (
	"encoding/json"
	"strings"

	"rustdocmcp/internal/item"
	"rustdocmcp/internal/rustdoc"
)

// TypeFormatter renders rustdoc Type values and the generic/where/bound
// furniture around them into source-like Rust syntax. It holds no state of
// its own beyond the index it resolves resolved_path names against.
type TypeFormatter struct {
	idx *rustdoc.CrateIndex
}

// NewTypeFormatter builds a formatter that resolves resolved_path types
// against idx's path summary table.
func NewTypeFormatter(idx *rustdoc.CrateIndex) TypeFormatter {
	return TypeFormatter{idx: idx}
}

// WriteType appends ty's source-like rendering to out.
func (f TypeFormatter) WriteType(out *strings.Builder, ty rustdoc.Type) {
	out.WriteString(f.FormatType(ty))
}

// FormatType renders a single Type to source-like text.
func (f TypeFormatter) FormatType(ty rustdoc.Type) string {
	switch ty.Tag {
	case "resolved_path":
		return f.formatResolvedPath(ty)
	case "generic":
		name, _ := ty.GenericParamName()
		return name
	case "primitive":
		name, _ := ty.PrimitiveName()
		return name
	case "tuple":
		elems, _ := ty.TupleElems()
		if len(elems) == 0 {
			return "()"
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = f.FormatType(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case "slice":
		elem, _ := ty.SliceElem()
		return "[" + f.FormatType(elem) + "]"
	case "array":
		elem, length, _ := ty.ArrayElem()
		return "[" + f.FormatType(elem) + "; " + length + "]"
	case "borrowed_ref":
		lifetime, isMutable, inner, _ := ty.BorrowedRef()
		var b strings.Builder
		b.WriteByte('&')
		if lifetime != "" {
			b.WriteString(lifetime)
			b.WriteByte(' ')
		}
		if isMutable {
			b.WriteString("mut ")
		}
		b.WriteString(f.FormatType(inner))
		return b.String()
	case "raw_pointer":
		isMutable, inner, _ := ty.RawPointer()
		prefix := "*const "
		if isMutable {
			prefix = "*mut "
		}
		return prefix + f.FormatType(inner)
	case "function_pointer":
		return "fn(...)"
	case "qualified_path":
		return "<qualified path>"
	default:
		return "<type>"
	}
}

// formatResolvedPath renders a resolved_path Type (`Vec<T>`, `HashMap<K, V>`),
// preferring the crate's own path-summary name over the bare name rustdoc
// embedded on the path, and falling back to that embedded name when the
// target id isn't in the summary table. Returns "<type>" only when the
// resolved_path payload cannot be decoded.
func (f TypeFormatter) formatResolvedPath(ty rustdoc.Type) string {
	p, _, ok := ty.ResolvedPath()
	if !ok {
		return "<type>"
	}
	name := p.Name
	if segs, ok := f.idx.PathSegments(p.ID); ok && len(segs) > 0 {
		name = segs[len(segs)-1]
	}
	args, ok := ty.ResolvedPathArgs()
	if !ok {
		return name
	}
	return f.formatGenericArgs(name, args)
}

func (f TypeFormatter) formatGenericArgs(name string, args rustdoc.GenericArgs) string {
	switch args.Tag {
	case "angle_bracketed":
		if len(args.Args) == 0 {
			return name
		}
		parts := make([]string, len(args.Args))
		for i, a := range args.Args {
			parts[i] = f.formatArg(a)
		}
		return name + "<" + strings.Join(parts, ", ") + ">"
	case "parenthesized":
		inputs := make([]string, len(args.Inputs))
		for i, t := range args.Inputs {
			inputs[i] = f.FormatType(t)
		}
		result := name + "(" + strings.Join(inputs, ", ") + ")"
		if args.Output != nil {
			result += " -> " + f.FormatType(*args.Output)
		}
		return result
	default: // return_type_notation
		return name
	}
}

func (f TypeFormatter) formatArg(a rustdoc.GenericArg) string {
	switch a.Tag {
	case "lifetime":
		return a.Lifetime
	case "type":
		return f.FormatType(a.Type)
	case "const":
		return "{" + a.ConstExpr + "}"
	default: // infer
		return "_"
	}
}

// WriteGenerics appends a type or function's `<T, U>` parameter list, if it
// has any.
func (f TypeFormatter) WriteGenerics(out *strings.Builder, g rustdoc.Generics) {
	if len(g.Params) == 0 {
		return
	}
	names := make([]string, 0, len(g.Params))
	for _, p := range g.Params {
		if isSelfLifetime(p) {
			continue
		}
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return
	}
	out.WriteByte('<')
	out.WriteString(strings.Join(names, ", "))
	out.WriteByte('>')
}

// isSelfLifetime filters out the implicit 'static-like synthetic params
// rustdoc sometimes emits with an empty name.
func isSelfLifetime(p rustdoc.GenericParamDef) bool { return p.Name == "" }

// WriteWhereClause appends a trailing `where` clause built from predicates,
// one predicate per indented line. sigLen (the length of the signature
// written so far) is accepted to match the original call shape but this
// port always wraps onto new lines rather than attempting to fit a where
// clause on the same line as the signature - simpler, and never produces a
// line longer than the original intended to avoid.
func (f TypeFormatter) WriteWhereClause(out *strings.Builder, predicates []rustdoc.WherePredicate, sigLen int) {
	_ = sigLen
	if len(predicates) == 0 {
		return
	}
	out.WriteString("\nwhere\n")
	for _, p := range predicates {
		out.WriteString("    ")
		out.WriteString(f.formatWherePredicate(p))
		out.WriteString(",\n")
	}
}

// formatWherePredicate best-effort decodes one where-clause entry. Unknown
// or malformed shapes render as "<bound>" rather than failing the whole
// render.
func (f TypeFormatter) formatWherePredicate(p rustdoc.WherePredicate) string {
	var bound struct {
		BoundPredicate *struct {
			Type   rustdoc.Type          `json:"type"`
			Bounds []rustdoc.GenericBound `json:"bounds"`
		} `json:"bound_predicate"`
		LifetimePredicate *struct {
			Lifetime string   `json:"lifetime"`
			Outlives []string `json:"outlives"`
		} `json:"lifetime_predicate"`
		EqPredicate *struct {
			LHS rustdoc.Type `json:"lhs"`
			RHS rustdoc.Type `json:"rhs"`
		} `json:"eq_predicate"`
	}
	if json.Unmarshal(p.Raw, &bound) == nil {
		switch {
		case bound.BoundPredicate != nil:
			names := make([]string, 0, len(bound.BoundPredicate.Bounds))
			for _, b := range bound.BoundPredicate.Bounds {
				if n := b.TraitName(); n != "" {
					names = append(names, n)
				}
			}
			return f.FormatType(bound.BoundPredicate.Type) + ": " + strings.Join(names, " + ")
		case bound.LifetimePredicate != nil:
			return bound.LifetimePredicate.Lifetime + ": " + strings.Join(bound.LifetimePredicate.Outlives, " + ")
		case bound.EqPredicate != nil:
			return f.FormatType(bound.EqPredicate.LHS) + " = " + f.FormatType(bound.EqPredicate.RHS)
		}
	}
	return "<bound>"
}

// WriteSupertraitBounds appends a trait's `: Bound1 + Bound2` supertrait
// list, if it has any.
func (f TypeFormatter) WriteSupertraitBounds(out *strings.Builder, bounds []rustdoc.GenericBound, sigLen int) {
	_ = sigLen
	var names []string
	for _, b := range bounds {
		if n := b.TraitName(); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return
	}
	out.WriteString(": ")
	out.WriteString(strings.Join(names, " + "))
}

// WriteFunctionSignature appends a function or method's `fn name<T>(a: A) ->
// R` signature, generics and all. Returns false if r isn't a function item.
func (f TypeFormatter) WriteFunctionSignature(out *strings.Builder, r item.Ref) bool {
	fn, ok := r.Inner().AsFunction()
	if !ok {
		return false
	}
	name, ok := r.Name()
	if !ok {
		name = "<unnamed>"
	}

	out.WriteString("fn ")
	out.WriteString(name)
	f.WriteGenerics(out, fn.Generics)

	out.WriteByte('(')
	for i, p := range fn.Sig.Inputs {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Name)
		out.WriteString(": ")
		out.WriteString(f.FormatType(p.Type))
	}
	out.WriteByte(')')

	if fn.Sig.Output != nil {
		out.WriteString(" -> ")
		out.WriteString(f.FormatType(*fn.Sig.Output))
	}
	return true
}

// FormatFunctionSignature is the string-returning form of
// WriteFunctionSignature, matching the original's format_function_signature
// helper used outside the render* writers.
func (f TypeFormatter) FormatFunctionSignature(r item.Ref) (string, bool) {
	var b strings.Builder
	if !f.WriteFunctionSignature(&b, r) {
		return "", false
	}
	return b.String(), true
}
