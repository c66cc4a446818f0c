// Package rustdoc mirrors the subset of the rustdoc JSON output format
// (as produced by `cargo +nightly rustdoc ... --output-format json`) that
// this server needs to walk: items, their visibility and doc comments, and
// the handful of item kinds (struct, enum, function, trait, module, type
// alias, constant, static, impl, use) that show up in practice.
//
// rustdoc's JSON is a large, versioned schema; we deliberately model only
// the shapes the query and rendering code touches rather than the whole
// rustdoc_types crate.
package rustdoc

import "encoding/json"

// Id identifies an item within a single crate's JSON output. Ids are only
// meaningful relative to the Crate that produced them.
type Id uint32

// ItemKind classifies an Item's Inner payload. Values match rustdoc's own
// kind strings so they round-trip through ItemSummary.Kind without translation.
//
// inspect_item's kind filter schema lists a subset of these values as a
// flat enum array written by hand in internal/mcpserver/schema.go
// (itemKindEnum).
type ItemKind string

const (
	KindModule       ItemKind = "module"
	KindExternCrate  ItemKind = "extern_crate"
	KindUse          ItemKind = "use"
	KindStruct       ItemKind = "struct"
	KindStructField  ItemKind = "struct_field"
	KindUnion        ItemKind = "union"
	KindEnum         ItemKind = "enum"
	KindVariant      ItemKind = "variant"
	KindFunction     ItemKind = "function"
	KindTypeAlias    ItemKind = "type_alias"
	KindConstant     ItemKind = "constant"
	KindTrait        ItemKind = "trait"
	KindTraitAlias   ItemKind = "trait_alias"
	KindImpl         ItemKind = "impl"
	KindStatic       ItemKind = "static"
	KindExternType   ItemKind = "extern_type"
	KindMacro        ItemKind = "macro"
	KindProcAttr     ItemKind = "proc_attribute"
	KindProcDerive   ItemKind = "proc_derive"
	KindPrimitive    ItemKind = "primitive"
	KindAssocConst   ItemKind = "assoc_const"
	KindAssocType    ItemKind = "assoc_type"
	KindKeyword      ItemKind = "keyword"
)

// Label returns a short human-facing word for the kind, matching the labels
// used in disambiguation listings and module summaries ("fn", "struct", ...).
func (k ItemKind) Label() string {
	switch k {
	case KindModule:
		return "module"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindFunction:
		return "fn"
	case KindTrait:
		return "trait"
	case KindTypeAlias:
		return "type"
	case KindConstant:
		return "const"
	case KindStatic:
		return "static"
	case KindStructField:
		return "field"
	case KindVariant:
		return "variant"
	case KindImpl:
		return "impl"
	case KindUse:
		return "use"
	case KindUnion:
		return "union"
	case KindMacro:
		return "macro"
	case KindProcAttr, KindProcDerive:
		return "proc_macro"
	case KindPrimitive:
		return "primitive"
	case KindAssocConst:
		return "assoc_const"
	case KindAssocType:
		return "assoc_type"
	default:
		return "item"
	}
}

// Visibility mirrors rustdoc's Visibility enum: public, default (crate-private
// inherited), crate, or restricted to a specific ancestor module.
type Visibility struct {
	Tag    string `json:"-"`
	Parent *Id    `json:"-"`
	Path   string `json:"-"`
}

const (
	VisPublic     = "public"
	VisDefault    = "default"
	VisCrate      = "crate"
	VisRestricted = "restricted"
)

// IsPublic reports whether the item is externally visible. "default"
// visibility (no explicit pub) is treated as private.
func (v Visibility) IsPublic() bool { return v.Tag == VisPublic }

func (v *Visibility) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v.Tag = asString
		return nil
	}
	var restricted struct {
		Restricted struct {
			Parent Id     `json:"parent"`
			Path   string `json:"path"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(data, &restricted); err != nil {
		return err
	}
	v.Tag = VisRestricted
	v.Parent = &restricted.Restricted.Parent
	v.Path = restricted.Restricted.Path
	return nil
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	if v.Tag != VisRestricted {
		return json.Marshal(v.Tag)
	}
	return json.Marshal(map[string]any{
		"restricted": map[string]any{"parent": v.Parent, "path": v.Path},
	})
}

// ItemSummary is an entry in Crate.Paths: the fully-qualified path and kind
// of every item (local or re-exported) the crate's docs know about.
type ItemSummary struct {
	CrateID uint32   `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    ItemKind `json:"kind"`
}

// ExternalCrate records the name of a crate referenced by id but not defined
// in this JSON document.
type ExternalCrate struct {
	Name string `json:"name"`
}

// Item is one entry in Crate.Index: an id, its identity (name, visibility,
// docs), and a tagged-union Inner payload describing what kind of item it is.
type Item struct {
	ID         Id          `json:"id"`
	CrateID    uint32      `json:"crate_id"`
	Name       *string     `json:"name"`
	Span       *Span       `json:"span"`
	Visibility Visibility  `json:"visibility"`
	Docs       *string     `json:"docs"`
	Inner      ItemEnum    `json:"inner"`
	Deprecated *Deprecated `json:"deprecation"`
}

// Span locates an item in its source file, when rustdoc recorded one.
type Span struct {
	Filename string `json:"filename"`
}

// Deprecated carries the contents of a #[deprecated] attribute.
type Deprecated struct {
	Since string `json:"since"`
	Note  string `json:"note"`
}

// NameOr returns the item's name, or fallback if rustdoc recorded none or an
// empty one (common for impl blocks and some synthetic items).
func (it Item) NameOr(fallback string) string {
	if it.Name == nil || *it.Name == "" {
		return fallback
	}
	return *it.Name
}

// DocsOr returns the item's doc comment, or "" if it has none.
func (it Item) DocsOr() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// ItemEnum is rustdoc's internally-tagged Inner payload: a Kind discriminant
// plus a raw blob decoded lazily into the concrete struct the caller asks for.
// Kept this way (rather than one Go struct per variant eagerly populated)
// because most callers only ever care about two or three of the ~20 variants
// for any given item.
type ItemEnum struct {
	Kind ItemKind        `json:"kind"`
	Data json.RawMessage `json:"inner"`
}

func (e ItemEnum) decode(v any) bool {
	if len(e.Data) == 0 {
		return false
	}
	return json.Unmarshal(e.Data, v) == nil
}

// AsModule decodes the payload as a Module, if Kind is module.
func (e ItemEnum) AsModule() (Module, bool) {
	var m Module
	if e.Kind != KindModule {
		return m, false
	}
	return m, e.decode(&m)
}

// AsStruct decodes the payload as a Struct, if Kind is struct.
func (e ItemEnum) AsStruct() (Struct, bool) {
	var s Struct
	if e.Kind != KindStruct {
		return s, false
	}
	return s, e.decode(&s)
}

// AsEnum decodes the payload as an Enum, if Kind is enum.
func (e ItemEnum) AsEnum() (Enum, bool) {
	var v Enum
	if e.Kind != KindEnum {
		return v, false
	}
	return v, e.decode(&v)
}

// AsVariant decodes the payload as a Variant, if Kind is variant.
func (e ItemEnum) AsVariant() (Variant, bool) {
	var v Variant
	if e.Kind != KindVariant {
		return v, false
	}
	return v, e.decode(&v)
}

// AsStructField decodes the payload as a field Type, if Kind is struct_field.
func (e ItemEnum) AsStructField() (Type, bool) {
	var t Type
	if e.Kind != KindStructField {
		return t, false
	}
	return t, e.decode(&t)
}

// AsFunction decodes the payload as a Function, if Kind is function.
func (e ItemEnum) AsFunction() (Function, bool) {
	var f Function
	if e.Kind != KindFunction {
		return f, false
	}
	return f, e.decode(&f)
}

// AsTrait decodes the payload as a Trait, if Kind is trait.
func (e ItemEnum) AsTrait() (Trait, bool) {
	var t Trait
	if e.Kind != KindTrait {
		return t, false
	}
	return t, e.decode(&t)
}

// AsTypeAlias decodes the payload as a TypeAlias, if Kind is type_alias.
func (e ItemEnum) AsTypeAlias() (TypeAlias, bool) {
	var t TypeAlias
	if e.Kind != KindTypeAlias {
		return t, false
	}
	return t, e.decode(&t)
}

// AsConstant decodes the payload as a Constant, if Kind is constant.
func (e ItemEnum) AsConstant() (Constant, bool) {
	var c Constant
	if e.Kind != KindConstant {
		return c, false
	}
	return c, e.decode(&c)
}

// AsStatic decodes the payload as a Static, if Kind is static.
func (e ItemEnum) AsStatic() (Static, bool) {
	var s Static
	if e.Kind != KindStatic {
		return s, false
	}
	return s, e.decode(&s)
}

// AsImpl decodes the payload as an Impl, if Kind is impl.
func (e ItemEnum) AsImpl() (Impl, bool) {
	var i Impl
	if e.Kind != KindImpl {
		return i, false
	}
	return i, e.decode(&i)
}

// AsUse decodes the payload as a Use, if Kind is use.
func (e ItemEnum) AsUse() (Use, bool) {
	var u Use
	if e.Kind != KindUse {
		return u, false
	}
	return u, e.decode(&u)
}

// Module lists the items declared directly inside a mod block.
type Module struct {
	Items      []Id `json:"items"`
	IsCrate    bool `json:"is_crate"`
	IsStripped bool `json:"is_stripped"`
}

// Generics carries a type or function's generic parameters and where clauses.
type Generics struct {
	Params          []GenericParamDef `json:"params"`
	WherePredicates []WherePredicate  `json:"where_predicates"`
}

// GenericParamDef is one <T>, <'a>, or <const N: usize> parameter.
type GenericParamDef struct {
	Name string          `json:"name"`
	Kind json.RawMessage `json:"kind"`
}

// WherePredicate is one clause of a where-clause.
type WherePredicate struct {
	Raw json.RawMessage `json:"-"`
}

func (w *WherePredicate) UnmarshalJSON(data []byte) error {
	w.Raw = append([]byte(nil), data...)
	return nil
}

// StructKind distinguishes plain (named-field), tuple, and unit structs.
type StructKind struct {
	Tag               string  `json:"-"`
	PlainFields       []Id    `json:"-"`
	HasStrippedFields bool    `json:"-"`
	TupleFields       []*Id   `json:"-"`
}

func (s *StructKind) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		s.Tag = asString // "unit"
		return nil
	}
	var plain struct {
		Plain *struct {
			Fields            []Id `json:"fields"`
			HasStrippedFields bool `json:"has_stripped_fields"`
		} `json:"plain"`
		Tuple *[]*Id `json:"tuple"`
	}
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	switch {
	case plain.Plain != nil:
		s.Tag = "plain"
		s.PlainFields = plain.Plain.Fields
		s.HasStrippedFields = plain.Plain.HasStrippedFields
	case plain.Tuple != nil:
		s.Tag = "tuple"
		s.TupleFields = *plain.Tuple
	}
	return nil
}

// Struct is a struct item's shape (fields) and generics.
type Struct struct {
	Kind     StructKind `json:"kind"`
	Generics Generics   `json:"generics"`
	Impls    []Id       `json:"impls"`
}

// Enum lists an enum's variants and the impl blocks attached to it.
type Enum struct {
	Generics Generics `json:"generics"`
	Variants []Id     `json:"variants"`
	Impls    []Id     `json:"impls"`
}

// VariantKind distinguishes plain, tuple, and struct-style enum variants.
type VariantKind struct {
	Tag               string `json:"-"`
	TupleFields       []*Id  `json:"-"`
	StructFields      []Id   `json:"-"`
	HasStrippedFields bool   `json:"-"`
}

func (v *VariantKind) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v.Tag = asString // "plain"
		return nil
	}
	var tagged struct {
		Tuple  *[]*Id `json:"tuple"`
		Struct *struct {
			Fields            []Id `json:"fields"`
			HasStrippedFields bool `json:"has_stripped_fields"`
		} `json:"struct"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	switch {
	case tagged.Tuple != nil:
		v.Tag = "tuple"
		v.TupleFields = *tagged.Tuple
	case tagged.Struct != nil:
		v.Tag = "struct"
		v.StructFields = tagged.Struct.Fields
		v.HasStrippedFields = tagged.Struct.HasStrippedFields
	}
	return nil
}

// Variant is one arm of an enum.
type Variant struct {
	Kind VariantKind `json:"kind"`
}

// FunctionParam is one (name, type) entry of a function's signature.
type FunctionParam struct {
	Name string `json:"-"`
	Type Type   `json:"-"`
}

// FunctionSignature is a function's inputs and optional return type.
type FunctionSignature struct {
	Inputs     []FunctionParam `json:"-"`
	Output     *Type           `json:"-"`
	IsCVariadic bool           `json:"-"`
}

func (s *FunctionSignature) UnmarshalJSON(data []byte) error {
	var raw struct {
		Inputs      [][2]json.RawMessage `json:"inputs"`
		Output      *Type                `json:"output"`
		IsCVariadic bool                 `json:"is_c_variadic"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Output = raw.Output
	s.IsCVariadic = raw.IsCVariadic
	for _, pair := range raw.Inputs {
		var name string
		_ = json.Unmarshal(pair[0], &name)
		var t Type
		_ = json.Unmarshal(pair[1], &t)
		s.Inputs = append(s.Inputs, FunctionParam{Name: name, Type: t})
	}
	return nil
}

// FunctionHeader carries qualifiers like async/const/unsafe.
type FunctionHeader struct {
	IsConst  bool `json:"is_const"`
	IsAsync  bool `json:"is_async"`
	IsUnsafe bool `json:"is_unsafe"`
}

// Function is a free function or method's signature and generics.
type Function struct {
	Sig      FunctionSignature `json:"sig"`
	Generics Generics          `json:"generics"`
	Header   FunctionHeader    `json:"header"`
}

// GenericBound is a single `: Bound` entry in a trait/generic's bound list.
type GenericBound struct {
	Raw json.RawMessage `json:"-"`
}

func (b *GenericBound) UnmarshalJSON(data []byte) error {
	b.Raw = append([]byte(nil), data...)
	return nil
}

// TraitName attempts to pull a human-readable trait name out of a
// GenericBound's raw JSON (best effort; malformed/unknown shapes return "").
func (b GenericBound) TraitName() string {
	var tagged struct {
		TraitBound *struct {
			Trait PathType `json:"trait"`
		} `json:"trait_bound"`
	}
	if json.Unmarshal(b.Raw, &tagged) == nil && tagged.TraitBound != nil {
		return tagged.TraitBound.Trait.Name
	}
	return ""
}

// PathType is a resolved path to a named type or trait: name plus item id.
type PathType struct {
	Name string `json:"name"`
	ID   Id     `json:"id"`
}

// Trait is a trait item's bounds, associated items, and generics.
type Trait struct {
	Generics Generics       `json:"generics"`
	Bounds   []GenericBound `json:"bounds"`
	Items    []Id           `json:"items"`
}

// TypeAlias is a `type Foo = ...` item.
type TypeAlias struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

// Constant is a `const FOO: T = ...` item (the constant's value expression
// is not modeled; only its type, which is all rendering needs).
type Constant struct {
	Type Type `json:"type"`
}

// Static is a `static FOO: T = ...` item.
type Static struct {
	Type      Type `json:"type"`
	IsMutable bool `json:"is_mutable"`
}

// ImplKind distinguishes inherent impls from trait impls.
type ImplKind int

const (
	ImplInherent ImplKind = iota
	ImplTrait
)

// Impl is an `impl ... for ...` block: the trait being implemented (if any),
// the target type, and the items (methods, assoc types/consts) it provides.
type Impl struct {
	IsUnsafe bool          `json:"is_unsafe"`
	Generics Generics      `json:"generics"`
	Trait    *PathType     `json:"trait"`
	For      Type          `json:"for"`
	Items    []Id          `json:"items"`
	IsNegative bool        `json:"is_negative"`
	IsSynthetic bool       `json:"is_synthetic"`
}

// Kind reports whether this is a trait impl or an inherent impl.
func (i Impl) Kind() ImplKind {
	if i.Trait != nil {
		return ImplTrait
	}
	return ImplInherent
}

// Use is a `use` re-export: the source path, the local name, and (if it
// resolved within this crate) the id it points at.
type Use struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *Id    `json:"id"`
	IsGlob bool   `json:"is_glob"`
}

// Type is rustdoc's tagged-union Type: resolved paths, generics, primitives,
// and compound shapes (tuple/slice/array/reference/etc). Modeled as a raw
// blob decoded on demand; FormatType renders it to source-like text.
type Type struct {
	Tag string          `json:"-"`
	Raw json.RawMessage `json:"-"`
}

func (t *Type) UnmarshalJSON(data []byte) error {
	t.Raw = append([]byte(nil), data...)
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		// Bare string forms like "never".
		var s string
		if json.Unmarshal(data, &s) == nil {
			t.Tag = s
		}
		return nil
	}
	for k := range probe {
		t.Tag = k
		break
	}
	return nil
}

// ResolvedPath returns the path struct inside a resolved_path-tagged Type.
func (t Type) ResolvedPath() (PathType, []Type, bool) {
	if t.Tag != "resolved_path" {
		return PathType{}, nil, false
	}
	var wrapper struct {
		ResolvedPath struct {
			Name string          `json:"name"`
			ID   Id              `json:"id"`
			Args json.RawMessage `json:"args"`
		} `json:"resolved_path"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return PathType{}, nil, false
	}
	return PathType{Name: wrapper.ResolvedPath.Name, ID: wrapper.ResolvedPath.ID}, nil, true
}

// GenericParamName returns the name inside a generic-tagged Type ("T", "Self", ...).
func (t Type) GenericParamName() (string, bool) {
	if t.Tag != "generic" {
		return "", false
	}
	var wrapper struct {
		Generic string `json:"generic"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return "", false
	}
	return wrapper.Generic, true
}

// PrimitiveName returns the name inside a primitive-tagged Type ("u32", "str", ...).
func (t Type) PrimitiveName() (string, bool) {
	if t.Tag != "primitive" {
		return "", false
	}
	var wrapper struct {
		Primitive string `json:"primitive"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return "", false
	}
	return wrapper.Primitive, true
}

// ExtractID returns the item id a Type ultimately refers to, if any: the
// target of a resolved_path, or (recursively) of a reference/slice/array's
// element type. Used to match impl blocks ("impl Foo") to the struct/enum
// they apply to.
func ExtractID(t Type) (Id, bool) {
	switch t.Tag {
	case "resolved_path":
		p, _, ok := t.ResolvedPath()
		return p.ID, ok
	case "slice", "array":
		var wrapper struct {
			Slice *Type `json:"slice"`
			Array *struct {
				Type Type `json:"type"`
			} `json:"array"`
		}
		if json.Unmarshal(t.Raw, &wrapper) == nil {
			if wrapper.Slice != nil {
				return ExtractID(*wrapper.Slice)
			}
			if wrapper.Array != nil {
				return ExtractID(wrapper.Array.Type)
			}
		}
	case "borrowed_ref":
		var wrapper struct {
			BorrowedRef struct {
				Type Type `json:"type"`
			} `json:"borrowed_ref"`
		}
		if json.Unmarshal(t.Raw, &wrapper) == nil {
			return ExtractID(wrapper.BorrowedRef.Type)
		}
	}
	return 0, false
}

// GenericArg is one entry of an angle-bracketed argument list: a lifetime,
// a type, a const expression, or an inferred `_`.
type GenericArg struct {
	Tag      string `json:"-"`
	Type     Type   `json:"-"`
	Lifetime string `json:"-"`
	ConstExpr string `json:"-"`
}

func (a *GenericArg) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		a.Tag = "infer"
		return nil
	}
	var wrapper struct {
		Lifetime *string `json:"lifetime"`
		Type     *Type   `json:"type"`
		Const    *struct {
			Expr string `json:"expr"`
		} `json:"const"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	switch {
	case wrapper.Lifetime != nil:
		a.Tag = "lifetime"
		a.Lifetime = *wrapper.Lifetime
	case wrapper.Type != nil:
		a.Tag = "type"
		a.Type = *wrapper.Type
	case wrapper.Const != nil:
		a.Tag = "const"
		a.ConstExpr = wrapper.Const.Expr
	default:
		a.Tag = "infer"
	}
	return nil
}

// GenericArgs is the angle-bracketed or parenthesized argument list attached
// to a resolved_path Type (`Vec<T>`, `Fn(A, B) -> C`).
type GenericArgs struct {
	Tag          string       `json:"-"`
	Args         []GenericArg `json:"-"`
	Inputs       []Type       `json:"-"`
	Output       *Type        `json:"-"`
}

func (g *GenericArgs) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		AngleBracketed *struct {
			Args []GenericArg `json:"args"`
		} `json:"angle_bracketed"`
		Parenthesized *struct {
			Inputs []Type `json:"inputs"`
			Output *Type  `json:"output"`
		} `json:"parenthesized"`
		ReturnTypeNotation *struct{} `json:"return_type_notation"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	switch {
	case wrapper.AngleBracketed != nil:
		g.Tag = "angle_bracketed"
		g.Args = wrapper.AngleBracketed.Args
	case wrapper.Parenthesized != nil:
		g.Tag = "parenthesized"
		g.Inputs = wrapper.Parenthesized.Inputs
		g.Output = wrapper.Parenthesized.Output
	default:
		g.Tag = "return_type_notation"
	}
	return nil
}

// ResolvedPathArgs returns the generic argument list attached to a
// resolved_path Type, if it carried one.
func (t Type) ResolvedPathArgs() (GenericArgs, bool) {
	if t.Tag != "resolved_path" {
		return GenericArgs{}, false
	}
	var wrapper struct {
		ResolvedPath struct {
			Args *GenericArgs `json:"args"`
		} `json:"resolved_path"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil || wrapper.ResolvedPath.Args == nil {
		return GenericArgs{}, false
	}
	return *wrapper.ResolvedPath.Args, true
}

// TupleElems returns the element types of a tuple-tagged Type.
func (t Type) TupleElems() ([]Type, bool) {
	if t.Tag != "tuple" {
		return nil, false
	}
	var wrapper struct {
		Tuple []Type `json:"tuple"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return nil, false
	}
	return wrapper.Tuple, true
}

// SliceElem returns the element type of a slice-tagged Type.
func (t Type) SliceElem() (Type, bool) {
	if t.Tag != "slice" {
		return Type{}, false
	}
	var wrapper struct {
		Slice Type `json:"slice"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return Type{}, false
	}
	return wrapper.Slice, true
}

// ArrayElem returns the element type and length expression of an
// array-tagged Type.
func (t Type) ArrayElem() (Type, string, bool) {
	if t.Tag != "array" {
		return Type{}, "", false
	}
	var wrapper struct {
		Array struct {
			Type Type   `json:"type"`
			Len  string `json:"len"`
		} `json:"array"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return Type{}, "", false
	}
	return wrapper.Array.Type, wrapper.Array.Len, true
}

// BorrowedRef returns the lifetime (if any), mutability, and pointee type of
// a borrowed_ref-tagged Type (`&T`, `&mut T`, `&'a T`).
func (t Type) BorrowedRef() (lifetime string, isMutable bool, inner Type, ok bool) {
	if t.Tag != "borrowed_ref" {
		return "", false, Type{}, false
	}
	var wrapper struct {
		BorrowedRef struct {
			Lifetime  *string `json:"lifetime"`
			IsMutable bool    `json:"is_mutable"`
			Type      Type    `json:"type"`
		} `json:"borrowed_ref"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return "", false, Type{}, false
	}
	if wrapper.BorrowedRef.Lifetime != nil {
		lifetime = *wrapper.BorrowedRef.Lifetime
	}
	return lifetime, wrapper.BorrowedRef.IsMutable, wrapper.BorrowedRef.Type, true
}

// RawPointer returns the mutability and pointee type of a
// raw_pointer-tagged Type (`*const T`, `*mut T`).
func (t Type) RawPointer() (isMutable bool, inner Type, ok bool) {
	if t.Tag != "raw_pointer" {
		return false, Type{}, false
	}
	var wrapper struct {
		RawPointer struct {
			IsMutable bool `json:"is_mutable"`
			Type      Type `json:"type"`
		} `json:"raw_pointer"`
	}
	if json.Unmarshal(t.Raw, &wrapper) != nil {
		return false, Type{}, false
	}
	return wrapper.RawPointer.IsMutable, wrapper.RawPointer.Type, true
}

// Crate is the root of a rustdoc JSON document: every item it knows about
// (local and external), keyed by Id, plus the public path summary table.
type Crate struct {
	Root           Id                       `json:"root"`
	CrateVersion   *string                  `json:"crate_version"`
	Index          map[Id]Item              `json:"index"`
	Paths          map[Id]ItemSummary       `json:"paths"`
	ExternalCrates map[string]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}
