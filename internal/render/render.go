package render

import "rustdocmcp/internal/item"

// RenderItem dispatches r to the per-kind renderer matching its Inner.Kind,
// at the given detail level. Item kinds with no dedicated renderer (impl
// blocks, fields, variants reached directly rather than through their
// owning type, ...) fall back to a bare one-line signature or the item's
// name.
func RenderItem(r item.Ref, opts Options, crateName string) string {
	inner := r.Inner()
	switch inner.Kind {
	case "struct":
		s, _ := inner.AsStruct()
		return RenderStruct(r, s, opts.DetailLevel, crateName)
	case "enum":
		e, _ := inner.AsEnum()
		return RenderEnum(r, e, opts.DetailLevel, crateName)
	case "function":
		return RenderFunction(r, opts.DetailLevel, crateName)
	case "trait":
		t, _ := inner.AsTrait()
		return RenderTrait(r, t, opts.DetailLevel, crateName)
	case "module":
		return RenderModule(r, opts.DetailLevel, crateName)
	case "type_alias":
		ta, _ := inner.AsTypeAlias()
		return RenderTypeAlias(r, ta, opts.DetailLevel, crateName)
	case "constant":
		c, _ := inner.AsConstant()
		return RenderConstant(r, c.Type, opts.DetailLevel, crateName)
	case "static":
		s, _ := inner.AsStatic()
		return RenderStatic(r, s, opts.DetailLevel, crateName)
	default:
		if sig, ok := RenderItemSignature(r); ok {
			return sig
		}
		return nameOr(r)
	}
}
