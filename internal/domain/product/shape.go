package product

import "strings"

// Payload is one raw remote product record as decoded JSON.
type Payload map[string]any

// Shape tags the three known remote payload layouts. Detection is a pure
// function of the payload; each shape has its own normalization path so the
// handling of every layout stays independently testable.
type Shape int

const (
	// ShapeFullDetail carries the nested custom-attributes container
	// (array_options) and is used almost as-is.
	ShapeFullDetail Shape = iota

	// ShapeSimplified carries flat custom fields (Marque/Tags/Similaire/...)
	// at the top level instead of the nested container.
	ShapeSimplified

	// ShapeFallback has neither signal; only cross-field derivations apply.
	ShapeFallback
)

func (s Shape) String() string {
	switch s {
	case ShapeFullDetail:
		return "fullDetail"
	case ShapeSimplified:
		return "simplified"
	default:
		return "fallback"
	}
}

// containerKey is the nested custom-attributes container field.
const containerKey = "array_options"

// flatCustomKeys are the top-level extension fields the simplified listing
// endpoints return instead of the nested container.
var flatCustomKeys = []string{
	"Marque",
	"Tags",
	"Similaire",
	"Nutriscore",
	"Allergenes",
	"Categorie",
}

// DetectShape discriminates a payload. Priority order, first match wins:
// nested container -> full detail; any flat custom key -> simplified;
// otherwise fallback.
func DetectShape(raw Payload) Shape {
	if raw == nil {
		return ShapeFallback
	}

	if m, ok := raw[containerKey].(map[string]any); ok && m != nil {
		return ShapeFullDetail
	}

	for _, k := range flatCustomKeys {
		if v, ok := raw[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return ShapeSimplified
		}
	}

	return ShapeFallback
}
