package product

// Normalize converts one raw remote payload into the canonical
// representation. The shape is discriminated first; each shape then has its
// own normalization path (no cascading optional-field fallbacks).
func Normalize(raw Payload) (Canonical, error) {
	return NormalizeShape(raw, DetectShape(raw))
}

// NormalizeShape normalizes raw under an already-detected shape tag.
func NormalizeShape(raw Payload, shape Shape) (Canonical, error) {
	if raw == nil {
		return Canonical{}, ErrInvalidPayload
	}

	var c Canonical
	switch shape {
	case ShapeFullDetail:
		c = normalizeFullDetail(raw)
	case ShapeSimplified:
		c = normalizeSimplified(raw)
	default:
		c = normalizeFallback(raw)
	}

	if !c.valid() {
		return Canonical{}, ErrEmptyID
	}
	return c, nil
}

// normalizeFullDetail uses the payload almost as-is: the nested container is
// taken verbatim, only cross-referenced fields are filled in.
func normalizeFullDetail(raw Payload) Canonical {
	c := baseFields(raw)

	if m, ok := raw[containerKey].(map[string]any); ok && m != nil {
		c.CustomAttributes = cloneContainer(m)
	} else {
		c.CustomAttributes = map[string]any{}
	}

	applyContainerFields(&c)
	return c
}

// normalizeSimplified synthesizes the nested container from the flat
// top-level custom fields. Container fields that do coexist in the payload
// are preserved; on key collision the nested value wins.
func normalizeSimplified(raw Payload) Canonical {
	c := baseFields(raw)

	synthesized := map[string]any{}
	for _, k := range flatCustomKeys {
		if v, ok := raw[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && asString(s) == "" {
				continue
			}
			synthesized[k] = v
		}
	}

	if nested, ok := raw[containerKey].(map[string]any); ok && nested != nil {
		for k, v := range nested {
			synthesized[k] = v
		}
	}

	c.CustomAttributes = synthesized
	applyContainerFields(&c)
	return c
}

// normalizeFallback passes through with the cross-field derivations only.
func normalizeFallback(raw Payload) Canonical {
	c := baseFields(raw)
	c.CustomAttributes = map[string]any{}
	return c
}

// ----------------------------
// Shared pieces
// ----------------------------

// baseFields extracts the scalar fields plus the derivations every shape
// gets: photo URL from whichever alternate field is present, and the
// priceHT/priceTTC completion.
func baseFields(raw Payload) Canonical {
	var c Canonical

	c.ID, _ = getString(raw, "id", "rowid")
	c.Label, _ = getString(raw, "label", "libelle")
	c.Ref, _ = getString(raw, "ref")
	c.Description, _ = getString(raw, "description")
	c.StockReel, _ = getInt(raw, "stock_reel", "stockReel")
	c.PhotoURL, _ = getString(raw, "photo_link", "image_link")
	c.CategoryLabel, _ = getString(raw, "categorie_label")

	c.PriceHT, c.PriceTTC, c.TaxRate = resolvePrices(raw)
	return c
}

// applyContainerFields projects the extension fields out of the container.
func applyContainerFields(c *Canonical) {
	m := c.CustomAttributes
	if m == nil {
		return
	}

	if v, ok := m["Marque"]; ok {
		if s := asString(v); s != "" {
			c.Brand = s
		}
	}
	if v, ok := m["Tags"]; ok {
		c.Tags = asList(v)
	}
	if v, ok := m["Similaire"]; ok {
		c.SimilarIDs = asList(v)
	}
	if v, ok := m["Categorie"]; ok {
		if s := asString(v); s != "" {
			c.CategoryLabel = s
		}
	}
}

func cloneContainer(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// ----------------------------
// Enrichment
// ----------------------------

// enrichmentCoreFields are the fields only the full record endpoint returns.
var enrichmentCoreFields = []string{"multiprices", "date_creation", "entity"}

// NeedsEnrichment reports whether the normalized record is sparse enough to
// warrant one secondary fetch of the full record: a container of 3 or fewer
// keys and none of the full-record core fields present.
func NeedsEnrichment(c Canonical, raw Payload) bool {
	if len(c.CustomAttributes) > 3 {
		return false
	}
	for _, k := range enrichmentCoreFields {
		if v, ok := raw[k]; ok && v != nil {
			return false
		}
	}
	return true
}

// MergeEnriched deep-merges the fuller record into an already-normalized
// base: top-level scalars from the fuller record win; the container is merged
// key-by-key with the fuller record winning on collision, while
// locally-synthesized keys absent from the fuller record are preserved.
func MergeEnriched(base Canonical, fullerRaw Payload) Canonical {
	fuller, err := Normalize(fullerRaw)
	if err != nil {
		return base
	}

	out := base

	if fuller.Label != "" {
		out.Label = fuller.Label
	}
	if fuller.Ref != "" {
		out.Ref = fuller.Ref
	}
	if fuller.Description != "" {
		out.Description = fuller.Description
	}
	if fuller.PhotoURL != "" {
		out.PhotoURL = fuller.PhotoURL
	}
	if fuller.CategoryLabel != "" {
		out.CategoryLabel = fuller.CategoryLabel
	}
	if !fuller.PriceTTC.IsZero() {
		out.PriceHT, out.PriceTTC, out.TaxRate = fuller.PriceHT, fuller.PriceTTC, fuller.TaxRate
	}
	if fuller.StockReel != 0 {
		out.StockReel = fuller.StockReel
	}

	merged := cloneContainer(base.CustomAttributes)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range fuller.CustomAttributes {
		merged[k] = v
	}
	out.CustomAttributes = merged

	applyContainerFields(&out)
	return out
}
