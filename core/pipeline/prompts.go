package pipeline

import "fmt"

// extractionTaxonomy is the entity type list offered to the model for chunk extraction.
const extractionTaxonomy = `- PLANT: medicinal plants and herbs, preferably with the latin name (e.g. "Zingiber officinale", "Curcuma longa")
- COMPOUND: active chemical constituents (e.g. "gingerol", "curcumin", "flavonoid")
- DISEASE: diseases and medical conditions (e.g. "hypertension", "diabetes mellitus")
- EFFECT: pharmacological effects (e.g. "anti-inflammatory", "antioxidant", "analgesic")
- MECHANISM: mechanisms of action (e.g. "COX-2 inhibition", "free radical scavenging")
- DOSAGE: dosages and preparations (e.g. "500 mg extract twice daily", "decoction")
- METHOD: traditional preparation or usage methods (e.g. "boiled leaves", "topical paste")`

func graphExtractionPrompt(text string, maxEntities int) string {
	return fmt.Sprintf(`You are an expert in herbal medicine and pharmacology. Extract a knowledge graph from the journal excerpt below.

Entity types:
%s

Rules:
- Extract at most %d of the most important entities.
- Only extract entities that are explicitly mentioned in the text.
- Do not extract authors, institutions, statistics, measurements, sample sizes, laboratory procedures or generic words like "extract", "group" or "sample".
- Relations must connect two extracted entities by their exact names. Use short verbs such as "contains", "treats", "reduces", "has_effect", "acts_via", "prepared_as".
- Return ONLY valid JSON without explanations or markdown.

Format:
{"entities": [{"name": "...", "type": "..."}], "relations": [{"source": "...", "relation": "...", "target": "..."}]}

Text:
%s`, extractionTaxonomy, maxEntities, text)
}

func metadataExtractionPrompt(sample string) string {
	return fmt.Sprintf(`Read the beginning of this academic journal article and identify its bibliographic metadata.

Return ONLY valid JSON in this format:
{"title": "...", "author": "...", "year": "...", "journal": "...", "header_pattern": "...", "footer_pattern": "..."}

- "author" lists the authors separated by commas.
- "year" is the four digit publication year.
- "journal" is the name of the journal, volume and issue if present.
- "header_pattern" and "footer_pattern" are text lines repeated at the top or bottom of every page (running titles, journal names, page decorations). Use "" if there are none.
- Use "" for every field that cannot be found.

Text:
%s`, sample)
}
