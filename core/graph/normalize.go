package graph

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

var (
	bracketRe     = regexp.MustCompile(`[()\[\]]`)
	measurementRe = regexp.MustCompile(`^\d+[\s°]*(?:minutes?|hours?|days?|weeks?|months?|°c|ml|mg|g|kg|µg|nm|rpm)$`)
)

// noiseTerms are generic research vocabulary that the extraction model tends to label as entities.
var noiseTerms = toSet(
	// experimental setting
	"temperature", "time", "condition", "conditions", "experiment", "experiments",
	"study", "studies", "analysis", "result", "results", "method", "methods",
	"sample", "samples", "data", "control", "control group", "research", "respondent",
	"concentration", "volume", "weight", "percentage", "solvent", "distilled water",
	// equipment
	"oven", "incubator", "centrifuge", "microscope", "autoclave", "spectrophotometer",
	"rotary evaporator", "beaker", "pipette", "filter paper",
	// lab techniques
	"hplc", "tlc", "gc-ms", "lc-ms", "uv-vis", "chromatography", "spectroscopy", "titration",
	// statistics
	"anova", "t-test", "p-value", "mean", "standard deviation", "statistical analysis",
	"significance", "regression", "correlation",
)

var labVerbs = toSet("perform", "conduct", "measure", "observe", "record", "collect", "obtain", "prepare", "store")

var (
	therapeuticMethodWords = []string{"dose", "administration", "infusion", "decoction", "extract", "preparation", "oral", "topical"}
	therapeuticEffectWords = []string{"anti", "activity", "therapeutic", "medicinal"}
	procedureMethodWords   = []string{"chromatography", "spectroscopy", "analysis", "assay", "measurement", "detection"}
)

const (
	minEntityNameLength    = 3
	minCompoundNameLength  = 5
	minMechanismNameLength = 15
)

// NormalizeEntityName canonicalizes an entity name for deduplication: lower case,
// no brackets, single spaces and no trailing period.
func NormalizeEntityName(name string) string {
	n := strings.ToLower(name)
	n = bracketRe.ReplaceAllString(n, "")
	n = strings.Join(strings.Fields(n), " ")
	for strings.HasSuffix(n, ".") {
		n = strings.TrimSpace(strings.TrimSuffix(n, "."))
	}
	return n
}

// FilterEntity reports whether an extracted entity is worth keeping.
// Rules are evaluated in order and the first matching rule decides.
func FilterEntity(entity model.ExtractedEntity) bool {
	name := strings.ToLower(strings.TrimSpace(entity.Name))
	entityType := strings.ToLower(entity.Type)
	nameLength := utf8.RuneCountInString(name)

	switch {
	case nameLength < minEntityNameLength:
		return false
	case contains(noiseTerms, name):
		return false
	case measurementRe.MatchString(name):
		return false
	case contains(labVerbs, name):
		return false
	case strings.Contains(entityType, "plant"),
		strings.Contains(entityType, "disease"),
		strings.Contains(entityType, "symptom"):
		return true
	case strings.Contains(entityType, "dosage"):
		return true
	case strings.Contains(entityType, "method") && containsAny(name, therapeuticMethodWords):
		return true
	case strings.Contains(entityType, "effect") && containsAny(name, therapeuticEffectWords):
		return true
	case strings.Contains(entityType, "compound") && nameLength > minCompoundNameLength:
		return true
	case strings.Contains(entityType, "mechanism") && nameLength < minMechanismNameLength:
		return false
	case strings.Contains(entityType, "method") && containsAny(name, procedureMethodWords):
		return false
	}
	return true
}

// FilterEntities keeps the entities accepted by FilterEntity, in order.
func FilterEntities(entities []model.ExtractedEntity) []model.ExtractedEntity {
	filtered := make([]model.ExtractedEntity, 0, len(entities))
	for _, entity := range entities {
		if FilterEntity(entity) {
			filtered = append(filtered, entity)
		}
	}
	return filtered
}

// DeduplicateEntities keeps the first entity per normalized name and type.
// Types are upper-cased in the result.
func DeduplicateEntities(entities []model.ExtractedEntity) []model.ExtractedEntity {
	seen := make(map[string]struct{}, len(entities))
	unique := make([]model.ExtractedEntity, 0, len(entities))

	for _, entity := range entities {
		entityType := model.ParseEntityType(entity.Type)
		key := NormalizeEntityName(entity.Name) + "|" + strings.ToLower(string(entityType))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, model.ExtractedEntity{
			Name: entity.Name,
			Type: string(entityType),
		})
	}

	return unique
}

// ValidateRelation returns helper.ErrInvalidRelation if a part of the relation
// is empty or an endpoint is not among the known normalized names.
func ValidateRelation(relation model.Relation, knownNames map[string]struct{}) error {
	if relation.Source == "" || relation.Relation == "" || relation.Target == "" {
		return fmt.Errorf("%w: incomplete triple %q", helper.ErrInvalidRelation, relation.Key())
	}
	if _, ok := knownNames[NormalizeEntityName(relation.Source)]; !ok {
		return fmt.Errorf("%w: unknown source %q", helper.ErrInvalidRelation, relation.Source)
	}
	if _, ok := knownNames[NormalizeEntityName(relation.Target)]; !ok {
		return fmt.Errorf("%w: unknown target %q", helper.ErrInvalidRelation, relation.Target)
	}
	return nil
}

// FilterRelationsByEntities keeps the relations whose endpoints are both among entities.
// Invalid relations are dropped silently.
func FilterRelationsByEntities(relations []model.Relation, entities []model.ExtractedEntity) []model.Relation {
	knownNames := NormalizedNames(entities)

	valid := make([]model.Relation, 0, len(relations))
	for _, relation := range relations {
		if ValidateRelation(relation, knownNames) == nil {
			valid = append(valid, relation)
		}
	}
	return valid
}

// DeduplicateRelations keeps the first occurrence of every literal triple.
func DeduplicateRelations(relations []model.Relation) []model.Relation {
	seen := make(map[string]struct{}, len(relations))
	unique := make([]model.Relation, 0, len(relations))

	for _, relation := range relations {
		key := relation.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, relation)
	}

	return unique
}

// NormalizedNames returns the set of normalized entity names, ignoring types.
func NormalizedNames(entities []model.ExtractedEntity) map[string]struct{} {
	names := make(map[string]struct{}, len(entities))
	for _, entity := range entities {
		names[NormalizeEntityName(entity.Name)] = struct{}{}
	}
	return names
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, value string) bool {
	_, ok := set[value]
	return ok
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
