package matching

import (
	"sort"

	"stayhook/internal/domain"
)

const (
	partialFloor = 50
	partialBonus = 10
	partialCap   = 95
	keywordFloor = 60
	keywordCap   = 90
	fuzzyFloor   = 50

	// DefaultMinConfidence is the FindBestMatch threshold used for UI auto-matching.
	DefaultMinConfidence = 70
	suggestionLimit      = 5
)

// Match scores every entity against freeText and returns the qualifying
// results, highest confidence first. Ties keep the input order.
func Match(freeText string, entities []domain.Entity, p domain.Platform) []domain.MatchResult {
	needle := Normalize(freeText)
	if needle == "" {
		return nil
	}
	out := make([]domain.MatchResult, 0, len(entities))
	for _, e := range entities {
		if r, ok := matchEntity(needle, freeText, e, p); ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// matchEntity applies the strategies in priority order; the first one that
// qualifies decides the result.
func matchEntity(needle, freeText string, e domain.Entity, p domain.Platform) (domain.MatchResult, bool) {
	res := domain.MatchResult{EntityID: e.ID, EntityName: e.Name}

	for _, a := range e.Aliases(p) {
		if Normalize(a) == needle {
			res.Confidence, res.Type, res.MatchedName = 100, domain.MatchExactAlias, a
			return res, true
		}
	}

	if Normalize(e.Name) == needle {
		res.Confidence, res.Type, res.MatchedName = 100, domain.MatchExactName, e.Name
		return res, true
	}

	names := e.AllNames()
	normalized := make([]string, len(names))
	for i, n := range names {
		normalized[i] = Normalize(n)
	}

	best, bestName := 0, ""
	for i, n := range normalized {
		if ratio, ok := containmentRatio(needle, n); ok && ratio > best {
			best, bestName = ratio, names[i]
		}
	}
	if best >= partialFloor {
		res.Confidence, res.Type, res.MatchedName = min(partialCap, best+partialBonus), domain.MatchPartial, bestName
		return res, true
	}

	best, bestName = 0, ""
	for _, n := range names {
		if kw := KeywordOverlap(freeText, n); kw > best {
			best, bestName = kw, n
		}
	}
	if best >= keywordFloor {
		res.Confidence, res.Type, res.MatchedName = min(keywordCap, best), domain.MatchPartial, bestName
		return res, true
	}

	best, bestName = 0, ""
	for i, n := range normalized {
		if sim := EditSimilarity(needle, n); sim > best {
			best, bestName = sim, names[i]
		}
	}
	if best >= fuzzyFloor {
		res.Confidence, res.Type, res.MatchedName = best, domain.MatchFuzzy, bestName
		return res, true
	}
	return domain.MatchResult{}, false
}

// FindBestMatch returns the top result of Match when it reaches minConfidence.
// ok=false is the ordinary "no confident match" outcome.
func FindBestMatch(freeText string, entities []domain.Entity, p domain.Platform, minConfidence int) (domain.MatchResult, bool) {
	results := Match(freeText, entities, p)
	if len(results) == 0 || results[0].Confidence < minConfidence {
		return domain.MatchResult{}, false
	}
	return results[0], true
}

// MatchBillingUnits runs the same strategies against billing units.
func MatchBillingUnits(freeText string, units []domain.BillingUnit, p domain.Platform) []domain.MatchResult {
	entities := make([]domain.Entity, len(units))
	for i, u := range units {
		entities[i] = u.AsEntity()
	}
	return Match(freeText, entities, p)
}

func FindBestBillingUnit(freeText string, units []domain.BillingUnit, p domain.Platform, minConfidence int) (domain.MatchResult, bool) {
	results := MatchBillingUnits(freeText, units, p)
	if len(results) == 0 || results[0].Confidence < minConfidence {
		return domain.MatchResult{}, false
	}
	return results[0], true
}

type Suggestions struct {
	AutoMatch   *domain.MatchResult  `json:"auto_match"`
	Suggestions []domain.MatchResult `json:"suggestions"`
}

// Suggest auto-matches only on a certain (100) result and lists the top five
// candidates for manual review.
func Suggest(freeText string, entities []domain.Entity, p domain.Platform) Suggestions {
	results := Match(freeText, entities, p)
	var out Suggestions
	for i := range results {
		if results[i].Confidence == 100 {
			r := results[i]
			out.AutoMatch = &r
			break
		}
	}
	if results == nil {
		results = []domain.MatchResult{}
	}
	if len(results) > suggestionLimit {
		results = results[:suggestionLimit]
	}
	out.Suggestions = results
	return out
}
