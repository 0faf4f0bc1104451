package utils

import (
	"regexp"
	"strconv"
	"strings"

	"vsal/api/models"
	assemblyId "vsal/api/models/constants/assembly-id"
	"vsal/api/models/constants/chromosome"
	"vsal/api/models/constants/dataset"
	variantType "vsal/api/models/constants/variant-type"
)

var allelePattern = regexp.MustCompile(`^(([DI])|([ACGT]+))$`)

// NormalizeAllele generates a canonical allele string: DEL/INS shrink
// to D/I, nucleotide strings uppercase, anything else normalizes to
// "" and silently becomes "no filter" rather than an error.
func NormalizeAllele(allele string) string {
	if allele == "" {
		return ""
	}
	res := strings.ToUpper(allele)
	if res == "DEL" || res == "INS" {
		return res[0:1]
	}
	if allelePattern.MatchString(res) {
		return res
	}
	return ""
}

// CastToPositions converts a csv string to a slice of positions.
// If any token is not a valid integer, the whole returned slice is
// nil, invalidating the parameter.
func CastToPositions(csv string) []int {
	if csv == "" {
		return nil
	}
	tokens := strings.Split(csv, ",")
	positions := make([]int, len(tokens))
	for i, token := range tokens {
		pos, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil
		}
		positions[i] = pos
	}
	return positions
}

// ClampLimit resolves a requested row limit against the ceiling:
// nil, negative, or above-ceiling limits all resolve to the ceiling.
func ClampLimit(limit *int, ceiling int) int {
	if limit == nil || *limit < 0 || *limit > ceiling {
		return ceiling
	}
	return *limit
}

// ExtractBearerToken pulls the token out of an
// "Authorization: Bearer <token>" header value; a bearer token takes
// precedence over the explicit jwt parameter.
func ExtractBearerToken(authorization string, jwtParam string) string {
	if strings.HasPrefix(authorization, "Bearer") {
		return strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer"))
	}
	return jwtParam
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	tokens := strings.Split(csv, ",")
	for i, token := range tokens {
		tokens[i] = strings.TrimSpace(token)
	}
	return tokens
}

// BuildCoreQuery is the query normalizer: it turns the raw, loosely
// typed /find parameter surface into the canonical CoreQuery.
// Individual invalid region tokens poison their whole array; an
// invalid dataset or assembly casts to the corresponding Unknown.
func BuildCoreQuery(params *models.FindParams, maxVariants int) models.CoreQuery {
	boolOf := func(b *bool) bool {
		return b != nil && *b
	}

	chroms := chromosome.CastToChromosomes(params.Chromosome)

	var skip int
	if params.Skip != nil {
		skip = *params.Skip
	}

	return models.CoreQuery{
		Chromosome:    chroms,
		PositionStart: CastToPositions(params.PositionStart),
		PositionEnd:   CastToPositions(params.PositionEnd),
		RefAllele:     NormalizeAllele(params.RefAllele),
		AltAllele:     NormalizeAllele(params.AltAllele),
		SelectHom:     boolOf(params.Hom),
		SelectHet:     boolOf(params.Het),
		DatasetId:     dataset.CastToDatasetId(params.Dataset),
		DbSNP:         params.DbSNP,
		Type:          variantType.CastToVariantType(params.Type),
		Reference:     assemblyId.CastToAssemblyId(params.Asm),
		Regions:       len(chroms),
		Limit:         ClampLimit(params.Limit, maxVariants),
		Skip:          skip,
		Jwt:           ExtractBearerToken(params.Authorization, params.Jwt),

		Samples:           splitCSV(params.Samples),
		Conj:              boolOf(params.Conj),
		SelectSamplesByGT: boolOf(params.SelectSamplesByGT),
		ReturnAnnotations: boolOf(params.ReturnAnnotations),
		Pheno:             boolOf(params.Pheno),
		Genelist:          boolOf(params.Genelist),
		Hwe:               boolOf(params.Hwe),
		Chi2:              boolOf(params.Chi2),
	}
}
