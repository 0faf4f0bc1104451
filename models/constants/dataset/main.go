package dataset

import (
	"strings"

	"vsal/api/models/constants"
)

const (
	Unknown constants.DatasetId = ""

	ASPREE       constants.DatasetId = "ASPREE"
	MGRB         constants.DatasetId = "MGRB"
	MITO         constants.DatasetId = "MITO"
	NEURO        constants.DatasetId = "NEUROMUSCULAR"
	ACUTECARE    constants.DatasetId = "ACUTECARE"
	BM           constants.DatasetId = "BM"
	EE           constants.DatasetId = "EE"
	ICCON        constants.DatasetId = "ICCON"
	LEUKO        constants.DatasetId = "LEUKODYSTROPHIES"
	DEMO         constants.DatasetId = "DEMO"
	CIRCA        constants.DatasetId = "CIRCA"
	CHILDRANZ    constants.DatasetId = "CHILDRANZ"
	CARDIAC      constants.DatasetId = "CARDIAC"
	GI           constants.DatasetId = "GI"
	HIDDEN       constants.DatasetId = "HIDDEN"
	KIDGEN       constants.DatasetId = "KIDGEN"
	ACUTECAREPRO constants.DatasetId = "ACUTECAREPRO"
	TRIO         constants.DatasetId = "TRIO"
	AUTISM       constants.DatasetId = "AUTISM"
	CHILDRANZPRO constants.DatasetId = "CHILDRANZPRO"
)

func Vocabulary() []constants.DatasetId {
	return []constants.DatasetId{
		ASPREE, MGRB, MITO, NEURO, ACUTECARE, BM, EE,
		ICCON, LEUKO, DEMO, CIRCA, CHILDRANZ, CARDIAC,
		GI, HIDDEN, KIDGEN, ACUTECAREPRO, TRIO, AUTISM, CHILDRANZPRO,
	}
}

func CastToDatasetId(text string) constants.DatasetId {
	for _, d := range Vocabulary() {
		if strings.EqualFold(text, string(d)) {
			return d
		}
	}
	return Unknown
}

// IsPublic reports whether the dataset is queryable without a token
// for phenotype and gene-list lookups.
func IsPublic(d constants.DatasetId) bool {
	return d == DEMO
}

// IsUnrestrictedGenotypes reports whether the dataset's per-sample
// genotype modes are open without a token.
func IsUnrestrictedGenotypes(d constants.DatasetId) bool {
	return d == DEMO || d == TRIO
}
