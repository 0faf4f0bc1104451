package models

import (
	c "vsal/api/models/constants"
)

// CoreVariant is one variant row. Identity is the (Chromosome, Start,
// Ref, Alt) tuple; the three stat groups are populated at different
// pipeline stages: dataset-wide stats by the region scan or the
// enrichment step, virtual-cohort stats by the aggregator, and the
// statistical-test fields are reserved and currently never computed.
type CoreVariant struct {
	Chromosome string `json:"c"`
	Start      int    `json:"s"`
	DbSNP      string `json:"rs,omitempty"`

	Alt string `json:"a"`
	Ref string `json:"r"`

	Type c.VariantType `json:"t,omitempty"`

	// dataset-wide alt allele stats
	AltCount *float32 `json:"ac,omitempty"`
	AltFreq  *float32 `json:"af,omitempty"`
	HomCount *int     `json:"homc,omitempty"`
	HetCount *int     `json:"hetc,omitempty"`

	// virtual cohort alt allele stats
	VAltCount *float32 `json:"vac,omitempty"`
	VAltFreq  *float32 `json:"vaf,omitempty"`
	VHomCount *int     `json:"vhomc,omitempty"`
	VHetCount *int     `json:"vhetc,omitempty"`

	// stats tests outcomes, reserved
	Hwe       *float32 `json:"hwe,omitempty"`
	Chi2      *float32 `json:"chi2,omitempty"`
	OddsRatio *float32 `json:"or,omitempty"`
}

// VariantKey is the identity tuple of a variant row, usable as a map key.
type VariantKey struct {
	Chromosome string
	Start      int
	Ref        string
	Alt        string
}

func (v *CoreVariant) Key() VariantKey {
	return VariantKey{
		Chromosome: v.Chromosome,
		Start:      v.Start,
		Ref:        v.Ref,
		Alt:        v.Alt,
	}
}

// CompareVariants is the total order over variant identities:
// lexicographic by (chromosome, start, ref, alt), case sensitive.
// Used for sorting one result set ahead of binary-search lookups,
// never for display ordering.
func CompareVariants(a *CoreVariant, b *CoreVariant) int {
	if a.Chromosome != b.Chromosome {
		if a.Chromosome < b.Chromosome {
			return -1
		}
		return 1
	}
	if a.Start != b.Start {
		if a.Start < b.Start {
			return -1
		}
		return 1
	}
	if a.Ref != b.Ref {
		if a.Ref < b.Ref {
			return -1
		}
		return 1
	}
	if a.Alt != b.Alt {
		if a.Alt < b.Alt {
			return -1
		}
		return 1
	}
	return 0
}
