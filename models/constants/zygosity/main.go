package zygosity

/*
	Genotype (GT) string helpers for the per-sample genotype table.

	The gt column carries VCF-style diploid calls ("0/1", "1|1", ...);
	the hom column mirrors the homozygous-alternate state for
	predicate pushdown.
*/

// IsHomozygousAlt reports whether a GT string is a homozygous
// alternate call, phased or unphased.
func IsHomozygousAlt(gt string) bool {
	return gt == "1/1" || gt == "1|1"
}
