package queryMode

import (
	"vsal/api/models/constants"
)

/*
	The five mutually exclusive query modes, selected once by the
	engine in priority order before any store access happens.
*/
const (
	PhenoLookup     constants.QueryMode = "PHENO_LOOKUP"
	GeneListLookup  constants.QueryMode = "GENELIST_LOOKUP"
	SampleSelection constants.QueryMode = "SAMPLE_SELECTION"
	VirtualCohort   constants.QueryMode = "VIRTUAL_COHORT"
	RegionScan      constants.QueryMode = "REGION_SCAN"
)
