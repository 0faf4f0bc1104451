package assemblyId

import (
	"strings"

	"vsal/api/models/constants"
)

const (
	Unknown constants.AssemblyId = "Unknown"

	HG38 constants.AssemblyId = "hg38"
	HG19 constants.AssemblyId = "hg19"
	HG18 constants.AssemblyId = "hg18"
	HG17 constants.AssemblyId = "hg17"
	HG16 constants.AssemblyId = "hg16"
)

// GRCh/NCBI build names accepted as aliases for the hg* tokens.
var aliases = map[string]constants.AssemblyId{
	"grch38": HG38,
	"grch37": HG19,
	"ncbi36": HG18,
	"ncbi35": HG17,
	"ncbi34": HG16,
}

// CastToAssemblyId normalizes a raw assembly string. A blank input
// defaults to HG19; anything unrecognized casts to Unknown.
func CastToAssemblyId(text string) constants.AssemblyId {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return HG19
	}
	switch lowered {
	case "hg38":
		return HG38
	case "hg19":
		return HG19
	case "hg18":
		return HG18
	case "hg17":
		return HG17
	case "hg16":
		return HG16
	}
	if aliased, ok := aliases[lowered]; ok {
		return aliased
	}
	return Unknown
}

func IsKnownAssemblyId(text string) bool {
	return CastToAssemblyId(text) != Unknown
}
