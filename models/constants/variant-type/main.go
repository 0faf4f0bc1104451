package variantType

import (
	"strings"

	"vsal/api/models/constants"
)

const (
	Unknown constants.VariantType = ""

	SNV     constants.VariantType = "SNV"
	MNV     constants.VariantType = "MNV"
	INS     constants.VariantType = "INS"
	DEL     constants.VariantType = "DEL"
	INDEL   constants.VariantType = "INDEL"
	SV      constants.VariantType = "SV"
	COMPLEX constants.VariantType = "COMPLEX"
)

func CastToVariantType(text string) constants.VariantType {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "SNV", "SNP":
		return SNV
	case "MNV":
		return MNV
	case "INS":
		return INS
	case "DEL":
		return DEL
	case "INDEL":
		return INDEL
	case "SV":
		return SV
	case "COMPLEX":
		return COMPLEX
	default:
		return Unknown
	}
}
