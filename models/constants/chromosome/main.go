package chromosome

import (
	"fmt"
	"strings"

	"vsal/api/models/constants"
)

const Unknown constants.Chromosome = ""

// Vocabulary lists two-character chromosomes ahead of single digits
// so that suffix matching resolves "chr21" to 21 rather than 1.
func Vocabulary() []constants.Chromosome {
	var chroms []constants.Chromosome
	for i := 10; i <= 22; i++ {
		chroms = append(chroms, constants.Chromosome(fmt.Sprint(i)))
	}
	chroms = append(chroms, "MT")
	for i := 1; i <= 9; i++ {
		chroms = append(chroms, constants.Chromosome(fmt.Sprint(i)))
	}
	chroms = append(chroms, "X")
	chroms = append(chroms, "Y")
	return chroms
}

// CastToChromosome matches a raw token case-insensitively by suffix
// against the chromosome vocabulary, accepting an optional "chr" prefix.
// Unmatched tokens cast to Unknown.
func CastToChromosome(text string) constants.Chromosome {
	orig := strings.ToUpper(strings.TrimSpace(text))
	if orig == "" {
		return Unknown
	}
	for _, c := range Vocabulary() {
		if strings.HasSuffix(orig, string(c)) {
			return c
		}
	}
	return Unknown
}

// CastToChromosomes converts a csv string to a slice of chromosomes.
// If any token is not valid, the whole returned slice is nil,
// invalidating the parameter.
func CastToChromosomes(csv string) []constants.Chromosome {
	if csv == "" {
		return nil
	}
	tokens := strings.Split(csv, ",")
	chroms := make([]constants.Chromosome, len(tokens))
	for i, token := range tokens {
		chroms[i] = CastToChromosome(token)
		if chroms[i] == Unknown {
			return nil
		}
	}
	return chroms
}
