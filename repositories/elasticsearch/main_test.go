package elasticsearch

import (
	"testing"

	"vsal/api/models"
	assemblyId "vsal/api/models/constants/assembly-id"
	"vsal/api/models/constants/dataset"

	"github.com/stretchr/testify/assert"
)

func TestTableName(t *testing.T) {
	t.Run("should map the default build to the bare dataset name", func(t *testing.T) {
		assert.Equal(t, "demo_variants", TableName(dataset.DEMO, assemblyId.HG19, VariantsSuffix))
		assert.Equal(t, "demo_gt", TableName(dataset.DEMO, assemblyId.Unknown, GenotypesSuffix))
		assert.Equal(t, "mgrb_samples", TableName(dataset.MGRB, "", SamplesSuffix))
	})

	t.Run("should append the assembly for non-default builds", func(t *testing.T) {
		assert.Equal(t, "demo_hg38_variants", TableName(dataset.DEMO, assemblyId.HG38, VariantsSuffix))
		assert.Equal(t, "trio_hg18_gt", TableName(dataset.TRIO, assemblyId.HG18, GenotypesSuffix))
	})

	t.Run("should lowercase the derived name", func(t *testing.T) {
		assert.Equal(t, "aspree_variants", TableName(dataset.ASPREE, assemblyId.HG19, VariantsSuffix))
	})
}

func TestBuildScanBody(t *testing.T) {
	mustsOf := func(body map[string]interface{}) []map[string]interface{} {
		query := body["query"].(map[string]interface{})
		boolQ := query["bool"].(map[string]interface{})
		filter := boolQ["filter"].([]map[string]interface{})
		inner := filter[0]["bool"].(map[string]interface{})
		return inner["must"].([]map[string]interface{})
	}

	termValue := func(musts []map[string]interface{}, field string) (interface{}, bool) {
		for _, m := range musts {
			if term, ok := m["term"].(map[string]interface{}); ok {
				if v, ok := term[field]; ok {
					return v, true
				}
			}
		}
		return nil, false
	}

	t.Run("should emit no predicates for an empty set", func(t *testing.T) {
		assert.Empty(t, mustsOf(buildScanBody(models.ScanPredicates{})))
	})

	t.Run("should emit one term or range clause per set predicate", func(t *testing.T) {
		startMin, startMax := 100, 200
		sampleId := 7
		hom := true
		musts := mustsOf(buildScanBody(models.ScanPredicates{
			Contig:   "1",
			StartMin: &startMin,
			StartMax: &startMax,
			Ref:      "A",
			Alt:      "T",
			Type:     "SNV",
			Hom:      &hom,
			Rsid:     "rs123",
			SampleId: &sampleId,
		}))
		assert.Len(t, musts, 9)

		contig, ok := termValue(musts, "contig")
		assert.True(t, ok)
		assert.Equal(t, "1", contig)

		rsid, ok := termValue(musts, "rsid")
		assert.True(t, ok)
		assert.Equal(t, "rs123", rsid)

		sid, ok := termValue(musts, "sample_id")
		assert.True(t, ok)
		assert.Equal(t, 7, sid)
	})

	t.Run("should emit inclusive range bounds on start", func(t *testing.T) {
		startMin, startMax := 100, 200
		musts := mustsOf(buildScanBody(models.ScanPredicates{StartMin: &startMin, StartMax: &startMax}))
		assert.Len(t, musts, 2)

		gte := musts[0]["range"].(map[string]interface{})["start"].(map[string]interface{})["gte"]
		lte := musts[1]["range"].(map[string]interface{})["start"].(map[string]interface{})["lte"]
		assert.Equal(t, 100, gte)
		assert.Equal(t, 200, lte)
	})
}
