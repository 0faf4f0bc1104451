package variantsService

import (
	"context"
	"fmt"
	"testing"

	"vsal/api/models"
	c "vsal/api/models/constants"
	"vsal/api/models/constants/dataset"

	. "github.com/ahmetb/go-linq"
	"github.com/stretchr/testify/assert"
)

// --- mock scan store ---

type mockVariantScanner struct {
	batches [][]*models.CoreVariant
	next    int
	closed  bool
}

func (m *mockVariantScanner) Next(ctx context.Context) ([]*models.CoreVariant, error) {
	if m.next >= len(m.batches) {
		return nil, nil
	}
	batch := m.batches[m.next]
	m.next++
	return batch, nil
}

func (m *mockVariantScanner) Close() { m.closed = true }

type mockGenotypeScanner struct {
	rows   []*models.GenotypedVariant
	done   bool
	closed bool
}

func (m *mockGenotypeScanner) Next(ctx context.Context) ([]*models.GenotypedVariant, error) {
	if m.done {
		return nil, nil
	}
	m.done = true
	return m.rows, nil
}

func (m *mockGenotypeScanner) Close() { m.closed = true }

type mockSampleScanner struct {
	samples []models.Sample
	done    bool
}

func (m *mockSampleScanner) Next(ctx context.Context) ([]models.Sample, error) {
	if m.done {
		return nil, nil
	}
	m.done = true
	return m.samples, nil
}

func (m *mockSampleScanner) Close() {}

// mockStore routes scans by contig / sample id / name and counts
// every open so tests can assert which tables were touched.
type mockStore struct {
	variantBatches map[string][][]*models.CoreVariant    // keyed by contig
	genotypeRows   map[string][]*models.GenotypedVariant // keyed by contig|sampleId
	samplesByName  map[string][]models.Sample            // exact-name lookups
	allSamples     []models.Sample                       // empty-name scans

	variantScanners []*mockVariantScanner
	variantOpens    int
	genotypeOpens   int
	sampleOpens     int
}

func gtKey(contig string, sampleId int) string {
	return fmt.Sprintf("%s|%d", contig, sampleId)
}

func (m *mockStore) OpenVariantScan(ctx context.Context, table string, pred models.ScanPredicates) (VariantScanner, error) {
	m.variantOpens++
	scanner := &mockVariantScanner{batches: m.variantBatches[pred.Contig]}
	m.variantScanners = append(m.variantScanners, scanner)
	return scanner, nil
}

func (m *mockStore) OpenGenotypeScan(ctx context.Context, table string, pred models.ScanPredicates) (GenotypeScanner, error) {
	m.genotypeOpens++
	if pred.SampleId == nil {
		return &mockGenotypeScanner{}, nil
	}
	return &mockGenotypeScanner{rows: m.genotypeRows[gtKey(pred.Contig, *pred.SampleId)]}, nil
}

func (m *mockStore) OpenSampleScan(ctx context.Context, table string, name string) (SampleScanner, error) {
	m.sampleOpens++
	if name == "" {
		return &mockSampleScanner{samples: m.allSamples}, nil
	}
	return &mockSampleScanner{samples: m.samplesByName[name]}, nil
}

func serviceWith(store ScanStore) *VariantService {
	cfg := &models.Config{}
	cfg.Elasticsearch.ScanTimeoutSeconds = 5
	return &VariantService{Config: cfg, Store: store}
}

func variant(chrom string, start int, ref string, alt string) *models.CoreVariant {
	return &models.CoreVariant{Chromosome: chrom, Start: start, Ref: ref, Alt: alt}
}

func withStats(cv *models.CoreVariant, ac float32, af float32, homc int, hetc int) *models.CoreVariant {
	cv.AltCount = &ac
	cv.AltFreq = &af
	cv.HomCount = &homc
	cv.HetCount = &hetc
	return cv
}

func regionQuery(chroms []string, starts []int, ends []int, limit int) *models.CoreQuery {
	q := &models.CoreQuery{
		DatasetId:     dataset.DEMO,
		Regions:       len(chroms),
		PositionStart: starts,
		PositionEnd:   ends,
		Limit:         limit,
	}
	for _, chrom := range chroms {
		q.Chromosome = append(q.Chromosome, c.Chromosome(chrom))
	}
	return q
}

// --- predicate builders ---

func TestGenotypePredicates(t *testing.T) {
	q := regionQuery([]string{"1"}, []int{100}, []int{200}, 50)
	sampleId := 3

	t.Run("should push a hom filter only when exactly one selector is set", func(t *testing.T) {
		q.SelectHom, q.SelectHet = true, false
		pred := GenotypePredicates(q, 0, sampleId)
		if assert.NotNil(t, pred.Hom) {
			assert.True(t, *pred.Hom)
		}

		q.SelectHom, q.SelectHet = false, true
		pred = GenotypePredicates(q, 0, sampleId)
		if assert.NotNil(t, pred.Hom) {
			assert.False(t, *pred.Hom)
		}

		q.SelectHom, q.SelectHet = true, true
		assert.Nil(t, GenotypePredicates(q, 0, sampleId).Hom)

		q.SelectHom, q.SelectHet = false, false
		assert.Nil(t, GenotypePredicates(q, 0, sampleId).Hom)
	})

	t.Run("should carry the region bounds, sample id and row cap", func(t *testing.T) {
		pred := GenotypePredicates(q, 0, sampleId)
		assert.Equal(t, "1", pred.Contig)
		assert.Equal(t, 100, *pred.StartMin)
		assert.Equal(t, 200, *pred.StartMax)
		assert.Equal(t, 3, *pred.SampleId)
		assert.Equal(t, 50, pred.Limit)
	})
}

func TestRegionPredicates(t *testing.T) {
	t.Run("should apply only the first dbSNP id", func(t *testing.T) {
		q := regionQuery([]string{"1"}, []int{100}, []int{200}, 50)
		q.DbSNP = []string{"rs1", "rs2", "rs3"}
		assert.Equal(t, "rs1", RegionPredicates(q, 0).Rsid)
	})
}

// --- synchronous region scan ---

func TestRegionVariants(t *testing.T) {
	t.Run("should enforce the global limit within a single region", func(t *testing.T) {
		store := &mockStore{
			variantBatches: map[string][][]*models.CoreVariant{
				"1": {{
					variant("1", 100, "A", "T"),
					variant("1", 110, "A", "T"),
					variant("1", 120, "A", "T"),
					variant("1", 130, "A", "T"),
					variant("1", 140, "A", "T"),
				}},
			},
		}
		vs := serviceWith(store)

		q := regionQuery([]string{"1"}, []int{100}, []int{200}, 2)
		_, coreVariants, err := vs.RegionVariants(context.Background(), q)

		assert.NoError(t, err)
		assert.Len(t, coreVariants, 2)
		assert.Equal(t, 1, store.variantOpens)
	})

	t.Run("should share one row budget across regions and skip the rest once spent", func(t *testing.T) {
		store := &mockStore{
			variantBatches: map[string][][]*models.CoreVariant{
				"1": {{variant("1", 100, "A", "T"), variant("1", 110, "A", "T")}},
				"2": {{variant("2", 500, "C", "G"), variant("2", 510, "C", "G")}},
				"3": {{variant("3", 900, "G", "A")}},
			},
		}
		vs := serviceWith(store)

		q := regionQuery([]string{"1", "2", "3"}, []int{100, 500, 900}, []int{200, 600, 1000}, 3)
		_, coreVariants, err := vs.RegionVariants(context.Background(), q)

		assert.NoError(t, err)
		assert.Len(t, coreVariants, 3)
		// budget spent inside region 2; region 3 never scanned
		assert.Equal(t, 2, store.variantOpens)
		assert.Equal(t, "1", coreVariants[0].Chromosome)
		assert.Equal(t, "2", coreVariants[2].Chromosome)
	})

	t.Run("should close every scan handle", func(t *testing.T) {
		store := &mockStore{
			variantBatches: map[string][][]*models.CoreVariant{
				"1": {{variant("1", 100, "A", "T")}},
			},
		}
		vs := serviceWith(store)

		q := regionQuery([]string{"1"}, []int{100}, []int{200}, 10)
		_, _, err := vs.RegionVariants(context.Background(), q)

		assert.NoError(t, err)
		for _, scanner := range store.variantScanners {
			assert.True(t, scanner.closed)
		}
	})
}

// --- virtual cohort aggregation ---

func TestAggregateVirtualCohort(t *testing.T) {
	v1Het := &models.GenotypedVariant{Variant: variant("1", 100, "A", "T"), Genotype: "0/1"}
	v1Hom := &models.GenotypedVariant{Variant: variant("1", 100, "A", "T"), Genotype: "1/1"}
	v2Het := &models.GenotypedVariant{Variant: variant("1", 150, "C", "G"), Genotype: "0|1"}

	t.Run("should union and compute virtual cohort stats", func(t *testing.T) {
		bySample := map[int][]*models.GenotypedVariant{
			1: {v1Het},
			2: {v1Hom, v2Het},
		}

		coreVariants, err := aggregateVirtualCohort(bySample, 2, false, 100)
		assert.NoError(t, err)
		assert.Len(t, coreVariants, 2)

		var v1, v2 *models.CoreVariant
		for _, cv := range coreVariants {
			if cv.Start == 100 {
				v1 = cv
			} else {
				v2 = cv
			}
		}

		assert.Equal(t, 1, *v1.VHomCount)
		assert.Equal(t, 1, *v1.VHetCount)
		assert.Equal(t, float32(3), *v1.VAltCount)
		assert.Equal(t, float32(0.75), *v1.VAltFreq)

		assert.Equal(t, 0, *v2.VHomCount)
		assert.Equal(t, 1, *v2.VHetCount)
		assert.Equal(t, float32(1), *v2.VAltCount)
		assert.Equal(t, float32(0.25), *v2.VAltFreq)
	})

	t.Run("should retain only variants present in every sample under conjunction", func(t *testing.T) {
		bySample := map[int][]*models.GenotypedVariant{
			1: {v1Het},
			2: {v1Hom, v2Het},
		}

		coreVariants, err := aggregateVirtualCohort(bySample, 2, true, 100)
		assert.NoError(t, err)
		assert.Len(t, coreVariants, 1)
		assert.Equal(t, 100, coreVariants[0].Start)
	})

	t.Run("should treat a null genotype as a fatal consistency fault", func(t *testing.T) {
		bySample := map[int][]*models.GenotypedVariant{
			1: {{Variant: variant("1", 100, "A", "T"), Genotype: ""}},
		}

		_, err := aggregateVirtualCohort(bySample, 1, false, 100)
		if assert.Error(t, err) {
			assert.Equal(t, models.DataInconsistency, models.AsCoreError(err).Kind)
		}
	})

	t.Run("should truncate the unordered aggregate at the limit", func(t *testing.T) {
		bySample := map[int][]*models.GenotypedVariant{
			1: {v1Het, v2Het, {Variant: variant("1", 170, "G", "A"), Genotype: "0/1"}},
		}

		coreVariants, err := aggregateVirtualCohort(bySample, 1, false, 2)
		assert.NoError(t, err)
		assert.Len(t, coreVariants, 2)
	})
}

func TestEnrichWithDatasetStats(t *testing.T) {
	t.Run("should copy dataset-wide stats by identity", func(t *testing.T) {
		cohort := []*models.CoreVariant{variant("1", 100, "A", "T")}
		datasetWide := []*models.CoreVariant{
			withStats(variant("1", 150, "C", "G"), 10, 0.1, 2, 6),
			withStats(variant("1", 100, "A", "T"), 40, 0.4, 5, 30),
		}

		err := enrichWithDatasetStats(cohort, datasetWide)
		assert.NoError(t, err)
		assert.Equal(t, float32(40), *cohort[0].AltCount)
		assert.Equal(t, float32(0.4), *cohort[0].AltFreq)
		assert.Equal(t, 5, *cohort[0].HomCount)
		assert.Equal(t, 30, *cohort[0].HetCount)
	})

	t.Run("should abort on an identity miss instead of degrading", func(t *testing.T) {
		cohort := []*models.CoreVariant{variant("2", 999, "A", "T")}
		datasetWide := []*models.CoreVariant{
			withStats(variant("1", 100, "A", "T"), 40, 0.4, 5, 30),
		}

		err := enrichWithDatasetStats(cohort, datasetWide)
		if assert.Error(t, err) {
			assert.Equal(t, models.DataInconsistency, models.AsCoreError(err).Kind)
		}
	})
}

func TestVariantsInVirtualCohort(t *testing.T) {
	sampleA := models.Sample{Id: 1, Name: "A"}
	sampleB := models.Sample{Id: 2, Name: "B"}

	newStore := func() *mockStore {
		return &mockStore{
			samplesByName: map[string][]models.Sample{
				"A": {sampleA},
				"B": {sampleB},
			},
			genotypeRows: map[string][]*models.GenotypedVariant{
				gtKey("1", 1): {{Variant: variant("1", 100, "A", "T"), Genotype: "0/1"}},
				gtKey("1", 2): {
					{Variant: variant("1", 100, "A", "T"), Genotype: "1/1"},
					{Variant: variant("1", 150, "C", "G"), Genotype: "0/1"},
				},
			},
			variantBatches: map[string][][]*models.CoreVariant{
				"1": {{
					withStats(variant("1", 100, "A", "T"), 40, 0.4, 5, 30),
					withStats(variant("1", 150, "C", "G"), 10, 0.1, 2, 6),
				}},
			},
		}
	}

	cohortQuery := func() *models.CoreQuery {
		q := regionQuery([]string{"1"}, []int{100}, []int{200}, 100)
		q.Samples = []string{"A", "B"}
		q.SelectHom, q.SelectHet = true, true
		return q
	}

	t.Run("should aggregate and enrich the union of both samples", func(t *testing.T) {
		vs := serviceWith(newStore())

		_, coreVariants, err := vs.VariantsInVirtualCohort(context.Background(), cohortQuery(), []string{"A", "B"})
		assert.NoError(t, err)
		assert.Len(t, coreVariants, 2)

		starts := []int{}
		From(coreVariants).
			SelectT(func(cv *models.CoreVariant) int { return cv.Start }).
			ToSlice(&starts)
		assert.ElementsMatch(t, []int{100, 150}, starts)

		for _, cv := range coreVariants {
			assert.NotNil(t, cv.VAltCount, "virtual cohort stats attached")
			assert.NotNil(t, cv.AltCount, "dataset-wide stats attached")
		}
	})

	t.Run("should keep only shared variants under conjunction", func(t *testing.T) {
		vs := serviceWith(newStore())
		q := cohortQuery()
		q.Conj = true

		_, coreVariants, err := vs.VariantsInVirtualCohort(context.Background(), q, []string{"A", "B"})
		assert.NoError(t, err)
		assert.Len(t, coreVariants, 1)
		assert.Equal(t, 100, coreVariants[0].Start)
	})

	t.Run("should fail fast on an unknown sample name", func(t *testing.T) {
		vs := serviceWith(newStore())

		_, _, err := vs.VariantsInVirtualCohort(context.Background(), cohortQuery(), []string{"A", "NOPE"})
		if assert.Error(t, err) {
			assert.Equal(t, models.DataInconsistency, models.AsCoreError(err).Kind)
		}
	})

	t.Run("should fail fast when a sample name resolves to several ids", func(t *testing.T) {
		store := newStore()
		store.samplesByName["A"] = []models.Sample{sampleA, {Id: 9, Name: "A"}}
		vs := serviceWith(store)

		_, _, err := vs.VariantsInVirtualCohort(context.Background(), cohortQuery(), []string{"A"})
		if assert.Error(t, err) {
			assert.Equal(t, models.DataInconsistency, models.AsCoreError(err).Kind)
		}
	})

	t.Run("should abort when the genotype and variants tables disagree", func(t *testing.T) {
		store := newStore()
		store.variantBatches["1"] = [][]*models.CoreVariant{{
			withStats(variant("1", 100, "A", "T"), 40, 0.4, 5, 30),
			// row for start 150 missing
		}}
		vs := serviceWith(store)

		_, _, err := vs.VariantsInVirtualCohort(context.Background(), cohortQuery(), []string{"A", "B"})
		if assert.Error(t, err) {
			assert.Equal(t, models.DataInconsistency, models.AsCoreError(err).Kind)
		}
	})
}

// --- sample selection ---

func TestSelectSamplesByGT(t *testing.T) {
	t.Run("should return the names of samples matching in any region", func(t *testing.T) {
		store := &mockStore{
			allSamples: []models.Sample{
				{Id: 1, Name: "A"},
				{Id: 2, Name: "B"},
				{Id: 3, Name: "C"},
			},
			genotypeRows: map[string][]*models.GenotypedVariant{
				gtKey("1", 1): {{Variant: variant("1", 100, "A", "T"), Genotype: "0/1"}},
				gtKey("2", 2): {{Variant: variant("2", 500, "C", "G"), Genotype: "1/1"}},
			},
		}
		vs := serviceWith(store)

		q := regionQuery([]string{"1", "2"}, []int{100, 500}, []int{200, 600}, 100)
		q.SelectHom, q.SelectHet = true, true

		_, names, err := vs.SelectSamplesByGT(context.Background(), q)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B"}, names)
	})

	t.Run("should select nothing when no zygosity selector is active", func(t *testing.T) {
		store := &mockStore{
			allSamples: []models.Sample{{Id: 1, Name: "A"}},
			genotypeRows: map[string][]*models.GenotypedVariant{
				gtKey("1", 1): {{Variant: variant("1", 100, "A", "T"), Genotype: "0/1"}},
			},
		}
		vs := serviceWith(store)

		q := regionQuery([]string{"1"}, []int{100}, []int{200}, 100)

		_, names, err := vs.SelectSamplesByGT(context.Background(), q)
		assert.NoError(t, err)
		assert.Empty(t, names)
		assert.Equal(t, 0, store.genotypeOpens)
	})
}
