package variantsService

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vsal/api/models"
	"vsal/api/models/constants/zygosity"
	esRepo "vsal/api/repositories/elasticsearch"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"golang.org/x/sync/errgroup"
)

type (
	// VariantScanner pages CoreVariant rows until it returns nil.
	VariantScanner interface {
		Next(ctx context.Context) ([]*models.CoreVariant, error)
		Close()
	}

	// GenotypeScanner pages per-sample genotype rows until it returns nil.
	GenotypeScanner interface {
		Next(ctx context.Context) ([]*models.GenotypedVariant, error)
		Close()
	}

	// SampleScanner pages samples-table rows until it returns nil.
	SampleScanner interface {
		Next(ctx context.Context) ([]models.Sample, error)
		Close()
	}

	// ScanStore is the store scan contract the scanning layer runs
	// against: open one paginated predicate-pushdown scan per call.
	ScanStore interface {
		OpenVariantScan(ctx context.Context, table string, pred models.ScanPredicates) (VariantScanner, error)
		OpenGenotypeScan(ctx context.Context, table string, pred models.ScanPredicates) (GenotypeScanner, error)
		OpenSampleScan(ctx context.Context, table string, name string) (SampleScanner, error)
	}

	VariantService struct {
		Config *models.Config
		Store  ScanStore
	}
)

func NewVariantService(cfg *models.Config, es *es7.Client) *VariantService {
	return &VariantService{
		Config: cfg,
		Store:  &esScanStore{cfg: cfg, es: es},
	}
}

// esScanStore adapts the elasticsearch repository to the ScanStore contract.
type esScanStore struct {
	cfg *models.Config
	es  *es7.Client
}

func (s *esScanStore) OpenVariantScan(ctx context.Context, table string, pred models.ScanPredicates) (VariantScanner, error) {
	return esRepo.OpenVariantScan(ctx, s.cfg, s.es, table, pred)
}

func (s *esScanStore) OpenGenotypeScan(ctx context.Context, table string, pred models.ScanPredicates) (GenotypeScanner, error) {
	return esRepo.OpenGenotypeScan(ctx, s.cfg, s.es, table, pred)
}

func (s *esScanStore) OpenSampleScan(ctx context.Context, table string, name string) (SampleScanner, error) {
	return esRepo.OpenSampleScan(ctx, s.cfg, s.es, table, name)
}

func (v *VariantService) scanTimeout() time.Duration {
	seconds := v.Config.Elasticsearch.ScanTimeoutSeconds
	if seconds <= 0 {
		seconds = 180
	}
	return time.Duration(seconds) * time.Second
}

// --- scan predicate builders ---

// RegionPredicates maps a canonical query and a target region onto
// the full predicate set of the variants table.
func RegionPredicates(q *models.CoreQuery, region int) models.ScanPredicates {
	pred := models.ScanPredicates{
		Contig: string(q.Chromosome[region]),
		Ref:    q.RefAllele,
		Alt:    q.AltAllele,
		Type:   q.Type,
	}
	if q.PositionStart != nil {
		pred.StartMin = &q.PositionStart[region]
	}
	if q.PositionEnd != nil {
		pred.StartMax = &q.PositionEnd[region]
	}
	// only the first dbSNP id is ever applied as a predicate
	if len(q.DbSNP) > 0 {
		pred.Rsid = q.DbSNP[0]
	}
	return pred
}

// regionOnlyPredicates keeps just the region bounds; the exhaustive
// fan-out backing the enrichment join must see every variant row.
func regionOnlyPredicates(q *models.CoreQuery, region int) models.ScanPredicates {
	pred := models.ScanPredicates{
		Contig: string(q.Chromosome[region]),
	}
	if q.PositionStart != nil {
		pred.StartMin = &q.PositionStart[region]
	}
	if q.PositionEnd != nil {
		pred.StartMax = &q.PositionEnd[region]
	}
	return pred
}

// GenotypePredicates maps a canonical query, region and sample id
// onto the genotype table's predicate set, including the zygosity
// filter when exactly one of hom/het is selected.
func GenotypePredicates(q *models.CoreQuery, region int, sampleId int) models.ScanPredicates {
	pred := RegionPredicates(q, region)
	pred.SampleId = &sampleId
	pred.Limit = q.Limit
	if q.SelectHom && !q.SelectHet {
		hom := true
		pred.Hom = &hom
	}
	if !q.SelectHom && q.SelectHet {
		hom := false
		pred.Hom = &hom
	}
	return pred
}

// --- synchronous region scan ---

// RegionVariants executes the plain "variants in regions" mode: a
// single-threaded paginated scan per region, in region order, sharing
// one global row budget across all regions. Once the budget is spent,
// remaining regions are skipped entirely.
func (v *VariantService) RegionVariants(ctx context.Context, q *models.CoreQuery) (int64, []*models.CoreVariant, error) {
	start := time.Now()
	coreVariants := []*models.CoreVariant{}

	table := esRepo.TableName(q.DatasetId, q.Reference, esRepo.VariantsSuffix)
	row := 0

	for region := 0; region < q.Regions && row < q.Limit; region++ {
		err := func() error {
			scanCtx, cancel := context.WithTimeout(ctx, v.scanTimeout())
			defer cancel()

			scan, err := v.Store.OpenVariantScan(scanCtx, table, RegionPredicates(q, region))
			if err != nil {
				return err
			}
			defer scan.Close()

			for row < q.Limit {
				batch, err := scan.Next(scanCtx)
				if err != nil {
					return err
				}
				if batch == nil {
					break
				}
				for _, cv := range batch {
					if row >= q.Limit {
						break
					}
					coreVariants = append(coreVariants, cv)
					row++
				}
			}
			return nil
		}()
		if err != nil {
			return time.Since(start).Milliseconds(), nil, err
		}
	}

	return time.Since(start).Milliseconds(), coreVariants, nil
}

// --- scatter-gather fan-outs ---

// variantsByRegion issues one concurrent scan per region and joins
// them all before concatenating in region order. No row budget is
// applied: this path backs the enrichment join and is intentionally
// exhaustive.
func (v *VariantService) variantsByRegion(ctx context.Context, q *models.CoreQuery) ([]*models.CoreVariant, error) {
	table := esRepo.TableName(q.DatasetId, q.Reference, esRepo.VariantsSuffix)
	perRegion := make([][]*models.CoreVariant, q.Regions)

	g, groupCtx := errgroup.WithContext(ctx)
	for region := 0; region < q.Regions; region++ {
		region := region
		g.Go(func() error {
			scanCtx, cancel := context.WithTimeout(groupCtx, v.scanTimeout())
			defer cancel()

			scan, err := v.Store.OpenVariantScan(scanCtx, table, regionOnlyPredicates(q, region))
			if err != nil {
				return err
			}
			defer scan.Close()

			for {
				batch, err := scan.Next(scanCtx)
				if err != nil {
					return err
				}
				if batch == nil {
					return nil
				}
				perRegion[region] = append(perRegion[region], batch...)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	coreVariants := []*models.CoreVariant{}
	for _, rows := range perRegion {
		coreVariants = append(coreVariants, rows...)
	}
	return coreVariants, nil
}

// variantsBySample runs the per-region × per-sample fan-out: regions
// are processed strictly in sequence, one wave each; within a wave,
// one concurrent scan per sample id pages until exhausted. Yields
// nothing unless a zygosity selector is active.
func (v *VariantService) variantsBySample(ctx context.Context, q *models.CoreQuery, sampleIds []int) (map[int][]*models.GenotypedVariant, error) {
	variantsBySamples := make(map[int][]*models.GenotypedVariant, len(sampleIds))
	if !q.SelectHom && !q.SelectHet {
		return variantsBySamples, nil
	}

	table := esRepo.TableName(q.DatasetId, q.Reference, esRepo.GenotypesSuffix)
	resultsMux := sync.Mutex{}

	for region := 0; region < q.Regions; region++ {
		g, groupCtx := errgroup.WithContext(ctx)

		for _, sid := range sampleIds {
			sid := sid
			region := region
			g.Go(func() error {
				scanCtx, cancel := context.WithTimeout(groupCtx, v.scanTimeout())
				defer cancel()

				scan, err := v.Store.OpenGenotypeScan(scanCtx, table, GenotypePredicates(q, region, sid))
				if err != nil {
					return err
				}
				defer scan.Close()

				var rows []*models.GenotypedVariant
				for {
					batch, err := scan.Next(scanCtx)
					if err != nil {
						return err
					}
					if batch == nil {
						break
					}
					rows = append(rows, batch...)
				}

				resultsMux.Lock()
				variantsBySamples[sid] = append(variantsBySamples[sid], rows...)
				resultsMux.Unlock()
				return nil
			})
		}

		// the wave for this region fully completes before the next begins
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return variantsBySamples, nil
}

// --- sample resolution ---

// resolveSampleIds maps sample names to ids with one exact-match scan
// per name. An unresolved name, or a name resolving to several ids,
// is a fatal consistency fault.
func (v *VariantService) resolveSampleIds(ctx context.Context, q *models.CoreQuery, names []string) ([]int, error) {
	table := esRepo.TableName(q.DatasetId, q.Reference, esRepo.SamplesSuffix)
	sampleIds := make([]int, 0, len(names))

	for _, name := range names {
		err := func() error {
			scanCtx, cancel := context.WithTimeout(ctx, v.scanTimeout())
			defer cancel()

			scan, err := v.Store.OpenSampleScan(scanCtx, table, name)
			if err != nil {
				return err
			}
			defer scan.Close()

			found := false
			for {
				batch, err := scan.Next(scanCtx)
				if err != nil {
					return err
				}
				if batch == nil {
					break
				}
				for _, sample := range batch {
					if found {
						return models.NewDataInconsistency(fmt.Sprintf("some samples have several ids: %s", name))
					}
					sampleIds = append(sampleIds, sample.Id)
					found = true
				}
			}
			if !found {
				return models.NewDataInconsistency(fmt.Sprintf("sample doesn't exist: %s", name))
			}
			return nil
		}()
		if err != nil {
			return nil, err
		}
	}

	return sampleIds, nil
}

// allSamples scans the whole samples table into an id → name map.
func (v *VariantService) allSamples(ctx context.Context, q *models.CoreQuery) (map[int]string, error) {
	table := esRepo.TableName(q.DatasetId, q.Reference, esRepo.SamplesSuffix)

	scanCtx, cancel := context.WithTimeout(ctx, v.scanTimeout())
	defer cancel()

	scan, err := v.Store.OpenSampleScan(scanCtx, table, "")
	if err != nil {
		return nil, err
	}
	defer scan.Close()

	samples := map[int]string{}
	for {
		batch, err := scan.Next(scanCtx)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return samples, nil
		}
		for _, sample := range batch {
			samples[sample.Id] = sample.Name
		}
	}
}

// --- virtual cohort aggregation ---

type counters struct {
	sc   int // alt allele sample count
	homc int // alt allele hom count
}

// aggregateVirtualCohort groups per-sample genotype rows by variant
// identity, applies the union/intersection policy and computes the
// virtual cohort allele stats. The result order follows map
// iteration and is explicitly not guaranteed.
func aggregateVirtualCohort(variantsBySamples map[int][]*models.GenotypedVariant, sampleCount int,
	conj bool, limit int) ([]*models.CoreVariant, error) {

	uniqueVariants := map[models.VariantKey]*models.CoreVariant{}
	uniqueCounters := map[models.VariantKey]*counters{}

	for _, sampleVariants := range variantsBySamples { // all samples
		for _, gv := range sampleVariants { // all variants in a sample
			if gv.Genotype == "" {
				return nil, models.NewDataInconsistency("null GT in variant in sample")
			}
			key := gv.Variant.Key()
			cnt, ok := uniqueCounters[key]
			if !ok {
				cnt = &counters{}
				uniqueCounters[key] = cnt
				uniqueVariants[key] = gv.Variant
			}
			cnt.sc += 1
			if zygosity.IsHomozygousAlt(gv.Genotype) {
				cnt.homc += 1
			}
		}
	}

	coreVariants := make([]*models.CoreVariant, 0, len(uniqueVariants))
	for key, cv := range uniqueVariants {
		if len(coreVariants) >= limit {
			break
		}
		cnt := uniqueCounters[key]
		if conj && cnt.sc != sampleCount {
			// for intersection - include only variants present in all samples
			continue
		}
		vhomc := cnt.homc
		vhetc := cnt.sc - cnt.homc
		vac := float32(2*cnt.homc + cnt.sc - cnt.homc)
		vaf := vac / float32(2*sampleCount)
		cv.VHomCount = &vhomc
		cv.VHetCount = &vhetc
		cv.VAltCount = &vac
		cv.VAltFreq = &vaf
		coreVariants = append(coreVariants, cv)
	}

	return coreVariants, nil
}

// enrichWithDatasetStats copies the dataset-wide stat group onto each
// virtual-cohort variant, located by identity binary search over the
// sorted exhaustive region scan. A miss means the genotype table and
// the variants table disagree: the operation aborts rather than
// returning partial statistics.
func enrichWithDatasetStats(cohort []*models.CoreVariant, datasetWide []*models.CoreVariant) error {
	sort.Slice(datasetWide, func(i, j int) bool {
		return models.CompareVariants(datasetWide[i], datasetWide[j]) < 0
	})

	for _, cv := range cohort {
		ind := sort.Search(len(datasetWide), func(i int) bool {
			return models.CompareVariants(datasetWide[i], cv) >= 0
		})
		if ind >= len(datasetWide) || models.CompareVariants(datasetWide[ind], cv) != 0 {
			return models.NewDataInconsistency(fmt.Sprintf("no row in variants table for: %s %d %s %s",
				cv.Chromosome, cv.Start, cv.Ref, cv.Alt))
		}
		stat := datasetWide[ind]
		cv.AltCount = stat.AltCount
		cv.AltFreq = stat.AltFreq
		cv.HomCount = stat.HomCount
		cv.HetCount = stat.HetCount
	}
	return nil
}

// VariantsInVirtualCohort selects the variants carried by an ad-hoc
// sample set, computes their virtual cohort stats, and cross-enriches
// them with dataset-wide stats.
func (v *VariantService) VariantsInVirtualCohort(ctx context.Context, q *models.CoreQuery, samples []string) (int64, []*models.CoreVariant, error) {
	start := time.Now()

	sampleIds, err := v.resolveSampleIds(ctx, q, samples)
	if err != nil {
		return time.Since(start).Milliseconds(), nil, err
	}

	variantsBySamples, err := v.variantsBySample(ctx, q, sampleIds)
	if err != nil {
		return time.Since(start).Milliseconds(), nil, err
	}

	coreVariants, err := aggregateVirtualCohort(variantsBySamples, len(samples), q.Conj, q.Limit)
	if err != nil {
		return time.Since(start).Milliseconds(), nil, err
	}

	// update variants with dataset-wide stats
	varsWithStatInRegions, err := v.variantsByRegion(ctx, q)
	if err != nil {
		return time.Since(start).Milliseconds(), nil, err
	}
	if err := enrichWithDatasetStats(coreVariants, varsWithStatInRegions); err != nil {
		return time.Since(start).Milliseconds(), nil, err
	}

	return time.Since(start).Milliseconds(), coreVariants, nil
}

// SelectSamplesByGT detects variant existence in the queried regions
// for every known sample, short-circuiting each sample's scan on the
// first hit, and returns the names of the samples that matched in any
// region.
func (v *VariantService) SelectSamplesByGT(ctx context.Context, q *models.CoreQuery) (int64, []string, error) {
	start := time.Now()

	allSamples, err := v.allSamples(ctx, q)
	if err != nil {
		return time.Since(start).Milliseconds(), nil, err
	}

	table := esRepo.TableName(q.DatasetId, q.Reference, esRepo.GenotypesSuffix)
	matched := make(map[int]bool, len(allSamples))
	matchedMux := sync.Mutex{}

	if q.SelectHom || q.SelectHet {
		for region := 0; region < q.Regions; region++ {
			g, groupCtx := errgroup.WithContext(ctx)

			for sid := range allSamples {
				sid := sid
				region := region

				matchedMux.Lock()
				alreadyFound := matched[sid]
				matchedMux.Unlock()
				if alreadyFound {
					continue
				}

				g.Go(func() error {
					scanCtx, cancel := context.WithTimeout(groupCtx, v.scanTimeout())
					defer cancel()

					scan, err := v.Store.OpenGenotypeScan(scanCtx, table, GenotypePredicates(q, region, sid))
					if err != nil {
						return err
					}
					defer scan.Close()

					// one hit settles the sample; no further pages needed
					for {
						batch, err := scan.Next(scanCtx)
						if err != nil {
							return err
						}
						if batch == nil {
							return nil
						}
						if len(batch) > 0 {
							matchedMux.Lock()
							matched[sid] = true
							matchedMux.Unlock()
							return nil
						}
					}
				})
			}

			if err := g.Wait(); err != nil {
				return time.Since(start).Milliseconds(), nil, err
			}
		}
	}

	selectedSampleNames := []string{}
	for sid, name := range allSamples {
		if matched[sid] {
			selectedSampleNames = append(selectedSampleNames, name)
		}
	}

	return time.Since(start).Milliseconds(), selectedSampleNames, nil
}
