package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vsal/api/models"
	c "vsal/api/models/constants"
	"vsal/api/models/constants/dataset"
	queryMode "vsal/api/models/constants/query-mode"

	"github.com/google/uuid"
)

const NoSamplesSelectedStatus = "No samples selected"

type (
	// VariantEngine is the scanning/aggregation layer consumed by the
	// dispatcher; one method per store-touching query mode.
	VariantEngine interface {
		RegionVariants(ctx context.Context, q *models.CoreQuery) (int64, []*models.CoreVariant, error)
		VariantsInVirtualCohort(ctx context.Context, q *models.CoreQuery, samples []string) (int64, []*models.CoreVariant, error)
		SelectSamplesByGT(ctx context.Context, q *models.CoreQuery) (int64, []string, error)
	}

	// TokenVerifier checks a bearer token against a dataset-scoped claim.
	TokenVerifier interface {
		Verify(tokenString string, requiredClaim string) error
	}

	// PhenoProvider serves cached phenotype and gene-list documents.
	PhenoProvider interface {
		Pheno(d c.DatasetId) string
		Genelist() string
	}

	// CoreService validates a canonical query, selects one of the five
	// query modes, applies authorization gating and produces a timed
	// response or a structured error. One Query call per request.
	CoreService struct {
		Variants VariantEngine
		Jwt      TokenVerifier
		Phenos   PhenoProvider
	}
)

func NewCoreService(variants VariantEngine, jwt TokenVerifier, phenos PhenoProvider) *CoreService {
	return &CoreService{
		Variants: variants,
		Jwt:      jwt,
		Phenos:   phenos,
	}
}

// validate short-circuits with a structured error before any store
// access. Order matters: required fields first, then region structure.
func validate(q *models.CoreQuery) *models.CoreError {
	if q.DatasetId == dataset.Unknown {
		return models.NewIncompleteQuery("dataset is required")
	}
	if q.Regions == 0 && len(q.DbSNP) == 0 && !q.Pheno && !q.Genelist {
		return models.NewIncompleteQuery("chromosome, dbSNP, pheno or genelist is required")
	}
	if q.Regions > 0 {
		if q.PositionStart == nil || q.PositionEnd == nil {
			return models.NewMalformedQuery("positionStart and positionEnd are required with chromosome")
		}
		if len(q.PositionStart) != q.Regions || len(q.PositionEnd) != q.Regions {
			return models.NewMalformedQuery("chromosome, positionStart and positionEnd must have the same number of regions")
		}
		for region := 0; region < q.Regions; region++ {
			if q.PositionStart[region] < 0 || q.PositionEnd[region] < 0 ||
				q.PositionEnd[region] < q.PositionStart[region] {
				return models.NewMalformedQuery(fmt.Sprintf("invalid positions in region %d", region))
			}
		}
	}
	return nil
}

// SelectQueryMode picks the single mode a validated query runs in,
// in priority order.
func SelectQueryMode(q *models.CoreQuery) c.QueryMode {
	switch {
	case q.Pheno:
		return queryMode.PhenoLookup
	case q.Genelist:
		return queryMode.GeneListLookup
	case q.SelectSamplesByGT:
		return queryMode.SampleSelection
	case len(q.Samples) > 0:
		return queryMode.VirtualCohort
	default:
		return queryMode.RegionScan
	}
}

// gate enforces token requirements per mode. The plain region scan is
// ungated; the demo dataset is public for all gated modes, and the
// demo and trio datasets are open for the sample-based modes.
func (cs *CoreService) gate(q *models.CoreQuery, mode c.QueryMode) *models.CoreError {
	var claim string

	switch mode {
	case queryMode.PhenoLookup, queryMode.GeneListLookup:
		if dataset.IsPublic(q.DatasetId) {
			return nil
		}
		claim = strings.ToLower(string(q.DatasetId)) + "/pheno"
	case queryMode.SampleSelection, queryMode.VirtualCohort:
		if dataset.IsUnrestrictedGenotypes(q.DatasetId) {
			return nil
		}
		claim = strings.ToLower(string(q.DatasetId)) + "/gt"
	default:
		return nil
	}

	if q.Jwt == "" {
		return models.NewAuthorizationFailed(fmt.Sprintf("token required for %s", claim))
	}
	if err := cs.Jwt.Verify(q.Jwt, claim); err != nil {
		return models.NewAuthorizationFailed(err.Error())
	}
	return nil
}

// dedupeSamples drops repeated sample names, preserving first-seen order.
func dedupeSamples(samples []string) []string {
	seen := make(map[string]bool, len(samples))
	deduped := make([]string, 0, len(samples))
	for _, name := range samples {
		if !seen[name] {
			seen[name] = true
			deduped = append(deduped, name)
		}
	}
	return deduped
}

// Query is the engine's single operation: synchronous from the
// caller's viewpoint, blocking for the duration of every internal
// scatter-gather wave. It never returns both a payload and an error,
// and the elapsed times are populated on every path.
func (cs *CoreService) Query(ctx context.Context, q *models.CoreQuery) *models.CoreResponse {
	start := time.Now()
	res := &models.CoreResponse{
		CoreQuery: q,
		QueryId:   uuid.New().String(),
	}

	if coreErr := validate(q); coreErr != nil {
		res.Error = coreErr
		res.VsalTimeMs = time.Since(start).Milliseconds()
		return res
	}

	mode := SelectQueryMode(q)

	if coreErr := cs.gate(q, mode); coreErr != nil {
		res.Error = coreErr
		res.VsalTimeMs = time.Since(start).Milliseconds()
		return res
	}

	var err error
	switch mode {
	case queryMode.PhenoLookup:
		res.Pheno = cs.Phenos.Pheno(q.DatasetId)

	case queryMode.GeneListLookup:
		res.Genelist = cs.Phenos.Genelist()

	case queryMode.SampleSelection:
		var sampleNames []string
		res.DbTimeMs, sampleNames, err = cs.Variants.SelectSamplesByGT(ctx, q)
		if err == nil {
			// total counts variants only; sample selections leave it 0
			res.SampleIDs = sampleNames
			res.VcSize = len(sampleNames)
			if len(sampleNames) == 0 {
				res.Status = NoSamplesSelectedStatus
			}
		}

	case queryMode.VirtualCohort:
		samples := dedupeSamples(q.Samples)
		var coreVariants []*models.CoreVariant
		res.DbTimeMs, coreVariants, err = cs.Variants.VariantsInVirtualCohort(ctx, q, samples)
		if err == nil {
			res.Variants = coreVariants
			res.Total = len(coreVariants)
			res.VcSize = len(samples)
		}

	case queryMode.RegionScan:
		if q.Regions == 0 {
			// dbSNP-only query: no regions to scan
			res.Variants = []*models.CoreVariant{}
			break
		}
		var coreVariants []*models.CoreVariant
		res.DbTimeMs, coreVariants, err = cs.Variants.RegionVariants(ctx, q)
		if err == nil {
			res.Variants = coreVariants
			res.Total = len(coreVariants)
		}
	}

	if err != nil {
		coreErr := models.AsCoreError(err)
		fmt.Printf("[%s] - Query %s failed (%s) : %s\n", time.Now(), res.QueryId, coreErr.Kind, coreErr.Description)
		res.Variants, res.SampleIDs, res.Pheno, res.Genelist = nil, nil, "", ""
		res.Total, res.VcSize, res.Status = 0, 0, ""
		res.Error = coreErr
	}

	res.VsalTimeMs = time.Since(start).Milliseconds()
	return res
}
