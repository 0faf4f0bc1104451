package elasticsearch

import (
	"context"
	"fmt"

	"vsal/api/models"
	variantType "vsal/api/models/constants/variant-type"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
)

// row shape of the per-dataset variants table
type variantSource struct {
	Contig string `mapstructure:"contig"`
	Start  int    `mapstructure:"start"`
	Ref    string `mapstructure:"ref"`
	Alt    string `mapstructure:"alt"`
	Rsid   string `mapstructure:"rsid"`
	Vtype  string `mapstructure:"vtype"`

	Ac   *float32 `mapstructure:"ac"`
	Af   *float32 `mapstructure:"af"`
	Homc *int     `mapstructure:"homc"`
	Hetc *int     `mapstructure:"hetc"`

	// per-sample genotype table only
	Gt       string `mapstructure:"gt"`
	SampleId *int   `mapstructure:"sample_id"`
}

func (src *variantSource) toCoreVariant() *models.CoreVariant {
	return &models.CoreVariant{
		Chromosome: src.Contig,
		Start:      src.Start,
		Ref:        src.Ref,
		Alt:        src.Alt,
		DbSNP:      src.Rsid,
		Type:       variantType.CastToVariantType(src.Vtype),
		AltCount:   src.Ac,
		AltFreq:    src.Af,
		HomCount:   src.Homc,
		HetCount:   src.Hetc,
	}
}

var variantColumns = []string{"contig", "start", "ref", "alt", "rsid", "vtype", "af", "ac", "homc", "hetc"}
var genotypeColumns = []string{"contig", "start", "ref", "alt", "rsid", "vtype", "gt"}
var sampleColumns = []string{"sample_id", "sample_name"}

// VariantScan pages CoreVariant rows, dataset-wide stats attached,
// out of a dataset's pre-aggregated variants table.
type VariantScan struct {
	scan *Scan
}

func OpenVariantScan(ctx context.Context, cfg *models.Config, es *es7.Client,
	table string, pred models.ScanPredicates) (*VariantScan, error) {

	scan, err := OpenScan(ctx, cfg, es, table, pred, variantColumns)
	if err != nil {
		return nil, err
	}
	return &VariantScan{scan: scan}, nil
}

func (vs *VariantScan) Next(ctx context.Context) ([]*models.CoreVariant, error) {
	sources, err := vs.scan.Next(ctx)
	if err != nil || sources == nil {
		return nil, err
	}

	variants := make([]*models.CoreVariant, 0, len(sources))
	for _, source := range sources {
		var src variantSource
		if decodeErr := mapstructure.WeakDecode(source, &src); decodeErr != nil {
			return nil, fmt.Errorf("failed to parse variant row from %s : %w", vs.scan.table, decodeErr)
		}
		variants = append(variants, src.toCoreVariant())
	}
	return variants, nil
}

func (vs *VariantScan) Close() {
	vs.scan.Close()
}

// GenotypeScan pages (variant identity, GT string) rows out of a
// dataset's per-sample genotype table.
type GenotypeScan struct {
	scan *Scan
}

func OpenGenotypeScan(ctx context.Context, cfg *models.Config, es *es7.Client,
	table string, pred models.ScanPredicates) (*GenotypeScan, error) {

	scan, err := OpenScan(ctx, cfg, es, table, pred, genotypeColumns)
	if err != nil {
		return nil, err
	}
	return &GenotypeScan{scan: scan}, nil
}

func (gs *GenotypeScan) Next(ctx context.Context) ([]*models.GenotypedVariant, error) {
	sources, err := gs.scan.Next(ctx)
	if err != nil || sources == nil {
		return nil, err
	}

	rows := make([]*models.GenotypedVariant, 0, len(sources))
	for _, source := range sources {
		var src variantSource
		if decodeErr := mapstructure.WeakDecode(source, &src); decodeErr != nil {
			return nil, fmt.Errorf("failed to parse genotype row from %s : %w", gs.scan.table, decodeErr)
		}
		cv := src.toCoreVariant()
		// only the bare identity travels on this path; stats are
		// attached later by the enrichment step
		cv.AltCount, cv.AltFreq, cv.HomCount, cv.HetCount = nil, nil, nil, nil
		rows = append(rows, &models.GenotypedVariant{Variant: cv, Genotype: src.Gt})
	}
	return rows, nil
}

func (gs *GenotypeScan) Close() {
	gs.scan.Close()
}

// SampleScan pages (sample_id, sample_name) rows out of a dataset's
// samples table; an empty name scans every sample.
type SampleScan struct {
	scan *Scan
}

func OpenSampleScan(ctx context.Context, cfg *models.Config, es *es7.Client,
	table string, name string) (*SampleScan, error) {

	pred := models.ScanPredicates{SampleName: name}
	scan, err := OpenScan(ctx, cfg, es, table, pred, sampleColumns)
	if err != nil {
		return nil, err
	}
	return &SampleScan{scan: scan}, nil
}

func (ss *SampleScan) Next(ctx context.Context) ([]models.Sample, error) {
	sources, err := ss.scan.Next(ctx)
	if err != nil || sources == nil {
		return nil, err
	}

	samples := make([]models.Sample, 0, len(sources))
	for _, source := range sources {
		var sample models.Sample
		if decodeErr := mapstructure.WeakDecode(source, &sample); decodeErr != nil {
			return nil, fmt.Errorf("failed to parse sample row from %s : %w", ss.scan.table, decodeErr)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (ss *SampleScan) Close() {
	ss.scan.Close()
}
