package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vsal/api/models"
	c "vsal/api/models/constants"
	assemblyId "vsal/api/models/constants/assembly-id"
	"vsal/api/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
)

const (
	// table-role suffixes of a dataset's index family
	VariantsSuffix  = "_variants"
	GenotypesSuffix = "_gt"
	SamplesSuffix   = "_samples"

	scrollKeepAlive = "2m"
)

func scrollKeepAliveDuration() time.Duration {
	return 2 * time.Minute
}

// TableName derives the store table (index) backing a dataset for a
// given reference assembly and table role. The default build (hg19,
// or an unknown assembly) maps to the bare dataset name, any other
// build appends the assembly.
func TableName(dataset c.DatasetId, reference c.AssemblyId, suffix string) string {
	referenceBuild := ""
	if reference != "" && reference != assemblyId.Unknown && reference != assemblyId.HG19 {
		referenceBuild = "_" + string(reference)
	}
	return strings.ToLower(string(dataset) + referenceBuild + suffix)
}

// buildScanBody translates a predicate set into the store's query
// shape: every predicate lands in the bool filter's must list.
func buildScanBody(pred models.ScanPredicates) map[string]interface{} {
	mustMap := []map[string]interface{}{}

	term := func(field string, value interface{}) map[string]interface{} {
		return map[string]interface{}{
			"term": map[string]interface{}{
				field: value,
			},
		}
	}

	if pred.Contig != "" {
		mustMap = append(mustMap, term("contig", pred.Contig))
	}
	if pred.StartMin != nil {
		mustMap = append(mustMap, map[string]interface{}{
			"range": map[string]interface{}{
				"start": map[string]interface{}{
					"gte": *pred.StartMin,
				},
			},
		})
	}
	if pred.StartMax != nil {
		mustMap = append(mustMap, map[string]interface{}{
			"range": map[string]interface{}{
				"start": map[string]interface{}{
					"lte": *pred.StartMax,
				},
			},
		})
	}
	if pred.Ref != "" {
		mustMap = append(mustMap, term("ref", pred.Ref))
	}
	if pred.Alt != "" {
		mustMap = append(mustMap, term("alt", pred.Alt))
	}
	if pred.Type != "" {
		mustMap = append(mustMap, term("vtype", string(pred.Type)))
	}
	if pred.Hom != nil {
		mustMap = append(mustMap, term("hom", *pred.Hom))
	}
	if pred.Rsid != "" {
		mustMap = append(mustMap, term("rsid", pred.Rsid))
	}
	if pred.SampleId != nil {
		mustMap = append(mustMap, term("sample_id", *pred.SampleId))
	}
	if pred.SampleName != "" {
		mustMap = append(mustMap, term("sample_name", pred.SampleName))
	}

	// overall query structure
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
				},
			},
		},
		// _doc ordering keeps scrolled pagination cheap; callers own
		// any ordering guarantees beyond region-then-arrival order
		"sort": []string{"_doc"},
	}
}

// Scan is one paginated predicate-pushdown scan against a single
// table. Batches page through the store's scroll continuation until
// exhausted; Close releases the scroll context and must be called on
// every exit path (release failures are logged, never escalated).
type Scan struct {
	cfg   *models.Config
	es    *es7.Client
	table string

	scrollId  string
	buffered  []map[string]interface{}
	first     bool
	exhausted bool

	// rows delivered so far, against the per-scan cap
	delivered int
	limit     int
}

func OpenScan(ctx context.Context, cfg *models.Config, es *es7.Client, table string,
	pred models.ScanPredicates, columns []string) (*Scan, error) {

	body := buildScanBody(pred)
	body["_source"] = map[string]interface{}{
		"includes": columns,
	}
	body["size"] = cfg.Elasticsearch.ScanBatchSize

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode scan body for %s : %w", table, err)
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		fmt.Println(buf.String())
	}

	res, searchErr := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(table),
		es.Search.WithBody(&buf),
		es.Search.WithScroll(scrollKeepAliveDuration()),
		es.Search.WithTrackTotalHits(true),
	)
	if searchErr != nil {
		return nil, fmt.Errorf("scan open against %s failed : %w", table, searchErr)
	}
	defer res.Body.Close()

	result, parseErr := decodeResponse(res.String())
	if parseErr != nil {
		return nil, fmt.Errorf("scan open against %s failed : %w", table, parseErr)
	}

	scan := &Scan{
		cfg:   cfg,
		es:    es,
		table: table,
		first: true,
		limit: pred.Limit,
	}
	scan.absorb(result)

	return scan, nil
}

// Next returns the next batch of row sources, or nil once the scan is
// exhausted. The per-scan row cap, when set, truncates the final batch.
func (s *Scan) Next(ctx context.Context) ([]map[string]interface{}, error) {
	if s.first {
		s.first = false
		return s.capBatch(s.buffered), nil
	}
	if s.exhausted {
		return nil, nil
	}

	var buf bytes.Buffer
	scrollBody := map[string]interface{}{
		"scroll":    scrollKeepAlive,
		"scroll_id": s.scrollId,
	}
	if err := json.NewEncoder(&buf).Encode(scrollBody); err != nil {
		return nil, fmt.Errorf("failed to encode scroll body for %s : %w", s.table, err)
	}

	res, scrollErr := s.es.Scroll(
		s.es.Scroll.WithContext(ctx),
		s.es.Scroll.WithBody(&buf),
	)
	if scrollErr != nil {
		return nil, fmt.Errorf("scan page against %s failed : %w", s.table, scrollErr)
	}
	defer res.Body.Close()

	result, parseErr := decodeResponse(res.String())
	if parseErr != nil {
		return nil, fmt.Errorf("scan page against %s failed : %w", s.table, parseErr)
	}

	s.absorb(result)
	return s.capBatch(s.buffered), nil
}

// Close releases the scroll context; best-effort by contract.
func (s *Scan) Close() {
	if s.scrollId == "" {
		return
	}
	res, err := s.es.ClearScroll(
		s.es.ClearScroll.WithScrollID(s.scrollId),
	)
	if err != nil {
		fmt.Printf("Error releasing scan on %s : %s\n", s.table, err)
		return
	}
	res.Body.Close()
	s.scrollId = ""
}

// absorb pulls the scroll id and hit sources out of one response page.
func (s *Scan) absorb(result map[string]interface{}) {
	if id, ok := result["_scroll_id"].(string); ok {
		s.scrollId = id
	}

	s.buffered = nil
	if hits, ok := result["hits"].(map[string]interface{}); ok {
		if hitSlice, ok := hits["hits"].([]interface{}); ok {
			for _, h := range hitSlice {
				if hit, ok := h.(map[string]interface{}); ok {
					if source, ok := hit["_source"].(map[string]interface{}); ok {
						s.buffered = append(s.buffered, source)
					}
				}
			}
		}
	}
	if len(s.buffered) == 0 {
		s.exhausted = true
	}
}

func (s *Scan) capBatch(batch []map[string]interface{}) []map[string]interface{} {
	if s.limit > 0 {
		remaining := s.limit - s.delivered
		if remaining <= 0 {
			s.exhausted = true
			return nil
		}
		if len(batch) > remaining {
			batch = batch[:remaining]
			s.exhausted = true
		}
	}
	s.delivered += len(batch)
	return batch
}

// decodeResponse unwraps an elasticsearch response string.
// Known bug: the response comes back with a preceding '[200 OK] '
// which needs trimming before the JSON body can be unmarshalled.
func decodeResponse(resultString string) (map[string]interface{}, error) {
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("got '%s'", bracketString)
	}

	result := make(map[string]interface{})
	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		return nil, umErr
	}
	return result, nil
}
