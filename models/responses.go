package models

// CoreResponse is the single response shape of the query engine.
// Exactly one of the payload fields is populated on success, per
// query mode; Error supersedes any payload when present. The elapsed
// times are always populated, success or failure.
type CoreResponse struct {
	CoreQuery *CoreQuery `json:"coreQuery,omitempty"`
	QueryId   string     `json:"queryId,omitempty"`

	VsalTimeMs int64 `json:"vsalTimeMs"`
	DbTimeMs   int64 `json:"dbTimeMs"`

	// virtual cohort size (requested sample count, or # selected samples)
	VcSize int `json:"vcSize,omitempty"`

	Variants  []*CoreVariant `json:"v,omitempty"`
	Total     int            `json:"total"`
	SampleIDs []string       `json:"sampleIDs,omitempty"`
	Pheno     string         `json:"pheno,omitempty"`
	Genelist  string         `json:"genelist,omitempty"`

	Error  *CoreError `json:"error,omitempty"`
	Status string     `json:"status,omitempty"`
}
