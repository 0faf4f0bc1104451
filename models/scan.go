package models

import (
	c "vsal/api/models/constants"
)

// ScanPredicates is the set of column predicates pushed down to one
// store scan. Zero values mean "no predicate on that column"; the
// position bounds are pointers so that position 0 remains expressible.
type ScanPredicates struct {
	Contig     string        // contig =
	StartMin   *int          // start >=
	StartMax   *int          // start <=
	Ref        string        // ref =
	Alt        string        // alt =
	Type       c.VariantType // vtype =
	Hom        *bool         // hom =
	Rsid       string        // rsid =
	SampleId   *int          // sample_id =
	SampleName string        // sample_name =

	// per-scan row cap; <= 0 means unlimited
	Limit int
}

// GenotypedVariant is one row of the per-sample genotype table: a
// bare variant identity plus the sample's GT call.
type GenotypedVariant struct {
	Variant  *CoreVariant
	Genotype string
}

// Sample is one row of the samples table.
type Sample struct {
	Id   int    `json:"sample_id" mapstructure:"sample_id"`
	Name string `json:"sample_name" mapstructure:"sample_name"`
}
