package models

import (
	c "vsal/api/models/constants"
)

// CoreQuery is the canonical, validated form of a /find request.
// It is built once by the query normalizer and never mutated after.
type CoreQuery struct {
	Chromosome    []c.Chromosome `json:"chromosome,omitempty"`
	PositionStart []int          `json:"positionStart,omitempty"`
	PositionEnd   []int          `json:"positionEnd,omitempty"`

	RefAllele string `json:"refAllele,omitempty"`
	AltAllele string `json:"altAllele,omitempty"`

	SelectHom bool `json:"selectHom"`
	SelectHet bool `json:"selectHet"`

	DatasetId c.DatasetId   `json:"dataset,omitempty"`
	DbSNP     []string      `json:"dbSNP,omitempty"`
	Type      c.VariantType `json:"type,omitempty"`
	Reference c.AssemblyId  `json:"reference,omitempty"`

	// Regions equals len(Chromosome); 0 when chromosome is absent
	Regions int `json:"regions"`

	Limit int `json:"limit"`
	Skip  int `json:"skip,omitempty"`

	Jwt string `json:"-"`

	Samples           []string `json:"samples,omitempty"`
	Conj              bool     `json:"conj"`
	SelectSamplesByGT bool     `json:"selectSamplesByGT"`

	ReturnAnnotations bool `json:"returnAnnotations"`
	Pheno             bool `json:"pheno"`
	Genelist          bool `json:"genelist"`
	Hwe               bool `json:"hwe"`
	Chi2              bool `json:"chi2"`
}

// FindParams mirrors the raw /find parameter surface, loosely typed
// as it arrives over the wire. Bound from the query string on GET and
// from the JSON body on POST.
type FindParams struct {
	Chromosome    string `json:"chromosome" query:"chromosome"`
	PositionStart string `json:"positionStart" query:"positionStart"`
	PositionEnd   string `json:"positionEnd" query:"positionEnd"`
	RefAllele     string `json:"refAllele" query:"refAllele"`
	AltAllele     string `json:"altAllele" query:"altAllele"`
	Hom           *bool  `json:"hom" query:"hom"`
	Het           *bool  `json:"het" query:"het"`
	Dataset       string `json:"dataset" query:"dataset"`
	Type          string `json:"type" query:"type"`
	Limit         *int   `json:"limit" query:"limit"`
	Skip          *int   `json:"skip" query:"skip"`
	Jwt           string `json:"jwt" query:"jwt"`
	Samples       string `json:"samples" query:"samples"`
	Conj          *bool  `json:"conj" query:"conj"`

	SelectSamplesByGT *bool `json:"selectSamplesByGT" query:"selectSamplesByGT"`
	ReturnAnnotations *bool `json:"returnAnnotations" query:"returnAnnotations"`
	Pheno             *bool `json:"pheno" query:"pheno"`
	Genelist          *bool `json:"genelist" query:"genelist"`
	Hwe               *bool `json:"hwe" query:"hwe"`
	Chi2              *bool `json:"chi2" query:"chi2"`

	Asm   string   `json:"asm" query:"asm"`
	DbSNP []string `json:"dbSNP" query:"dbSNP"`

	// raw Authorization header; a bearer token here takes precedence
	// over the explicit jwt parameter
	Authorization string `json:"-" query:"-"`
}
