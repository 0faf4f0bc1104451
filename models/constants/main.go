package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout VSAL and it's
	associated services.
*/
type Chromosome string
type AssemblyId string
type DatasetId string
type VariantType string
type QueryMode string
type ErrorKind string
