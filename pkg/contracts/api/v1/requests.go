// Package api contains the lookup service's request and response contracts.
package api

import (
	"gnecli/pkg/contracts/domain"
)

// LookupRequest asks for the estimate of one name/country pair.
type LookupRequest struct {
	FirstName   string `json:"first_name" query:"name" validate:"required,max=200"`
	CountryCode string `json:"country_code" query:"country" validate:"required,max=8"`
}

// BatchLookupRequest asks for several pairs at once.
type BatchLookupRequest struct {
	Items []LookupRequest `json:"items" validate:"required,min=1,max=1000,dive"`
}

// LookupResponse carries the dictionary answer for one pair.
type LookupResponse struct {
	Query  LookupRequest     `json:"query"`
	Found  bool              `json:"found"`
	Record domain.DataRecord `json:"record"`
	Label  string            `json:"label"`
}

// BatchLookupResponse answers a BatchLookupRequest in request order.
type BatchLookupResponse struct {
	Results []LookupResponse `json:"results"`
	Found   int              `json:"found"`
	Missing int              `json:"missing"`
}

// DictionaryInfo describes the loaded dictionary.
type DictionaryInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Entries     int    `json:"entries"`
	SourceRows  int    `json:"source_rows"`
	Fingerprint string `json:"fingerprint"`
}
