package models

import "encoding/json"

// SearchTab identifies the active filter tab of the search screen.
type SearchTab string

const (
	SearchTabAll           SearchTab = "all"
	SearchTabCourses       SearchTab = "courses"
	SearchTabOpportunities SearchTab = "opportunities"
	SearchTabProfiles      SearchTab = "profiles"
	SearchTabCompanies     SearchTab = "companies"
)

// ValidSearchTab reports whether the tab is one of the known values.
func ValidSearchTab(tab SearchTab) bool {
	switch tab {
	case SearchTabAll, SearchTabCourses, SearchTabOpportunities, SearchTabProfiles, SearchTabCompanies:
		return true
	}
	return false
}

// SearchKind tags an entry of the heterogeneous result list.
type SearchKind string

const (
	SearchKindCourse      SearchKind = "course"
	SearchKindOpportunity SearchKind = "opportunity"
	SearchKindProfile     SearchKind = "profile"
	SearchKindCompany     SearchKind = "company"
)

// Matches reports whether the kind belongs under the given tab.
func (k SearchKind) Matches(tab SearchTab) bool {
	switch tab {
	case SearchTabAll:
		return true
	case SearchTabCourses:
		return k == SearchKindCourse
	case SearchTabOpportunities:
		return k == SearchKindOpportunity
	case SearchTabProfiles:
		return k == SearchKindProfile
	case SearchTabCompanies:
		return k == SearchKindCompany
	}
	return false
}

// SearchEntry is one tagged entry of the aggregated result list.
type SearchEntry struct {
	Kind SearchKind  `json:"kind"`
	Data interface{} `json:"data"`
}

// UnmarshalJSON decodes the tagged union back into its concrete type so cached
// payloads round-trip through Redis.
func (e *SearchEntry) UnmarshalJSON(raw []byte) error {
	var probe struct {
		Kind SearchKind      `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	e.Kind = probe.Kind
	switch probe.Kind {
	case SearchKindCourse:
		var c Course
		if err := json.Unmarshal(probe.Data, &c); err != nil {
			return err
		}
		e.Data = c
	case SearchKindOpportunity:
		var o OpportunityDetail
		if err := json.Unmarshal(probe.Data, &o); err != nil {
			return err
		}
		e.Data = o
	case SearchKindProfile:
		var p Profile
		if err := json.Unmarshal(probe.Data, &p); err != nil {
			return err
		}
		e.Data = p
	case SearchKindCompany:
		var c Company
		if err := json.Unmarshal(probe.Data, &c); err != nil {
			return err
		}
		e.Data = c
	default:
		e.Data = probe.Data
	}
	return nil
}

// SearchResultSet is the raw output of the multi-table dispatcher before
// aggregation into the tagged list.
type SearchResultSet struct {
	Courses       []Course
	Opportunities []OpportunityDetail
	Profiles      []Profile
	Companies     []Company
}
