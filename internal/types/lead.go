package types

import (
	"time"
)

// Field length caps applied before a candidate leaves the extractor.
const (
	MaxNameLen     = 200
	MaxCategoryLen = 200
	MaxPhoneLen    = 20
	MaxLocationLen = 200
)

// Source identifies the listing surface a lead was collected from.
type Source string

const (
	SourceGoogleMaps Source = "GOOGLE_MAPS"
)

// PotentialCategory is the coarse outreach-priority tier assigned during
// enrichment.
type PotentialCategory string

const (
	PotentialLow    PotentialCategory = "Low"
	PotentialMedium PotentialCategory = "Medium"
	PotentialHigh   PotentialCategory = "High"
)

// Candidate is a single normalized business record extracted from one
// listing card. It has not been persisted yet.
type Candidate struct {
	Name     string
	Category string
	Phone    string
	Location string
	// Website is empty when no outbound link was found on the card.
	Website string
}

// Lead is the persisted business contact entity.
type Lead struct {
	// ID is assigned by the store. SQLite uses the rowid rendered as a
	// string, Mongo uses the ObjectID hex.
	ID string

	// IdentityKey deduplicates leads across runs: the trimmed phone number
	// when present, otherwise a synthesized NO_PHONE_* key.
	IdentityKey string

	Name     string
	Category string
	Phone    string
	Location string
	Website  string

	Source Source
	Score  int

	PotentialScore    int
	PotentialCategory PotentialCategory
	AINotes           string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeadPatch is a partial update: only non-nil fields overwrite the stored
// values.
type LeadPatch struct {
	Name              *string
	Category          *string
	Phone             *string
	Location          *string
	Website           *string
	Score             *int
	PotentialScore    *int
	PotentialCategory *PotentialCategory
	AINotes           *string
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string { return &s }

// Int returns a pointer to n, for building patches inline.
func Int(n int) *int { return &n }

// Category returns a pointer to c, for building patches inline.
func Category(c PotentialCategory) *PotentialCategory { return &c }
