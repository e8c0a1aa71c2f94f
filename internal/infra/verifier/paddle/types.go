package paddle

import (
	"encoding/xml"
	"time"

	"trending-score-service/internal/domain"
)

// Report represents the XML response from the Paddle bridge.
type Report struct {
	XMLName xml.Name `xml:"report"`
	Entries Entries  `xml:"entries"`
	Meta    Meta     `xml:"meta"`
}

// Entries wraps the list of revenue entries.
type Entries struct {
	Entries []Entry `xml:"entry"`
}

// Entry represents a single verified revenue record from Paddle.
// Paddle reports revenue in whole currency units, not cents.
type Entry struct {
	ListingID  string  `xml:"listing_id"`
	MonthlyUSD float64 `xml:"monthly_usd"`
	VerifiedOn string  `xml:"verified_on"`
}

// Meta holds report metadata.
type Meta struct {
	GeneratedAt string `xml:"generated_at"`
	TotalCount  int    `xml:"total_count"`
}

// ToDomain converts Entry to the domain representation, normalising
// whole-dollar amounts to cents.
func (e *Entry) ToDomain() domain.VerifiedRevenue {
	// Parse date (format: 2024-03-15)
	verifiedAt, err := time.Parse("2006-01-02", e.VerifiedOn)
	if err != nil {
		verifiedAt = time.Now().UTC()
	}

	return domain.VerifiedRevenue{
		ListingID:  e.ListingID,
		MRRCents:   int64(e.MonthlyUSD * 100),
		VerifiedAt: verifiedAt,
	}
}
