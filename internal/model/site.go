package model

import (
	"regexp"

	"github.com/google/uuid"
)

// DefaultSiteCode is the reserved head-office site used when a creation
// request carries no site code. Seeded by migrations.
const DefaultSiteCode = "A000"

var siteCodePattern = regexp.MustCompile(`^A\d{3}$`)

type Site struct {
	ID     uuid.UUID
	Code   string
	Name   string
	Active bool
}

// ValidSiteCode reports whether code matches the "A"+3 digits site scheme.
func ValidSiteCode(code string) bool {
	return siteCodePattern.MatchString(code)
}

type Supplier struct {
	ID     uuid.UUID
	Name   string
	Active bool
}
