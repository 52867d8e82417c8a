package models

import (
	"regexp"
	"strings"
	"time"
)

var deprecationRe = regexp.MustCompile(`(?i)deprecated|obsolete|legacy|archived|replaced by|use .+ instead`)

// ApplyFreshness computes ModelAgeDays/FreshnessScore/IsStale/IsDeprecated
// from a timestamp and free-text description, per the age-bucket table
// and deprecation-marker override.
func ApplyFreshness(m *ModelVariant, lastUpdated time.Time, hasTimestamp bool, description string, now time.Time) {
	if !hasTimestamp {
		m.HasLastUpdated = false
		m.FreshnessScore = 50
		return
	}
	m.HasLastUpdated = true
	m.LastUpdatedAt = lastUpdated
	ageDays := int(now.Sub(lastUpdated).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	m.ModelAgeDays = ageDays
	m.FreshnessScore = baseFreshnessScore(ageDays)
	m.IsStale = ageDays > 365

	if deprecationRe.MatchString(strings.ToLower(description)) {
		m.IsDeprecated = true
		if m.FreshnessScore > 15 {
			m.FreshnessScore = 15
		}
	}
}

func baseFreshnessScore(ageDays int) float64 {
	switch {
	case ageDays <= 30:
		return 100
	case ageDays <= 90:
		return 90
	case ageDays <= 180:
		return 75
	case ageDays <= 365:
		return 60
	case ageDays <= 540:
		return 40
	case ageDays <= 720:
		return 25
	default:
		return 10
	}
}

// FreshnessQualityAdjustment returns the quality-score adjustment for a
// variant's freshness: deprecation and old age penalize, recent
// releases earn a small bump.
func FreshnessQualityAdjustment(m *ModelVariant) float64 {
	adj := 0.0
	if m.IsDeprecated {
		adj -= 12
	}
	if m.ModelAgeDays > 720 {
		adj -= 8
	} else if m.ModelAgeDays > 365 {
		adj -= 4
	}
	if m.IsStale {
		adj -= 3
	}
	switch {
	case m.FreshnessScore >= 90:
		adj += 3
	case m.FreshnessScore >= 75:
		adj += 2
	case m.FreshnessScore >= 60:
		adj += 1
	case m.FreshnessScore <= 25:
		adj -= 4
	}
	return adj
}
