package models

import (
	"errors"
	"strings"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrUnknownBucket = errors.New("unknown bucket")
)

// Period is a user-facing reporting window.
type Period string

const (
	PeriodLast24Hours Period = "24h"
	PeriodLast3Days   Period = "3j"
	PeriodLast7Days   Period = "7j"
	PeriodLast14Days  Period = "14j"
	PeriodLast30Days  Period = "30j"
)

// Periods lists every supported period, shortest first.
var Periods = []Period{
	PeriodLast24Hours,
	PeriodLast3Days,
	PeriodLast7Days,
	PeriodLast14Days,
	PeriodLast30Days,
}

var periodAliases = map[string]Period{
	"24h": PeriodLast24Hours,
	"1d":  PeriodLast24Hours,
	"3j":  PeriodLast3Days,
	"3d":  PeriodLast3Days,
	"7j":  PeriodLast7Days,
	"7d":  PeriodLast7Days,
	"14j": PeriodLast14Days,
	"14d": PeriodLast14Days,
	"30j": PeriodLast30Days,
	"30d": PeriodLast30Days,
}

// ParsePeriod accepts the dashboard tokens (24h, 3j, 7j, 14j, 30j) and their
// English day-suffixed aliases.
func ParsePeriod(s string) (Period, error) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrUnknownPeriod
	}
	return p, nil
}

// Days returns the length of the window in days, or 0 for an unknown period.
func (p Period) Days() int {
	switch p {
	case PeriodLast24Hours:
		return 1
	case PeriodLast3Days:
		return 3
	case PeriodLast7Days:
		return 7
	case PeriodLast14Days:
		return 14
	case PeriodLast30Days:
		return 30
	}
	return 0
}

// Bucket is a reporting granularity the upstream source actually serves.
type Bucket string

const (
	Bucket7Days  Bucket = "7d"
	Bucket30Days Bucket = "30d"
)

// ParseBucket validates an upstream bucket token.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case Bucket7Days, Bucket30Days:
		return b, nil
	}
	return "", ErrUnknownBucket
}

// Days returns the number of days covered by the bucket.
func (b Bucket) Days() int {
	switch b {
	case Bucket7Days:
		return 7
	case Bucket30Days:
		return 30
	}
	return 0
}
