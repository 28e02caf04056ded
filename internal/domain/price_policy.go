package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

type PriceKind int

const (
	// Price text did not match any known pattern. Costs evaluate to 0.
	PriceUnknown PriceKind = iota
	PriceFree
	// Fixed fee for the first hour plus a fee per additional hour.
	PriceFirstHourPlusAdditional
	PricePerHour
	// Fee per started block of BlockHours.
	PricePerBlock
)

// Typed price policy, parsed once from the facility's free-text price.
type PricePolicy struct {
	Kind          PriceKind
	FirstHourFee  float64
	AdditionalFee float64
	HourlyFee     float64
	BlockFee      float64
	BlockHours    float64
	Raw           string
}

var (
	currencyAmount  = regexp.MustCompile(`[£$€]\s*(\d+(?:\.\d+)?)`)
	minorUnitAmount = regexp.MustCompile(`(\d+)\s*p\b`)
	perHourPattern  = regexp.MustCompile(`[£$€]\s*(\d+(?:\.\d+)?)\s*(?:/|per)\s*hours?`)
	perBlockPattern = regexp.MustCompile(`[£$€]\s*(\d+(?:\.\d+)?)\s*(?:/|per)\s*(\d+(?:\.\d+)?)\s*hours?`)
)

// ParsePricePolicy recognises, in order: anything mentioning "free"; a
// first-hour fee with a per-additional-hour fee in minor units ("20p");
// a fee per hour; a fee per block of K hours.
func ParsePricePolicy(text string) PricePolicy {
	s := strings.ToLower(text)
	p := PricePolicy{Raw: text}

	if strings.Contains(s, "free") {
		p.Kind = PriceFree
		return p
	}

	if strings.Contains(s, "first hour") && strings.Contains(s, "additional hour") {
		if first, additional, ok := parseFirstHourFees(s); ok {
			p.Kind = PriceFirstHourPlusAdditional
			p.FirstHourFee = first
			p.AdditionalFee = additional
			return p
		}
	}

	if m := perHourPattern.FindStringSubmatch(s); m != nil {
		if fee, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.Kind = PricePerHour
			p.HourlyFee = fee
			return p
		}
	}

	if m := perBlockPattern.FindStringSubmatch(s); m != nil {
		fee, errFee := strconv.ParseFloat(m[1], 64)
		block, errBlock := strconv.ParseFloat(m[2], 64)
		if errFee == nil && errBlock == nil && block > 0 {
			p.Kind = PricePerBlock
			p.BlockFee = fee
			p.BlockHours = block
			return p
		}
	}

	return p
}

func parseFirstHourFees(s string) (float64, float64, bool) {
	amounts := currencyAmount.FindAllStringSubmatch(s, -1)
	if len(amounts) == 0 {
		return 0, 0, false
	}
	first, err := strconv.ParseFloat(amounts[0][1], 64)
	if err != nil {
		return 0, 0, false
	}

	if m := minorUnitAmount.FindStringSubmatch(s); m != nil {
		pence, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, 0, false
		}
		return first, float64(pence) / 100, true
	}

	// "+£0.20 per additional hour" written in major units.
	if len(amounts) > 1 {
		additional, err := strconv.ParseFloat(amounts[1][1], 64)
		if err == nil {
			return first, additional, true
		}
	}

	return 0, 0, false
}

// Known reports whether the price text matched a recognised pattern.
func (p PricePolicy) Known() bool { return p.Kind != PriceUnknown }

// IsFree reports whether the policy never charges.
func (p PricePolicy) IsFree() bool { return p.Kind == PriceFree }

// Cost returns the estimated charge for parking durationHours.
//
// Durations are billed in whole hours, rounded up. Block pricing charges
// every started block. Unknown policies cost 0.
func (p PricePolicy) Cost(durationHours float64) float64 {
	if durationHours < 0 {
		durationHours = 0
	}
	billable := math.Ceil(durationHours)

	var cost float64
	switch p.Kind {
	case PriceFirstHourPlusAdditional:
		if billable <= 1 {
			cost = p.FirstHourFee
		} else {
			cost = p.FirstHourFee + p.AdditionalFee*(billable-1)
		}
	case PricePerHour:
		cost = p.HourlyFee * billable
	case PricePerBlock:
		cost = p.BlockFee * math.Ceil(durationHours/p.BlockHours)
	default:
		cost = 0
	}

	return roundMinorUnits(cost)
}

func roundMinorUnits(v float64) float64 {
	return math.Round(v*100) / 100
}

// EstimateCost parses priceText and prices durationHours with it.
func EstimateCost(priceText string, durationHours float64) float64 {
	return ParsePricePolicy(priceText).Cost(durationHours)
}

// Grace period used when a description declares no free-hours limit.
const UnlimitedFreeHours = 99.0

var (
	hoursFreePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*hours?\s*free`)
	freeForPattern   = regexp.MustCompile(`(?i)free\s+for\s+(\d+(?:\.\d+)?)\s*hours?`)
)

// MaxFreeHours extracts the "<N> hour(s) free" or "free for <N> hours"
// grace period from a facility description. Without one it returns
// UnlimitedFreeHours.
func MaxFreeHours(description string) float64 {
	for _, re := range []*regexp.Regexp{hoursFreePattern, freeForPattern} {
		if m := re.FindStringSubmatch(description); m != nil {
			if n, err := strconv.ParseFloat(m[1], 64); err == nil {
				return n
			}
		}
	}
	return UnlimitedFreeHours
}
