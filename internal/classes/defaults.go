package classes

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// DefaultClasses returns the capital cost allowance classes for declining-balance assets.
func DefaultClasses() []model.DepreciationClass {
	return []model.DepreciationClass{
		{ID: "1", Rate: pct(4), Description: "Buildings acquired after 1987"},
		{ID: "3", Rate: pct(5), Description: "Buildings acquired before 1988"},
		{ID: "6", Rate: pct(10), Description: "Frame, log, stucco or galvanized iron buildings"},
		{ID: "8", Rate: pct(20), Description: "Furniture, appliances, tools and equipment"},
		{ID: "10", Rate: pct(30), Description: "Motor vehicles and general-purpose electronic data processing equipment"},
		{ID: "10.1", Rate: pct(30), Description: "Passenger vehicles above the prescribed cost limit"},
		{ID: "12", Rate: pct(100), Description: "Small tools, computer software and dies"},
		{ID: "14.1", Rate: pct(5), Description: "Goodwill and other eligible capital property"},
		{ID: "16", Rate: pct(40), Description: "Taxis, rental vehicles and freight trucks"},
		{ID: "17", Rate: pct(8), Description: "Roads, parking lots and sidewalks"},
		{ID: "43", Rate: pct(30), Description: "Manufacturing and processing machinery"},
		{ID: "44", Rate: pct(25), Description: "Patents and limited-period patent rights"},
		{ID: "45", Rate: pct(45), Description: "Computer equipment acquired before March 19, 2007"},
		{ID: "46", Rate: pct(30), Description: "Data network infrastructure equipment"},
		{ID: "50", Rate: pct(55), Description: "Computer hardware and systems software"},
		{ID: "53", Rate: pct(50), Description: "Manufacturing and processing machinery acquired after 2015"},
		{ID: "54", Rate: pct(30), Description: "Zero-emission vehicles"},
		{ID: "55", Rate: pct(40), Description: "Zero-emission taxis, rental vehicles and freight trucks"},
	}
}

func pct(n int64) decimal.Decimal {
	return decimal.New(n, -2)
}
