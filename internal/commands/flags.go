package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

func parseDate(flag, s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}

// parseDateOrToday returns today's date when s is empty.
func parseDateOrToday(flag, s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(flag, s)
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: invalid amount %q", flag, s)
	}
	return d, nil
}

func parseWindow(from, to string) (model.DateWindow, error) {
	start, err := parseDate("from", from)
	if err != nil {
		return model.DateWindow{}, err
	}
	end, err := parseDate("to", to)
	if err != nil {
		return model.DateWindow{}, err
	}
	return model.NewDateWindow(start, end)
}
