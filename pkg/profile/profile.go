// Package profile loads the driver-style profiles produced by the
// offline telemetry pipeline. Only the overall style figures are
// consumed here; the per-session data in the file is tolerated and
// ignored.
package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"
)

// ErrUnknownDriver is returned when a requested driver code has no
// profile. Check with errors.Is.
var ErrUnknownDriver = errors.New("unknown driver code")

type (
	// Overall holds the aggregated style figures of one driver.
	Overall struct {
		AggressionScore float64 `json:"aggression_score"`
		BrakingRisk     float64 `json:"braking_risk"`
		CoastingPct     float64 `json:"coasting_pct"`
		MaxSpeed        float64 `json:"max_speed"`
	}

	// Record is one driver's profile entry.
	Record struct {
		DriverName string  `json:"driver_name"`
		Overall    Overall `json:"overall"`
	}

	// Store holds the loaded profiles keyed by driver code.
	Store struct {
		records map[string]Record
	}
)

// Parse decodes profile JSON. Style figures are clamped into sane
// ranges; a non-positive max speed falls back to a conservative
// default so a sparse profile cannot stall a vehicle.
func Parse(data []byte) (*Store, error) {
	records := map[string]Record{}
	if err := oj.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("could not parse driver profiles: %w", err)
	}
	for code, rec := range records {
		rec.Overall.AggressionScore = lo.Clamp(rec.Overall.AggressionScore, 0.0, 1.0)
		rec.Overall.BrakingRisk = lo.Clamp(rec.Overall.BrakingRisk, 0.0, 1.0)
		rec.Overall.CoastingPct = lo.Clamp(rec.Overall.CoastingPct, 0.0, 1.0)
		if rec.Overall.MaxSpeed <= 0 {
			rec.Overall.MaxSpeed = 200.0
		}
		records[code] = rec
	}
	return &Store{records: records}, nil
}

func LoadFile(fileName string) (*Store, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not read driver profiles %s: %w", fileName, err)
	}
	return Parse(data)
}

// Get returns the record for the driver code or ErrUnknownDriver.
func (s *Store) Get(code string) (Record, error) {
	rec, ok := s.records[code]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownDriver, code)
	}
	return rec, nil
}

func (s *Store) Codes() []string {
	return lo.Keys(s.records)
}

func (s *Store) Len() int { return len(s.records) }
