package matching

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/conciliar/internal/normalize"
)

var ErrInvalidConfig = errors.New("invalid matching config")

// Config holds the scoring weights, the acceptance threshold and the date
// window. Weights are points out of 100.
type Config struct {
	WeightAmount      int
	WeightDate        int
	WeightDescription int
	Threshold         int
	WindowDays        int
	Similarity        normalize.Similarity
}

// DefaultConfig returns the calibrated defaults: an exact amount on the same
// day with matching wording scores 100, an amount match alone scores 50 and
// is not suggested.
func DefaultConfig() Config {
	return Config{
		WeightAmount:      50,
		WeightDate:        25,
		WeightDescription: 25,
		Threshold:         60,
		WindowDays:        3,
		Similarity:        normalize.TokenOverlap,
	}
}

func (c Config) Validate() error {
	if c.WeightAmount < 0 || c.WeightDate < 0 || c.WeightDescription < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	}

	if sum := c.WeightAmount + c.WeightDate + c.WeightDescription; sum != 100 {
		return fmt.Errorf("%w: weights sum to %d, want 100", ErrInvalidConfig, sum)
	}

	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("%w: threshold %d outside 0-100", ErrInvalidConfig, c.Threshold)
	}

	if c.WindowDays < 0 {
		return fmt.Errorf("%w: negative date window", ErrInvalidConfig)
	}

	if c.Similarity == nil {
		return fmt.Errorf("%w: missing similarity function", ErrInvalidConfig)
	}

	return nil
}

// SimilarityByName resolves the configured description similarity.
func SimilarityByName(name string) (normalize.Similarity, error) {
	switch name {
	case "", "tokens":
		return normalize.TokenOverlap, nil
	case "fuzzy":
		return normalize.FuzzyTokenOverlap, nil
	}

	return nil, fmt.Errorf("%w: unknown similarity %q", ErrInvalidConfig, name)
}
