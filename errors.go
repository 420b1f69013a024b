package soundgraph

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWeight      = errors.New("invalid transition weight")
	ErrInvalidDuration    = errors.New("invalid node duration")
	ErrInvalidProbability = errors.New("invalid mutation probability")
	ErrInvalidNode        = errors.New("invalid node")
	ErrUnknownNode        = errors.New("unknown node")
	ErrAssetUnreadable    = errors.New("asset unreadable")
)

// WeightError reports a rejected weight for the edge From -> To.
type WeightError struct {
	From, To int
	Weight   float64
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("%s: %d -> %d: %v", ErrInvalidWeight, e.From, e.To, e.Weight)
}

func (e *WeightError) Unwrap() error { return ErrInvalidWeight }

type DurationError struct {
	Node     int
	Duration float64
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("%s: node %d: %v", ErrInvalidDuration, e.Node, e.Duration)
}

func (e *DurationError) Unwrap() error { return ErrInvalidDuration }

type ProbabilityError struct {
	Probability float64
}

func (e *ProbabilityError) Error() string {
	return fmt.Sprintf("%s: %v not in [0, 1]", ErrInvalidProbability, e.Probability)
}

func (e *ProbabilityError) Unwrap() error { return ErrInvalidProbability }

type UnknownNodeError struct {
	Node int
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnknownNode, e.Node)
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// AssetError is returned by a DurationProbe that cannot examine Asset.
type AssetError struct {
	Asset string
	Err   error
}

func (e *AssetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrAssetUnreadable, e.Asset)
	}
	return fmt.Sprintf("%s: %s: %v", ErrAssetUnreadable, e.Asset, e.Err)
}

func (e *AssetError) Is(target error) bool { return target == ErrAssetUnreadable }

func (e *AssetError) Unwrap() error { return e.Err }

func invalidNodef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidNode, fmt.Sprintf(format, args...))
}
