package soundgraph

// DurationProbe reports the playable length of a sound asset in seconds.
// Implementations return an error matching ErrAssetUnreadable when the
// asset cannot be examined.
type DurationProbe interface {
	Duration(asset string) (float64, error)
}

// ProbeFunc adapts a function to DurationProbe.
type ProbeFunc func(asset string) (float64, error)

func (f ProbeFunc) Duration(asset string) (float64, error) {
	return f(asset)
}
