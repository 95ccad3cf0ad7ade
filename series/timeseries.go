package series

// TimeSeries marks a Series as temporally indexed. The conversion changes no
// data; it is a capability tag consumed by external collaborators (plotting,
// export) that only accept time-indexed collections. All Series operations
// remain available through embedding.
type TimeSeries struct {
	*Series
}

// ToTimeSeries re-tags the Series as temporally indexed.
func (s *Series) ToTimeSeries() *TimeSeries {
	return &TimeSeries{Series: s}
}
