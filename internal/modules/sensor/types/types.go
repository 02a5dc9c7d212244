package types

// Reading is one decoded sensor sample. Date and Time are normalized at the
// decoder boundary: Date is ISO "2006-01-02", Time is "15:04:05".
type Reading struct {
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Location    string  `json:"location,omitempty"`
}

// Key is the reading's timestamp key, "2006-01-02 15:04:05". Both parts are
// fixed-width, so lexicographic order on keys is chronological order; it is
// used for deduplication, sorting and last-seen tracking.
func (r Reading) Key() string {
	return r.Date + " " + r.Time
}

// DailyAverage is the per-calendar-date mean of temperature and humidity.
type DailyAverage struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Prediction is one forecast day.
type Prediction struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}
