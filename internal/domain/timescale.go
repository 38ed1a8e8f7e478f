package domain

// Timescale identifies the time standard a constellation's signals refer to.
type Timescale uint8

// Supported timescales.
const (
	GPST Timescale = iota + 1
	GST
	BDT
	QZSST
	UTC
)

var timescaleNames = map[Timescale]string{
	GPST:  "GPST",
	GST:   "GST",
	BDT:   "BDT",
	QZSST: "QZSST",
	UTC:   "UTC",
}

// String returns the conventional abbreviation.
func (t Timescale) String() string {
	if name, ok := timescaleNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Timescale) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
