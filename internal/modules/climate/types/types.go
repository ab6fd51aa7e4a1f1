package types

// Station is one monitoring site.
type Station struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Measurement is one dated observation. Date is always YYYY-MM-DD so string
// comparison and calendar comparison agree.
type Measurement struct {
	StationID string
	Date      string
	Prcp      *float64
	Tobs      float64
}

// TempStats holds tobs aggregates; all three are nil when no rows matched.
type TempStats struct {
	Min *float64
	Max *float64
	Avg *float64
}

// PrecipitationEntry is a single-key object {date: prcp}. Several entries may
// share a date when more than one station reported it.
type PrecipitationEntry map[string]*float64

type StationEntry struct {
	Station   string  `json:"Station"`
	Name      string  `json:"Name"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	Elevation float64 `json:"Elevation"`
}

type TobsEntry struct {
	Date              string  `json:"Date"`
	Temperature       float64 `json:"Temperature"`
	MostActiveStation string  `json:"Most Active Station"`
}

type TempStatsEntry struct {
	MinimumTemp *float64 `json:"Minimum Temp"`
	MaximumTemp *float64 `json:"Maximum Temp"`
	AverageTemp *float64 `json:"Average Temp"`
}
