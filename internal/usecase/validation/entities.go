package validation

// HistoryLimit is how many decided records History returns.
const HistoryLimit = 50

type Statistics struct {
	Pending   int64 `json:"pending"`
	Validated int64 `json:"validated"`
	Rejected  int64 `json:"rejected"`
	Total     int64 `json:"total"`
}
