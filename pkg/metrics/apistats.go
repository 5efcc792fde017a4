package metrics

import "time"

// ApiStats tracks the staged progress of one in-flight request, keyed by
// request id.
type ApiStats struct {
	API       string
	StatsRef  string
	Stages    []Stage
	lastStage time.Time
}

// Stage is one recorded pipeline stage with its delta from the previous one.
type Stage struct {
	Name    string
	DeltaMS int64
}

// NewApiStats starts a stats record for a request.
func NewApiStats(api string) *ApiStats {
	return &ApiStats{API: api, lastStage: time.Now()}
}

// UpdateStage records a stage and returns the milliseconds since the prior
// stage.
func (a *ApiStats) UpdateStage(stage string) int64 {
	now := time.Now()
	delta := now.Sub(a.lastStage).Milliseconds()
	a.lastStage = now
	a.Stages = append(a.Stages, Stage{Name: stage, DeltaMS: delta})
	return delta
}

// AddApiStats registers a stats record for a request id.
func (s *State) AddApiStats(requestID, api string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiStats[requestID] = NewApiStats(api)
	if size := len(s.apiStats); size >= apiStatsSizeWarning {
		s.logger.Warn("api stats map size warning", "size", size)
	}
}

// RemoveApiStats drops the stats record for a request id.
func (s *State) RemoveApiStats(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.apiStats, requestID)
}

// UpdateApiStatsRef attaches a stats reference to an in-flight record.
func (s *State) UpdateApiStatsRef(requestID, statsRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.apiStats[requestID]; ok {
		stats.StatsRef = statsRef
	} else {
		s.logger.Warn("api stats ref for unknown request", "request_id", requestID)
	}
}

// UpdateApiStage records a stage for an in-flight record, returning the
// stage delta in milliseconds or -1 when the request id is unknown.
func (s *State) UpdateApiStage(requestID, stage string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.apiStats[requestID]; ok {
		return stats.UpdateStage(stage)
	}
	s.logger.Error("api stage for unknown request", "request_id", requestID, "stage", stage)
	return -1
}

// GetApiStats returns a copy of the stats record for a request id.
func (s *State) GetApiStats(requestID string) (ApiStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stats, ok := s.apiStats[requestID]; ok {
		return *stats, true
	}
	return ApiStats{}, false
}
