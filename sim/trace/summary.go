package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents    int
	Appends        map[string]int // channel → appends
	Removes        map[string]int // channel → removes
	Edits          int
	IdleCount      int
	UniqueProcs    int
	TerminatedPIDs []int // in termination order
}

// Summarize computes aggregate statistics from a SimulationTrace.
// terminatedChannel names the channel whose appends count as terminations.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace, terminatedChannel string) *TraceSummary {
	summary := &TraceSummary{
		Appends: make(map[string]int),
		Removes: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	pools := st.Pools()
	seen := make(map[int]bool)
	for _, p := range pools {
		switch p.Op {
		case "append":
			summary.Appends[p.Channel]++
			if p.Channel == terminatedChannel {
				summary.TerminatedPIDs = append(summary.TerminatedPIDs, p.PID)
			}
		case "remove":
			summary.Removes[p.Channel]++
		}
		seen[p.PID] = true
	}
	summary.UniqueProcs = len(seen)
	summary.Edits = len(st.Edits())
	summary.IdleCount = len(st.Idles())
	summary.TotalEvents = len(pools) + summary.Edits + summary.IdleCount

	return summary
}
