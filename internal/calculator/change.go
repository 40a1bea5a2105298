package calculator

// PercentChange computes (current-past)/past*100 with an explicit policy
// for past == 0: +100 when interest appeared from nothing, 0 when both
// are empty. Keeps fresh strikes from producing infinities.
func PercentChange(past, current int64) float64 {
	if past == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-past) / float64(past) * 100.0
}

// PCR computes the put-call ratio capped at ceiling to keep a near-zero
// call denominator from producing runaway values. Both sides zero reads
// as neutral 1.0.
func PCR(putOI, callOI int64, ceiling float64) float64 {
	if callOI == 0 {
		if putOI == 0 {
			return 1.0
		}
		return ceiling
	}
	pcr := float64(putOI) / float64(callOI)
	if pcr > ceiling {
		return ceiling
	}
	return pcr
}
