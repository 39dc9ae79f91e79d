// Package analysis finds oscillation in recorded flight series.
//
// A hovering vehicle that is tuned too hot rocks around its set point. The
// power spectrum of a column such as altitude or roll shows the rocking as
// a peak:
//
//	peak, err := analysis.DominantFrequency(altitude, dt)
//	if peak.Frequency > 0.5 {
//	    // the altitude loop is ringing
//	}
package analysis
