package modem

import "go.uber.org/zap"

// locateFrame scans buf for a preamble run and classifies the data symbols
// that follow it. ok is false when no complete frame lies inside buf.
//
// The scan advances by half a window per step. Whole-window steps can
// straddle every preamble symbol and miss a frame that starts mid-step, so
// the half-window hop trades twice the analysis work for a guarantee that
// at least one scan window lands inside the run. A provisional hit is only
// trusted after PreambleCount consecutive preamble detections at
// whole-window stride, which screens out lone spectral spikes.
func locateFrame(cfg FSKConfig, an *analyzer, log *zap.Logger, buf []float64) ([]Symbol, bool) {
	size := cfg.WindowSize()
	hop := max(size/2, 1)
	fine := max(size/16, 1)

scan:
	for start := 0; start+size <= len(buf); start += hop {
		det := an.dominantTone(buf[start : start+size])
		log.Debug("scan window",
			zap.Int("offset", start),
			zap.Float64("freq", det.Freq),
			zap.Float64("magnitude", det.Magnitude))
		if !cfg.matches(det, cfg.PreambleFreq) {
			continue
		}

		// Confirm the rest of the run before trusting the hit.
		for k := 1; k < cfg.PreambleCount; k++ {
			lo := start + k*size
			if lo+size > len(buf) {
				continue scan
			}
			if !cfg.matches(an.dominantTone(buf[lo:lo+size]), cfg.PreambleFreq) {
				continue scan
			}
		}

		// The accepted anchor can sit up to half a window before the true
		// preamble start, which would smear every data window across two
		// symbols. Walk forward in fine steps from inside the run until the
		// preamble response gives way; the crossover sits half a window
		// before the data region, so it pins the symbol grid far more
		// tightly than the scan hop does.
		walk := start + (cfg.PreambleCount-1)*size + size/2
		for ; walk+size <= len(buf); walk += fine {
			if !cfg.matches(an.dominantTone(buf[walk:walk+size]), cfg.PreambleFreq) {
				break
			}
		}
		dataStart := walk + size/2
		// The walk can stop up to half a window past the true crossover,
		// which leaves the grid late by the same amount. A recording that
		// ends flush with the frame would then lose its last data window
		// off the end; snap the grid back when the shortfall is inside the
		// walk slack. Anything larger means the frame really is cut off.
		if over := dataStart + CodewordBits*size - len(buf); over > 0 && over <= hop+fine {
			dataStart -= over
		}
		log.Debug("preamble run accepted",
			zap.Int("anchor", start),
			zap.Int("dataStart", dataStart))

		// Read the data windows. Running out of recording here is a failed
		// decode, not a reason to rescan.
		syms := make([]Symbol, 0, CodewordBits)
		for k := 0; k < CodewordBits; k++ {
			lo := dataStart + k*size
			if lo+size > len(buf) {
				log.Debug("recording ends inside the data region",
					zap.Int("have", len(syms)),
					zap.Int("want", CodewordBits))
				return nil, false
			}
			det := an.dominantTone(buf[lo : lo+size])
			s := cfg.classify(det)
			log.Debug("data window",
				zap.Int("index", k),
				zap.Stringer("symbol", s),
				zap.Float64("freq", det.Freq),
				zap.Float64("magnitude", det.Magnitude))
			syms = append(syms, s)
		}
		return syms, true
	}
	return nil, false
}
