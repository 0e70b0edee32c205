// Package ta holds the indicator library: pure series-to-series
// transforms. Every function is deterministic, reduces length by its
// warmup window, and returns an empty series instead of an error when
// the input is shorter than the minimum it needs. Callers check length
// before indexing.
package ta

import "math"

// EMA returns the exponential moving average of xs. The first output
// element is the simple average of the first period values; output
// length is len(xs)-period+1.
func EMA(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	seed := 0.0
	for _, v := range xs[:period] {
		seed += v
	}
	prev := seed / float64(period)
	out := make([]float64, 0, len(xs)-period+1)
	out = append(out, prev)
	k := 2.0 / float64(period+1)
	for _, v := range xs[period:] {
		prev = v*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

// SMA returns the rolling simple average, length len(xs)-period+1.
func SMA(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	out := make([]float64, 0, len(xs)-period+1)
	sum := 0.0
	for i, v := range xs {
		sum += v
		if i >= period {
			sum -= xs[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// StdDev returns the rolling population standard deviation, length
// len(xs)-period+1.
func StdDev(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	means := SMA(xs, period)
	out := make([]float64, 0, len(means))
	for i, m := range means {
		s := 0.0
		for _, v := range xs[i : i+period] {
			d := v - m
			s += d * d
		}
		out = append(out, math.Sqrt(s/float64(period)))
	}
	return out
}

type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the fast/slow EMA difference, its signal EMA and the
// histogram. The two EMAs start at different offsets of xs, so the
// longer one is truncated from the front to the common trailing window
// before subtracting; Histogram is aligned against Signal the same way.
func MACD(xs []float64, fast, slow, signal int) MACDResult {
	fastEMA := EMA(xs, fast)
	slowEMA := EMA(xs, slow)
	if len(fastEMA) == 0 || len(slowEMA) == 0 {
		return MACDResult{}
	}
	n := len(fastEMA)
	if len(slowEMA) < n {
		n = len(slowEMA)
	}
	fo := len(fastEMA) - n
	so := len(slowEMA) - n
	line := make([]float64, n)
	for i := 0; i < n; i++ {
		line[i] = fastEMA[i+fo] - slowEMA[i+so]
	}
	sig := EMA(line, signal)
	hist := make([]float64, len(sig))
	shift := len(line) - len(sig)
	for i := range sig {
		hist[i] = line[i+shift] - sig[i]
	}
	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}

type Bands struct {
	Mid   []float64
	Upper []float64
	Lower []float64
}

// Bollinger returns mid/upper/lower band series over a rolling window,
// each of length len(xs)-period+1.
func Bollinger(xs []float64, period int, k float64) Bands {
	mid := SMA(xs, period)
	sd := StdDev(xs, period)
	if len(mid) == 0 {
		return Bands{}
	}
	up := make([]float64, len(mid))
	low := make([]float64, len(mid))
	for i := range mid {
		up[i] = mid[i] + k*sd[i]
		low[i] = mid[i] - k*sd[i]
	}
	return Bands{Mid: mid, Upper: up, Lower: low}
}

// RSI returns the Wilder-smoothed relative strength index, length
// len(xs)-period. A loss-free window with gains yields 100, a flat
// window 50.
func RSI(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period+1 {
		return nil
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := xs[i] - xs[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out := make([]float64, 0, len(xs)-period)
	out = append(out, rsiValue(avgGain, avgLoss))
	p := float64(period)
	for i := period + 1; i < len(xs); i++ {
		gain, loss := 0.0, 0.0
		if d := xs[i] - xs[i-1]; d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(gain, loss float64) float64 {
	if loss == 0 {
		if gain == 0 {
			// No movement either way reads as neutral, not
			// maximally overbought.
			return 50.0
		}
		return 100.0
	}
	rs := gain / loss
	return 100.0 - (100.0 / (1.0 + rs))
}

// ATR returns the Wilder-smoothed average true range, length
// len(closes)-period. Mismatched input lengths yield an empty series.
func ATR(highs, lows, closes []float64, period int) []float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil
	}
	if period <= 0 || len(closes) < period+1 {
		return nil
	}
	trs := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		tr := highs[i] - lows[i]
		if v := math.Abs(highs[i] - closes[i-1]); v > tr {
			tr = v
		}
		if v := math.Abs(lows[i] - closes[i-1]); v > tr {
			tr = v
		}
		trs[i-1] = tr
	}
	seed := 0.0
	for _, v := range trs[:period] {
		seed += v
	}
	prev := seed / float64(period)
	out := make([]float64, 0, len(trs)-period+1)
	out = append(out, prev)
	p := float64(period)
	for _, tr := range trs[period:] {
		prev = (prev*(p-1) + tr) / p
		out = append(out, prev)
	}
	return out
}

// VWAP returns the rolling volume-weighted average price, length
// len(closes)-period+1. A zero-volume window degrades to the plain mean.
func VWAP(closes, vols []float64, period int) []float64 {
	if len(closes) != len(vols) || period <= 0 || len(closes) < period {
		return nil
	}
	out := make([]float64, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		pv, v := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			pv += closes[j] * vols[j]
			v += vols[j]
		}
		if v == 0 {
			sum := 0.0
			for j := i - period + 1; j <= i; j++ {
				sum += closes[j]
			}
			out = append(out, sum/float64(period))
			continue
		}
		out = append(out, pv/v)
	}
	return out
}

// Last returns the final element of a series, or NaN when empty.
func Last(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return xs[len(xs)-1]
}
