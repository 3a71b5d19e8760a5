package indicator

import "github.com/markcheno/go-talib"

// maskLookback overwrites series[0:lookback) with NaN in place. go-talib
// fills an indicator's unstable leading region with 0.0 rather than NaN;
// every wrapper below corrects that so a bar before an indicator's true
// warmup reads as NaN (per spec: "for bar indices before an indicator's
// warmup, the result is NaN"), not a spurious 0.
func maskLookback(series []float64, lookback int) []float64 {
	if lookback > len(series) {
		lookback = len(series)
	}
	if lookback < 0 {
		lookback = 0
	}
	for i := 0; i < lookback; i++ {
		series[i] = nan()
	}
	return series
}

// talibSMA is the Simple Moving Average.
func talibSMA(close []float64, period int) []float64 {
	return maskLookback(talib.Sma(close, period), period-1)
}

// talibEMA is the Exponential Moving Average, seeded by the SMA of the
// first period bars with alpha = 2/(period+1).
func talibEMA(close []float64, period int) []float64 {
	return maskLookback(talib.Ema(close, period), period-1)
}

// talibRSI is the Relative Strength Index with Wilder smoothing.
func talibRSI(close []float64, period int) []float64 {
	return maskLookback(talib.Rsi(close, period), period)
}

// talibATR is the Average True Range with Wilder smoothing.
func talibATR(high, low, close []float64, period int) []float64 {
	return maskLookback(talib.Atr(high, low, close, period), period)
}

// talibADX is the Average Directional Index. Its lookback is nearly
// double a plain moving average's: the directional indicators need
// `period` bars, and ADX itself smooths those over another `period-1`.
func talibADX(high, low, close []float64, period int) []float64 {
	return maskLookback(talib.Adx(high, low, close, period), 2*period-1)
}

// talibPlusDI is the Plus Directional Indicator.
func talibPlusDI(high, low, close []float64, period int) []float64 {
	return maskLookback(talib.PlusDI(high, low, close, period), period)
}

// talibMinusDI is the Minus Directional Indicator.
func talibMinusDI(high, low, close []float64, period int) []float64 {
	return maskLookback(talib.MinusDI(high, low, close, period), period)
}

// talibBBands returns Bollinger Bands (upper, middle, lower); middle is
// the SMA, bands are middle +/- stddev*sigma (population sigma).
func talibBBands(close []float64, period int, stddev float64) (upper, middle, lower []float64) {
	upper, middle, lower = talib.BBands(close, period, stddev, stddev, talib.SMA)
	lookback := period - 1
	return maskLookback(upper, lookback), maskLookback(middle, lookback), maskLookback(lower, lookback)
}

// talibStochastic returns the %K/%D stochastic oscillator. Both outputs
// are already smoothed with a dPeriod-length SMA (see the Stoch call
// below), so %K's lookback is kPeriod-1+dPeriod-1 and %D's carries one
// more round of dPeriod-1 smoothing on top of that.
func talibStochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64) {
	k, d = talib.Stoch(high, low, close, kPeriod, dPeriod, talib.SMA, dPeriod, talib.SMA)
	kLookback := kPeriod - 1 + dPeriod - 1
	dLookback := kLookback + dPeriod - 1
	return maskLookback(k, kLookback), maskLookback(d, dLookback)
}

// talibMACD returns the MACD line, signal line, and histogram.
func talibMACD(close []float64, fast, slow, signal int) (line, sig, hist []float64) {
	line, sig, hist = talib.Macd(close, fast, slow, signal)
	lineLookback := slow - 1
	sigLookback := lineLookback + signal - 1
	return maskLookback(line, lineLookback), maskLookback(sig, sigLookback), maskLookback(hist, sigLookback)
}
