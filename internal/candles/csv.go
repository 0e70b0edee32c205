// Package candles provides the historical candle source: plain CSV
// files with ts,open,high,low,close,volume rows. Live feeds are out of
// scope; anything implementing interfaces.CandleSource can replace it.
package candles

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/types"
)

type CSVSource struct {
	path string
}

var _ interfaces.CandleSource = (*CSVSource)(nil)

func NewCSV(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Candles(ctx context.Context, symbol, timeframe string) ([]types.Candle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	out := make([]types.Candle, 0, len(rows))
	for i, row := range rows {
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("%s:%d: bad timestamp %q", s.path, i+1, row[0])
		}
		c := types.Candle{Ts: ts}
		for j, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Vol} {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad value %q", s.path, i+1, row[j+1])
			}
			*dst = v
		}
		if n := len(out); n > 0 && c.Ts <= out[n-1].Ts {
			return nil, fmt.Errorf("%s:%d: timestamps not strictly increasing", s.path, i+1)
		}
		out = append(out, c)
	}
	return out, nil
}
