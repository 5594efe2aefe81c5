package mock

import (
	"encoding/csv"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ChartService/internal/model"
)

// GeneratorConfig holds configuration for the sample data generator
type GeneratorConfig struct {
	Candles   int
	Trades    int
	Start     time.Time
	Interval  time.Duration
	BasePrice float64
	Seed      int64
}

// DefaultGeneratorConfig returns a sensible default configuration
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Candles:   400,
		Trades:    30,
		Start:     time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:  time.Minute,
		BasePrice: 100.0,
		Seed:      time.Now().UnixNano(),
	}
}

// SampleGenerator produces random but internally consistent candles and trades
type SampleGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewSampleGenerator creates a generator with default config
func NewSampleGenerator() *SampleGenerator {
	return NewSampleGeneratorWithConfig(DefaultGeneratorConfig())
}

// NewSampleGeneratorWithConfig creates a generator with custom config
func NewSampleGeneratorWithConfig(config GeneratorConfig) *SampleGenerator {
	return &SampleGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateCandles walks the price randomly, one candle per interval.
// High and Low always bracket Open and Close.
func (g *SampleGenerator) GenerateCandles() []model.CandleRow {
	candles := make([]model.CandleRow, 0, g.config.Candles)
	price := g.config.BasePrice

	for i := 0; i < g.config.Candles; i++ {
		ts := g.config.Start.Add(time.Duration(i) * g.config.Interval)

		price += g.uniform(-0.5, 0.5)
		open := price + g.uniform(-0.3, 0.3)
		closePrice := price + g.uniform(-0.3, 0.3)
		high := max(price+g.uniform(0.1, 0.8), open, closePrice)
		low := min(price-g.uniform(0.1, 0.8), open, closePrice)

		candles = append(candles, model.CandleRow{
			DateTime: model.NewDateTime(ts),
			Open:     round2(open),
			High:     round2(high),
			Low:      round2(low),
			Close:    round2(closePrice),
			Volume:   int64(1000 + g.rng.Intn(4001)),
		})

		price = closePrice
	}
	return candles
}

// GenerateTrades places trades on randomly chosen candles, long or short
// with equal odds, and returns them ordered by entry time.
func (g *SampleGenerator) GenerateTrades(candles []model.CandleRow) []model.TradeRow {
	if len(candles) == 0 {
		return []model.TradeRow{}
	}

	trades := make([]model.TradeRow, 0, g.config.Trades)
	span := len(candles) - 9
	if span < 1 {
		span = 1
	}

	for i := 0; i < g.config.Trades; i++ {
		candle := candles[g.rng.Intn(span)]
		open, _ := candle.Open.Float64()
		entry := open + g.uniform(-0.2, 0.2)

		sign := 1.0
		if g.rng.Intn(2) == 0 {
			sign = -1.0
		}

		reason := "Take Profit"
		if g.rng.Intn(3) == 0 {
			reason = "Stop Loss"
		}

		trades = append(trades, model.TradeRow{
			DateTime:   candle.DateTime,
			Entry:      round2(entry),
			Exit:       round2(entry + sign*g.uniform(0.5, 3.0)),
			TakeProfit: round2(entry + sign*g.uniform(2.0, 5.0)),
			StopLoss:   round2(entry - sign*g.uniform(1.0, 2.5)),
			Reason:     reason,
		})
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].DateTime.Before(trades[j].DateTime.Time)
	})
	return trades
}

func (g *SampleGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// WriteCandlesCSV writes candles with the header the upload endpoints expect
func WriteCandlesCSV(w io.Writer, candles []model.CandleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"DateTime", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, c := range candles {
		err := cw.Write([]string{
			c.DateTime.String(),
			c.Open.StringFixed(2),
			c.High.StringFixed(2),
			c.Low.StringFixed(2),
			c.Close.StringFixed(2),
			strconv.FormatInt(c.Volume, 10),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradesCSV writes trades with the header the upload endpoints expect
func WriteTradesCSV(w io.Writer, trades []model.TradeRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"DateTime", "Entry", "Exit", "TakeProfit", "StopLoss", "Reason"}); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			t.DateTime.String(),
			t.Entry.StringFixed(2),
			t.Exit.StringFixed(2),
			t.TakeProfit.StringFixed(2),
			t.StopLoss.StringFixed(2),
			t.Reason,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
