package ecojoko

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempotrack/tempotrack/pkg/log"
	"github.com/tempotrack/tempotrack/pkg/types"
)

const (
	dateFormat = "2006-01-02"

	labelOffPeak = "Heures Creuses"
	labelOnPeak  = "Heures Pleines"
)

type realtimeResult struct {
	RealTime struct {
		Value float64 `json:"value"`
	} `json:"real_time"`
}

// RealtimePower fetches the instantaneous grid consumption in watts.
func (c *Client) RealtimePower(ctx context.Context) (float64, bool, error) {
	var res realtimeResult
	ok, err := c.getJSON(ctx, c.devicePath(c.identity.PowerMeterID)+"/realtime_conso", &res)
	if err != nil || !ok {
		return 0, false, err
	}
	return res.RealTime.Value, true, nil
}

type subconsumption struct {
	Label string  `json:"label"`
	KWH   float64 `json:"kwh"`
}

type periodResult struct {
	Period struct {
		KWH            float64          `json:"kwh"`
		KWHProd        float64          `json:"kwh_prod"`
		Subconsumption []subconsumption `json:"subconsumption"`
	} `json:"period"`
}

// PeriodCounters fetches the cumulative since-midnight aggregates for the
// given day. Total is always set; the HC/HP split and the production surplus
// are populated only when the matching feature is enabled. The surplus is
// negated so that exporting reads negative.
func (c *Client) PeriodCounters(ctx context.Context, day time.Time, feats types.Features) (types.CumulativeCounters, bool, error) {
	path := fmt.Sprintf("%s/period/%s", c.devicePath(c.identity.PowerMeterID), day.Format(dateFormat))

	var res periodResult
	ok, err := c.getJSON(ctx, path, &res)
	if err != nil || !ok {
		return types.CumulativeCounters{}, false, err
	}

	counters := types.CumulativeCounters{TotalKWH: res.Period.KWH}
	if feats.UseHCHP || feats.UseTempo {
		for _, sub := range res.Period.Subconsumption {
			switch sub.Label {
			case labelOffPeak:
				counters.OffPeakKWH = types.Float64Ptr(sub.KWH)
			case labelOnPeak:
				counters.OnPeakKWH = types.Float64Ptr(sub.KWH)
			}
		}
	}
	if feats.UseProd {
		surplus := 0.0
		if res.Period.KWHProd != 0 {
			surplus = -res.Period.KWHProd
		}
		counters.ProductionSurplusKWH = &surplus
	}

	log.Ctx(ctx).DebugContext(ctx, "ecojoko period counters",
		slog.Float64("totalKWH", counters.TotalKWH),
		slog.Any("offPeakKWH", counters.OffPeakKWH),
		slog.Any("onPeakKWH", counters.OnPeakKWH),
	)
	return counters, true, nil
}

type pricingDetailsResult struct {
	PricingDetails []struct {
		Label string `json:"label"`
	} `json:"pricing_details"`
}

// PricingDetail fetches the Tempo label active in the hour slot containing
// the given instant.
func (c *Client) PricingDetail(ctx context.Context, at time.Time) (types.ColorLabel, bool, error) {
	path := fmt.Sprintf("%s/pricing_details/%s/%02d",
		c.devicePath(c.identity.PowerMeterID), at.Format(dateFormat), at.Hour())

	var res pricingDetailsResult
	ok, err := c.getJSON(ctx, path, &res)
	if err != nil || !ok {
		return "", false, err
	}
	if len(res.PricingDetails) == 0 {
		return "", false, fmt.Errorf("pricing_details: empty for %s", at.Format(dateFormat))
	}

	label := types.ColorLabel(res.PricingDetails[0].Label)
	if !label.Valid() {
		return "", false, fmt.Errorf("pricing_details: unknown label %q", res.PricingDetails[0].Label)
	}
	return label, true, nil
}

type statResult struct {
	Stat struct {
		Data []struct {
			Value    float64 `json:"value"`
			ExtValue float64 `json:"ext_value"`
			Power    float64 `json:"power"`
			KWH      float64 `json:"kwh"`
		} `json:"data"`
	} `json:"stat"`
}

// TempStat fetches today's indoor/outdoor temperature series and returns the
// latest sample.
func (c *Client) TempStat(ctx context.Context, day time.Time) (indoor, outdoor float64, ok bool, err error) {
	return c.lastStatPair(ctx, fmt.Sprintf("%s/tempstat/d4/%s", c.devicePath(c.identity.TempHumID), day.Format(dateFormat)))
}

// HumStat fetches today's indoor/outdoor humidity series and returns the
// latest sample.
func (c *Client) HumStat(ctx context.Context, day time.Time) (indoor, outdoor float64, ok bool, err error) {
	return c.lastStatPair(ctx, fmt.Sprintf("%s/humstat/d4/%s", c.devicePath(c.identity.TempHumID), day.Format(dateFormat)))
}

func (c *Client) lastStatPair(ctx context.Context, path string) (float64, float64, bool, error) {
	var res statResult
	ok, err := c.getJSON(ctx, path, &res)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	if len(res.Stat.Data) == 0 {
		return 0, 0, false, nil
	}
	last := res.Stat.Data[len(res.Stat.Data)-1]
	return last.Value, last.ExtValue, true, nil
}

// LastMeasure fetches the half-hourly power series for the day and returns
// the most recent completed interval's power and energy.
func (c *Client) LastMeasure(ctx context.Context, day time.Time) (powerW, kwh float64, ok bool, err error) {
	path := fmt.Sprintf("%s/powerstat/hh/%s", c.devicePath(c.identity.PowerMeterID), day.Format(dateFormat))

	var res statResult
	found, err := c.getJSON(ctx, path, &res)
	if err != nil || !found {
		return 0, 0, false, err
	}
	if len(res.Stat.Data) == 0 {
		return 0, 0, false, nil
	}
	last := res.Stat.Data[len(res.Stat.Data)-1]
	return last.Power, last.KWH, true, nil
}
