package monitor

import (
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/tempotrack/tempotrack/pkg/accountant"
	"github.com/tempotrack/tempotrack/pkg/ecojoko"
	"github.com/tempotrack/tempotrack/pkg/storage"
	"github.com/tempotrack/tempotrack/pkg/tariff"
	"github.com/tempotrack/tempotrack/pkg/types"
)

// Configured sets up the Monitor and its Ecojoko client from flags.
func Configured(db storage.Database) *Monitor {
	client := ecojoko.Configured()
	m := &Monitor{
		client: client,
		db:     db,
		now:    time.Now,
	}

	pollInterval := lflag.Duration("poll-interval", 5*time.Second, "Delay between refresh cycles")
	statInterval := lflag.Duration("stat-refresh-interval", 30*time.Second, "Minimum delay between stat endpoint fetches")
	timezone := lflag.String("timezone", "Europe/Paris", "IANA timezone of the metered site")
	useHCHP := lflag.Bool("use-hchp", false, "Track the off-peak/on-peak counter split")
	useTempo := lflag.Bool("use-tempo", false, "Track per-color Tempo accumulators")
	useTempHum := lflag.Bool("use-temphum", false, "Track the temperature/humidity sensor")
	useProd := lflag.Bool("use-prod", false, "Track the production surplus counter")

	lflag.Do(func() {
		loc, err := time.LoadLocation(*timezone)
		if err != nil {
			panic(fmt.Sprintf("invalid timezone %q: %v", *timezone, err))
		}
		m.loc = loc
		m.res = tariff.NewResolver(client, loc)
		m.acct = accountant.New(loc)
		m.pollInterval = *pollInterval
		m.statInterval = *statInterval
		m.feats = types.Features{
			UseHCHP:    *useHCHP,
			UseTempo:   *useTempo,
			UseTempHum: *useTempHum,
			UseProd:    *useProd,
		}
	})

	return m
}
