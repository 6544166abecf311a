// Package main implements the tdd CLI, which prints the insulin breakdown of one
// day, or with -sync copies Nightscout entries and treatments into InfluxDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/doserecorder"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/influxsink"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/localfile"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/nightscout"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/report"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/dailydose"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/glucosesync"
)

var (
	dataDir       = flag.String("data-dir", "data", "Directory holding profile.json and treatments.json")
	nightscoutURL = flag.String("nightscout-url", "", "Nightscout base URL (or set NIGHTSCOUT_URL); overrides -data-dir")
	token         = flag.String("token", "", "Nightscout access token (or set NIGHTSCOUT_TOKEN)")
	date          = flag.String("date", "2024-12-12", "Local calendar day to report (YYYY-MM-DD)")
	schedule      = flag.String("schedule", "", "Basal schedule name in the profile store (default: the profile's defaultProfile)")
	noColor       = flag.Bool("no-color", false, "Disable coloured output")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	timeout       = flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	syncMode      = flag.Bool("sync", false, "Copy Nightscout entries and treatments into InfluxDB (INFLUXDB_* env) instead of reporting")
	syncFrom      = flag.String("from", "", "Sync start, RFC3339 or YYYY-MM-DD (default: newest glucose point in InfluxDB)")
	syncTo        = flag.String("to", "", "Sync end, inclusive, RFC3339 or YYYY-MM-DD (default: now)")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if *nightscoutURL == "" {
		*nightscoutURL = os.Getenv("NIGHTSCOUT_URL")
	}
	if *token == "" {
		*token = os.Getenv("NIGHTSCOUT_TOKEN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *syncMode {
		return runSync(ctx)
	}

	svc := dailydose.NewService(
		newSource(),
		nil, nil, nil,
		aggregate.NewAggregator(aggregate.WithScheduleName(*schedule)),
		nil,
		dailydose.Config{},
	)

	res, err := svc.ComputeDay(ctx, *date, dailydose.ComputeOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdd: %v\n", err)
		return 1
	}

	if err := report.Render(os.Stdout, res.Result, report.Options{NoColor: *noColor}); err != nil {
		fmt.Fprintf(os.Stderr, "tdd: %v\n", err)
		return 1
	}
	return 0
}

func newSource() domain.NightscoutRepository {
	if *nightscoutURL != "" {
		slog.Debug("reading from nightscout", slog.String("url", *nightscoutURL))
		return nightscout.NewClient(nightscout.Config{
			URL:   *nightscoutURL,
			Token: *token,
		})
	}

	slog.Debug("reading from local export", slog.String("dir", *dataDir))
	return localfile.NewSource(*dataDir)
}

func runSync(ctx context.Context) int {
	if *nightscoutURL == "" {
		fmt.Fprintln(os.Stderr, "tdd: -sync needs -nightscout-url or NIGHTSCOUT_URL")
		return 2
	}

	from, err := parseFlagTime(*syncFrom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdd: -from: %v\n", err)
		return 2
	}
	to, err := parseFlagTime(*syncTo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdd: -to: %v\n", err)
		return 2
	}

	influxCfg := doserecorder.LoadConfig()
	sink, err := influxsink.NewSink(ctx, influxsink.Config{
		URL:    influxCfg.InfluxDBURL,
		Token:  influxCfg.InfluxDBToken,
		Org:    influxCfg.InfluxDBOrg,
		Bucket: influxCfg.InfluxDBBucket,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdd: %v\n", err)
		return 1
	}
	defer sink.Close()

	client := nightscout.NewClient(nightscout.Config{
		URL:   *nightscoutURL,
		Token: *token,
	})

	stats, err := glucosesync.NewSyncer(client, sink).Run(ctx, glucosesync.Options{From: from, To: to})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdd: sync: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "synced %s .. %s: %d/%d entries, %d/%d treatments written\n",
		stats.Since.Format(time.RFC3339), stats.Until.Format(time.RFC3339),
		stats.EntriesWritten, stats.EntriesRead,
		stats.TreatmentsWritten, stats.TreatmentsRead,
	)
	return 0
}

// parseFlagTime accepts RFC3339 or a bare date taken as UTC midnight. An empty
// value is the zero time.
func parseFlagTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor %s", v, domain.DateLayout)
	}
	return t, nil
}
