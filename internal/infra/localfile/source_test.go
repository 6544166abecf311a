package localfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
)

const profileJSON = `[
  {
    "_id": {"$oid": "6759a7b1e4b0c2a1d3f4e5a6"},
    "defaultProfile": "NR Profil",
    "startDate": "2024-12-01T00:00:00.000Z",
    "utcOffset": 60,
    "store": {
      "NR Profil": {
        "timezone": "Europe/Berlin",
        "units": "mg/dl",
        "dia": 5,
        "basal": [
          {"time": "00:00", "value": 0.8, "timeAsSeconds": 0},
          {"time": "06:00", "value": 1.2, "timeAsSeconds": 21600}
        ]
      }
    }
  }
]`

const treatmentsJSON = `[
  {"_id": {"$oid": "a1"}, "eventType": "Correction Bolus", "date": {"$numberLong": "1733961600000"}, "insulin": 2.5},
  {"_id": {"$oid": "a2"}, "eventType": "Temp Basal", "date": {"$numberLong": "1733994000000"}, "rate": 0, "durationInMilliseconds": 1800000},
  {"_id": "a3", "eventType": "Meal Bolus", "date": 1734000000000, "insulin": 4},
  {"_id": {"$oid": "a4"}, "eventType": "Note", "created_at": "2024-12-12T10:00:00Z"},
  "not an object",
  {"_id": {"$oid": "a5"}, "eventType": "Correction Bolus", "date": {"$numberLong": "1734134400000"}, "insulin": 9}
]`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProfileFile), []byte(profileJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, TreatmentsFile), []byte(treatmentsJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestSource_GetProfiles(t *testing.T) {
	src := NewSource(writeFixture(t))

	profiles, err := src.GetProfiles(context.Background())
	if err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("len(profiles) = %d, want 1", len(profiles))
	}

	basal, err := profiles[0].BasalSchedule("NR Profil")
	if err != nil {
		t.Fatalf("BasalSchedule() error = %v", err)
	}
	if len(basal) != 2 || basal[1].TimeAsSeconds != 21600 {
		t.Errorf("basal = %+v", basal)
	}
}

func TestSource_GetTreatments(t *testing.T) {
	src := NewSource(writeFixture(t))

	from := time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)
	treatments, err := src.GetTreatments(context.Background(), from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetTreatments() error = %v", err)
	}

	if len(treatments) != 3 {
		t.Fatalf("len(treatments) = %d, want 3", len(treatments))
	}
	if treatments[0].ID != "a1" || treatments[2].ID != "a3" {
		t.Errorf("ids = %s..%s, want a1..a3", treatments[0].ID, treatments[2].ID)
	}
	if !treatments[1].IsTempBasal() {
		t.Error("treatments[1] should be a temp basal")
	}
}

func TestSource_MissingFile(t *testing.T) {
	src := NewSource(t.TempDir())

	_, err := src.GetProfiles(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("GetProfiles() error = %v, want fs.ErrNotExist", err)
	}
}

func TestSource_EndToEnd(t *testing.T) {
	src := NewSource(writeFixture(t))
	ctx := context.Background()

	profiles, err := src.GetProfiles(ctx)
	if err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
	window, err := aggregate.ResolveDayWindow("2024-12-12", 60)
	if err != nil {
		t.Fatalf("ResolveDayWindow() error = %v", err)
	}
	treatments, err := src.GetTreatments(ctx, window.Start(), window.End())
	if err != nil {
		t.Fatalf("GetTreatments() error = %v", err)
	}

	result, err := aggregate.NewAggregator().Calculate(profiles, treatments, "2024-12-12")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if result.NoData {
		t.Fatal("NoData = true, want false")
	}
	if result.TotalBolus != 6.5 {
		t.Errorf("TotalBolus = %v, want 6.5", result.TotalBolus)
	}
}
