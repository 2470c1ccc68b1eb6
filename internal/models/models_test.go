package models

import (
	"testing"
	"time"
)

func TestNamespaceRoundTrip(t *testing.T) {
	tests := []struct {
		system System
		id     string
	}{
		{SystemLIRR, "237"},
		{SystemMNR, "1"},
		{SystemSubway, "R16"},
	}

	for _, tt := range tests {
		namespaced := Namespace(tt.system, tt.id)
		system, original, ok := SplitNamespaced(namespaced)
		if !ok {
			t.Fatalf("SplitNamespaced(%q) returned ok=false", namespaced)
		}
		if system != tt.system || original != tt.id {
			t.Errorf("round trip mismatch: got (%s, %s), want (%s, %s)", system, original, tt.system, tt.id)
		}
	}
}

func TestSplitNamespacedRejectsBareID(t *testing.T) {
	if _, _, ok := SplitNamespaced("R16"); ok {
		t.Error("expected ok=false for an id with no namespace separator")
	}
}

func TestDirectionRankOrdering(t *testing.T) {
	ranks := []Direction{DirectionNorth, DirectionSouth, DirectionInbound, DirectionOutbound, DirectionUnknown}
	for i := 1; i < len(ranks); i++ {
		if ranks[i-1].Rank() >= ranks[i].Rank() {
			t.Errorf("expected %s to rank before %s", ranks[i-1], ranks[i])
		}
	}
}

func TestTripPeakLabel(t *testing.T) {
	cases := map[string]string{
		"1": "Peak",
		"0": "Off-Peak",
		"":  "",
	}
	for raw, want := range cases {
		trip := Trip{PeakOffPeak: raw}
		if got := trip.PeakLabel(); got != want {
			t.Errorf("PeakLabel(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestRouteDisplayLabel(t *testing.T) {
	subway := Route{System: SystemSubway, ShortName: "A", LongName: "8th Avenue Express"}
	if got, want := subway.DisplayLabel(), "`A` Express"; got != want {
		t.Errorf("DisplayLabel() = %q, want %q", got, want)
	}

	rail := Route{System: SystemLIRR, LongName: "Babylon Branch"}
	if got, want := rail.DisplayLabel(), "Babylon Branch"; got != want {
		t.Errorf("DisplayLabel() = %q, want %q", got, want)
	}
}

func TestTimePeriodBounds(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	period := TimePeriod{Start: &now, End: &future}

	if period.Start == nil || period.End == nil {
		t.Fatal("TimePeriod pointers should not be nil")
	}
	if !period.End.After(*period.Start) {
		t.Error("end time should be after start time")
	}
}
