package gtfsrt

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestReadStringExtensionFindsField(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, mtaRailroadStopTimeTrackField, protowire.BytesType)
	b = protowire.AppendString(b, "14")

	track, ok := readStringExtension(b, mtaRailroadStopTimeTrackField)
	if !ok {
		t.Fatal("expected to find the track extension field")
	}
	if track != "14" {
		t.Errorf("track = %q, want %q", track, "14")
	}
}

func TestReadStringExtensionMissing(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	if _, ok := readStringExtension(b, mtaRailroadStopTimeTrackField); ok {
		t.Error("expected no match when the field is absent")
	}
}
