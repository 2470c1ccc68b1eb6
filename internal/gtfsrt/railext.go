package gtfsrt

import (
	gtfsrtpb "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

// The MTA-Railroad (LIRR/MNR) GTFS-Realtime extension has no published Go
// binding anywhere in this codebase's dependency set, unlike the NYCT
// subway extension (github.com/jamespfennell/gtfs/extensions/nycttrips).
// Rather than fabricate a .proto-generated package for an undocumented
// field, this reads the track extension straight off the wire: proto.Unmarshal
// preserves fields it doesn't recognize as the message's unknown-field set,
// and mtaRailroadStopTimeTrackField is the field number the upstream
// extension assigns to a StopTimeUpdate's assigned track string.
const mtaRailroadStopTimeTrackField = protowire.Number(1003)

type railTrackKey struct {
	tripID string
	stopID string
}

// extractRailTracks re-parses the raw feed bytes (already parsed once by
// gtfs.ParseRealtime for everything the library understands) purely to
// recover the track extension on each stop-time update.
func extractRailTracks(body []byte) (map[railTrackKey]string, error) {
	msg := &gtfsrtpb.FeedMessage{}
	if err := proto.Unmarshal(body, msg); err != nil {
		return nil, err
	}

	tracks := make(map[railTrackKey]string)
	for _, entity := range msg.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}
		tripID := tu.GetTrip().GetTripId()
		for _, stu := range tu.GetStopTimeUpdate() {
			unknown := []byte(stu.ProtoReflect().GetUnknown())
			track, ok := readStringExtension(unknown, mtaRailroadStopTimeTrackField)
			if !ok {
				continue
			}
			tracks[railTrackKey{tripID: tripID, stopID: stu.GetStopId()}] = track
		}
	}
	return tracks, nil
}

// readStringExtension scans a message's raw unknown-field bytes for a
// length-delimited field numbered want, returning its value as a string.
func readStringExtension(b []byte, want protowire.Number) (string, bool) {
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return "", false
		}
		rest := b[tagLen:]

		valLen := protowire.ConsumeFieldValue(num, typ, rest)
		if valLen < 0 {
			return "", false
		}

		if num == want && typ == protowire.BytesType {
			if v, n := protowire.ConsumeBytes(rest); n >= 0 {
				return string(v), true
			}
		}

		b = rest[valLen:]
	}
	return "", false
}
