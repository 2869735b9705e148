package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alert-monitor/internal/domain/alert"
)

// fakeProvider returns a fixed reading.
type fakeProvider struct {
	reading domain.Reading
}

func (f *fakeProvider) Reading() domain.Reading { return f.reading }

// TestServer_GetAlertState encodes the provider reading.
func TestServer_GetAlertState(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	s := NewServer(&fakeProvider{reading: domain.Reading{
		Sequence:  12,
		Value:     0.91,
		Level:     domain.LevelAlert,
		Timestamp: ts,
	}}, "instance-1")

	payload, err := s.GetAlertState(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	fields := payload.GetFields()
	require.Equal(t, "alert", fields[fieldLevel].GetStringValue())
	require.InDelta(t, 0.91, fields[fieldValue].GetNumberValue(), 1e-9)
	require.InDelta(t, 12, fields[fieldSequence].GetNumberValue(), 1e-9)
	require.Equal(t, "#FF4500FF", fields[fieldColor].GetStringValue())
	require.Equal(t, "instance-1", fields[fieldInstanceID].GetStringValue())

	snapshot, err := fromStruct(payload)
	require.NoError(t, err)
	require.Equal(t, "instance-1", snapshot.InstanceID)
	require.Equal(t, "#FF4500FF", snapshot.Color)
	require.Equal(t, uint64(12), snapshot.Reading.Sequence)
	require.Equal(t, domain.LevelAlert, snapshot.Reading.Level)
	require.True(t, ts.Equal(snapshot.Reading.Timestamp))
}

// TestServer_BeforeFirstReading reports the normal state with no timestamp.
func TestServer_BeforeFirstReading(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeProvider), "")

	payload, err := s.GetAlertState(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	snapshot, err := fromStruct(payload)
	require.NoError(t, err)
	require.True(t, snapshot.Reading.IsZero())
	require.Equal(t, domain.LevelNormal, snapshot.Reading.Level)
	require.Equal(t, "#00000000", snapshot.Color)
}

// TestServer_NoProvider answers Unavailable.
func TestServer_NoProvider(t *testing.T) {
	t.Parallel()

	_, err := NewServer(nil, "x").GetAlertState(context.Background(), new(emptypb.Empty))
	require.Equal(t, codes.Unavailable, status.Code(err))
}

// TestFromStruct_Invalid rejects malformed payloads.
func TestFromStruct_Invalid(t *testing.T) {
	t.Parallel()

	cases := []map[string]any{
		{fieldLevel: "panic"},
		{fieldLevel: "normal", fieldSequence: -1.0},
		{fieldLevel: "normal", fieldSequence: 1.5},
		{fieldLevel: "alert", fieldUpdatedAt: "yesterday"},
	}

	for _, fields := range cases {
		payload, err := structpb.NewStruct(fields)
		require.NoError(t, err)

		_, err = fromStruct(payload)
		require.Error(t, err, fields)
	}
}
