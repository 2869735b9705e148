package alert

import (
	"context"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alert-monitor/internal/domain/alert"
)

// Struct field names of the status payload.
const (
	fieldLevel      = "level"
	fieldValue      = "value"
	fieldSequence   = "sequence"
	fieldColor      = "color"
	fieldUpdatedAt  = "updated_at"
	fieldInstanceID = "instance_id"
)

// Provider is the read side of the shared alert state.
type Provider interface {
	Reading() domain.Reading
}

// Snapshot is the decoded status payload.
type Snapshot struct {
	// InstanceID identifies the answering process.
	InstanceID string
	// Reading is the last applied sample; zero before the first tick.
	Reading domain.Reading
	// Color is the indicator brush as #RRGGBBAA.
	Color string
}

// Server implements StatusServer on top of a Provider.
type Server struct {
	// provider supplies the current reading.
	provider Provider
	// instanceID is echoed in every answer.
	instanceID string
}

// NewServer wires the provider into a gRPC handler.
func NewServer(provider Provider, instanceID string) *Server {
	return &Server{
		provider:   provider,
		instanceID: instanceID,
	}
}

// GetAlertState returns the latest reading.
func (s *Server) GetAlertState(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.provider == nil {
		return nil, status.Error(codes.Unavailable, "alert state is not available")
	}

	payload, err := toStruct(Snapshot{
		InstanceID: s.instanceID,
		Reading:    s.provider.Reading(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode alert state")
	}

	return payload, nil
}

// toStruct encodes a snapshot. The colour is derived from the level.
func toStruct(snapshot Snapshot) (*structpb.Struct, error) {
	reading := snapshot.Reading

	updatedAt := ""
	if !reading.Timestamp.IsZero() {
		updatedAt = reading.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	return structpb.NewStruct(map[string]any{
		fieldLevel:      reading.Level.String(),
		fieldValue:      reading.Value,
		fieldSequence:   float64(reading.Sequence),
		fieldColor:      domain.HexColor(reading.Level.Color()),
		fieldUpdatedAt:  updatedAt,
		fieldInstanceID: snapshot.InstanceID,
	})
}

// fromStruct decodes a status payload.
func fromStruct(payload *structpb.Struct) (Snapshot, error) {
	fields := payload.GetFields()

	level, err := domain.ParseLevel(fields[fieldLevel].GetStringValue())
	if err != nil {
		return Snapshot{}, err
	}

	sequence := fields[fieldSequence].GetNumberValue()
	if sequence < 0 || sequence != math.Trunc(sequence) {
		return Snapshot{}, fmt.Errorf("invalid sequence %v", sequence)
	}

	var timestamp time.Time
	if raw := fields[fieldUpdatedAt].GetStringValue(); raw != "" {
		if timestamp, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return Snapshot{}, fmt.Errorf("parse updated_at: %w", err)
		}
	}

	return Snapshot{
		InstanceID: fields[fieldInstanceID].GetStringValue(),
		Color:      fields[fieldColor].GetStringValue(),
		Reading: domain.Reading{
			Sequence:  uint64(sequence),
			Value:     fields[fieldValue].GetNumberValue(),
			Level:     level,
			Timestamp: timestamp,
		},
	}, nil
}
