package grpc_control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"biometric-insights/src/helpers"
	"biometric-insights/src/interfaces"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements ReportControlServer on top of the pipeline.
// Publisher and Store are optional.
type ControlService struct {
	Runner    interfaces.IReportRunner
	Publisher interfaces.IReportPublisher
	Store     interfaces.IReportStore
	Logger    *logger.Logger

	mu     sync.RWMutex
	latest *models.MReport
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	runner interfaces.IReportRunner,
	publisher interfaces.IReportPublisher,
	store interfaces.IReportStore,
	log *logger.Logger,
) *ControlService {
	if log == nil {
		log = logger.NewLogger(nil, "ControlService")
	}
	return &ControlService{
		Runner:    runner,
		Publisher: publisher,
		Store:     store,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// GenerateReport runs the pipeline once. The request may set
// "include_timeline" to get the merged timeline back as well.
func (s *ControlService) GenerateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	includeTimeline := false
	if req != nil {
		if v, ok := req.GetFields()["include_timeline"]; ok {
			includeTimeline = v.GetBoolValue()
		}
	}

	r, timeline, err := s.Runner.Refresh(ctx)
	if err != nil {
		if errors.Is(err, helpers.ErrInsufficientData) {
			return nil, status.Error(codes.FailedPrecondition, "Insufficient data for analysis.")
		}
		s.Logger.Error("gRPC: GenerateReport failed: %v", err)
		return nil, status.Errorf(codes.Internal, "report generation failed: %v", err)
	}

	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()

	if s.Publisher != nil {
		s.Publisher.Publish(r, timeline)
	}

	s.Logger.Info("gRPC: GenerateReport success, report %s", r.ID)
	if includeTimeline {
		return toStruct(r, timeline)
	}
	return toStruct(r, nil)
}

// -----------------------------------------------------------------------------

// GetLatestReport returns the last report generated here, falling back to
// the report store.
func (s *ControlService) GetLatestReport(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil && s.Store != nil {
		stored, err := s.Store.LatestReport()
		if err != nil {
			s.Logger.Error("gRPC: failed to read latest report: %v", err)
			return nil, status.Error(codes.Internal, "failed to read report store")
		}
		latest = stored
	}
	if latest == nil {
		return nil, status.Error(codes.NotFound, "no report generated yet")
	}
	return toStruct(latest, nil)
}

// -----------------------------------------------------------------------------

// toStruct converts a report through its JSON form. The timeline is added
// under "timeline" when given.
func toStruct(r *models.MReport, timeline *models.MTimeline) (*structpb.Struct, error) {
	fields, err := jsonFields(r)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report: %v", err)
	}
	if timeline != nil {
		tl, err := jsonFields(timeline)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode timeline: %v", err)
		}
		fields["timeline"] = tl
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return out, nil
}

func jsonFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("not an object: %w", err)
	}
	return fields, nil
}

// ReportFromStruct decodes a response back into a report, for clients.
func ReportFromStruct(st *structpb.Struct) (*models.MReport, error) {
	data, err := st.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var r models.MReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
