package grpc_control

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"biometric-insights/src/helpers"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeRunner struct {
	report   *models.MReport
	timeline *models.MTimeline
	err      error
}

func (r *fakeRunner) Refresh(ctx context.Context) (*models.MReport, *models.MTimeline, error) {
	return r.report, r.timeline, r.err
}

type fakePublisher struct {
	published []*models.MReport
}

func (p *fakePublisher) Publish(r *models.MReport, _ *models.MTimeline) {
	p.published = append(p.published, r)
}
func (p *fakePublisher) Start() error { return nil }
func (p *fakePublisher) Stop() error  { return nil }

func sampleReport() *models.MReport {
	set := models.NewRecommendationSet()
	set.Insights = append(set.Insights, "Your readiness is good today (score: 78/100).")
	return &models.MReport{
		ID:          "r-1",
		GeneratedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		ReportDate:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Base:        models.SourceReadiness,
		Days:        14,
		Result:      set,
		Text:        "text",
	}
}

func dialService(t *testing.T, svc ReportControlServer) *ReportControlClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterReportControlServer(srv, svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewReportControlClient(conn)
}

// -----------------------------------------------------------------------------

func TestGenerateReport(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	runner := &fakeRunner{
		report: sampleReport(),
		timeline: &models.MTimeline{
			Base:    models.SourceReadiness,
			Columns: []string{"day", "score"},
			Rows:    []models.MTimelineRow{{Day: day, Readiness: &models.MReadinessDay{Day: day, Score: models.Float(78)}}},
		},
	}
	pub := &fakePublisher{}
	client := dialService(t, NewControlService(runner, pub, nil, logger.NewNopLogger()))

	req, err := structpb.NewStruct(map[string]any{"include_timeline": true})
	require.NoError(t, err)

	resp, err := client.GenerateReport(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "r-1", resp.GetFields()["id"].GetStringValue())
	assert.Equal(t, float64(14), resp.GetFields()["days"].GetNumberValue())
	require.Contains(t, resp.GetFields(), "timeline")

	decoded, err := ReportFromStruct(resp)
	require.NoError(t, err)
	assert.Equal(t, sampleReport().Result.Insights, decoded.Result.Insights)
	assert.True(t, sampleReport().GeneratedAt.Equal(decoded.GeneratedAt))

	require.Len(t, pub.published, 1)

	latest, err := client.GetLatestReport(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "r-1", latest.GetFields()["id"].GetStringValue())
	assert.NotContains(t, latest.GetFields(), "timeline")
}

func TestGenerateReport_InsufficientData(t *testing.T) {
	runner := &fakeRunner{err: &helpers.InsufficientDataError{ProfileDir: "Archive/x"}}
	client := dialService(t, NewControlService(runner, nil, nil, logger.NewNopLogger()))

	_, err := client.GenerateReport(context.Background(), &structpb.Struct{})
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestGenerateReport_InternalError(t *testing.T) {
	client := dialService(t, NewControlService(&fakeRunner{err: errors.New("disk")}, nil, nil, logger.NewNopLogger()))

	_, err := client.GenerateReport(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestGetLatestReport_NotFound(t *testing.T) {
	client := dialService(t, NewControlService(&fakeRunner{}, nil, nil, logger.NewNopLogger()))

	_, err := client.GetLatestReport(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
