package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	httpmw "github.com/johnquangdev/call-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/internal/usecase/insights"
	"github.com/johnquangdev/call-insights/internal/usecase/kpi"
	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/jwt"
)

const webhookSecret = "hook-secret"

var (
	errInvalidCredentials   = usecaseErrors.ErrInvalidCredentials
	errForeignOrganization  = usecaseErrors.ErrForeignOrganization
	errNoTranscriptProvided = usecaseErrors.ErrNoTranscriptProvided
	errInsightsNotFound     = usecaseErrors.ErrInsightsNotFound
	errArchiveDisabled      = usecaseErrors.ErrArchiveDisabled
)

var (
	testOrgID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

	managerPrincipal = &auth.Principal{
		SessionID:      uuid.New(),
		AuthType:       jwt.AuthTypeUser,
		Subject:        "22222222-2222-2222-2222-222222222222",
		Email:          "dana@example.com",
		FullName:       "Dana Scott",
		Role:           entities.RoleManager,
		OrganizationID: &testOrgID,
		User: &entities.User{
			ID:    uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Email: "dana@example.com",
			Profile: &entities.UserProfile{
				Role:           entities.RoleManager,
				FirstName:      "Dana",
				LastName:       "Scott",
				OrganizationID: &testOrgID,
			},
		},
	}
	repPrincipal = &auth.Principal{
		SessionID:      uuid.New(),
		AuthType:       jwt.AuthTypeSalesRep,
		Subject:        "7",
		Email:          "sam@example.com",
		FullName:       "Sam Lee",
		Role:           entities.RoleSalesRep,
		OrganizationID: &testOrgID,
	}
)

type fakeAuthenticator map[string]*auth.Principal

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*auth.Principal, error) {
	if p, ok := f[token]; ok {
		return p, nil
	}
	if token == "expired" {
		return nil, entities.ErrSessionExpired
	}
	return nil, entities.ErrInvalidToken
}

type fakeAuthService struct {
	registerIn auth.RegisterInput
	registerFn func(auth.RegisterInput) (*auth.RegisterOutput, error)
	loggedOut  *auth.Principal
}

func (f *fakeAuthService) Register(_ context.Context, in auth.RegisterInput) (*auth.RegisterOutput, error) {
	f.registerIn = in
	if f.registerFn != nil {
		return f.registerFn(in)
	}
	return &auth.RegisterOutput{UserID: uuid.New(), OrganizationID: testOrgID, Role: in.Role}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string, _ auth.SessionMeta) (*auth.TokenOutput, error) {
	if email == "dana@example.com" && password == "secret1" {
		return &auth.TokenOutput{AccessToken: "manager-token"}, nil
	}
	return nil, errInvalidCredentials
}

func (f *fakeAuthService) SalesRepLogin(_ context.Context, email, password string, _ auth.SessionMeta) (*auth.SalesRepTokenOutput, error) {
	if email == "sam@example.com" && password == "secret1" {
		return &auth.SalesRepTokenOutput{
			TokenOutput: auth.TokenOutput{AccessToken: "rep-token"},
			ID:          7,
			FullName:    "Sam Lee",
			Email:       email,
			Role:        entities.RoleSalesRep,
		}, nil
	}
	return nil, errInvalidCredentials
}

func (f *fakeAuthService) Logout(_ context.Context, p *auth.Principal) error {
	f.loggedOut = p
	return nil
}

func (f *fakeAuthService) CreateOrganization(_ context.Context, _ *auth.Principal, name string) (*entities.Organization, error) {
	return entities.NewOrganization(name), nil
}

func (f *fakeAuthService) GetOrganization(_ context.Context, p *auth.Principal, id uuid.UUID) (*entities.Organization, error) {
	if p.OrganizationID == nil || *p.OrganizationID != id {
		return nil, errForeignOrganization
	}
	return &entities.Organization{OrganizationID: id, Name: "Dana's Organization"}, nil
}

func (f *fakeAuthService) CreateSalesRep(_ context.Context, p *auth.Principal, in auth.CreateSalesRepInput) (*entities.SalesRep, error) {
	if in.OrganizationID != nil && *in.OrganizationID != *p.OrganizationID {
		return nil, errForeignOrganization
	}
	return &entities.SalesRep{SalesRepID: 9, OrganizationID: *p.OrganizationID, FirstName: in.FirstName, Email: in.Email}, nil
}

func (f *fakeAuthService) ListSalesReps(_ context.Context, p *auth.Principal) ([]*entities.SalesRep, error) {
	return []*entities.SalesRep{{SalesRepID: 7, OrganizationID: *p.OrganizationID, FirstName: "Sam", LastName: "Lee"}}, nil
}

type fakeInsightsService struct {
	transcripts map[string]json.RawMessage
	insights    map[string]json.RawMessage
	analyzed    string
	ingested    []*entities.CallLog
	exportOrg     *uuid.UUID
	ingestErr     error
	transcribeErr error
}

func (f *fakeInsightsService) ListTranscripts(context.Context) ([]string, error) {
	names := make([]string, 0, len(f.transcripts))
	for name := range f.transcripts {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeInsightsService) ReadTranscript(_ context.Context, id string) (json.RawMessage, error) {
	if raw, ok := f.transcripts[id]; ok {
		return raw, nil
	}
	return nil, entities.ErrTranscriptNotFound
}

func (f *fakeInsightsService) AnalyzeCall(ctx context.Context, text, transcriptID string) (*entities.PostCallAnalysis, error) {
	if strings.TrimSpace(text) == "" && transcriptID != "" {
		if _, err := f.ReadTranscript(ctx, transcriptID); err != nil {
			return nil, err
		}
		text = "from file"
	}
	if strings.TrimSpace(text) == "" {
		return nil, errNoTranscriptProvided
	}
	f.analyzed = text
	out := &entities.PostCallAnalysis{}
	out.NextStep.Action = "Send proposal"
	return out, nil
}

func (f *fakeInsightsService) GetCallInsights(_ context.Context, callID string, _ *uuid.UUID) (json.RawMessage, error) {
	if doc, ok := f.insights[callID]; ok {
		return doc, nil
	}
	return nil, errInsightsNotFound
}

func (f *fakeInsightsService) ProcessCallInsights(ctx context.Context, callID string, orgID *uuid.UUID) (json.RawMessage, error) {
	return f.GetCallInsights(ctx, callID, orgID)
}

func (f *fakeInsightsService) Output(context.Context) (insights.Result, error) {
	return insights.NewResult(), nil
}

func (f *fakeInsightsService) ExportInsights(_ context.Context, orgID *uuid.UUID) ([]byte, error) {
	f.exportOrg = orgID
	return insights.WriteWorkbook(nil)
}

func (f *fakeInsightsService) TranscribeCall(_ context.Context, in insights.TranscribeInput) (*entities.CallLog, error) {
	if f.transcribeErr != nil {
		return nil, f.transcribeErr
	}
	return &entities.CallLog{CallID: in.CallID, OrganizationID: in.OrganizationID}, nil
}

func (f *fakeInsightsService) IngestCall(_ context.Context, callLog *entities.CallLog) error {
	if f.ingestErr != nil {
		return f.ingestErr
	}
	f.ingested = append(f.ingested, callLog)
	return nil
}

func (f *fakeInsightsService) ArchivedReports(_ context.Context, callID string, _ *uuid.UUID) ([]insights.ArchivedReport, error) {
	return nil, errArchiveDisabled
}

type fakeKPIService struct {
	gotOrg    uuid.UUID
	gotRange  entities.MonthRange
	products  []kpi.ProductSalesInput
	err       error
	recordErr error
}

func (f *fakeKPIService) Dashboard(_ context.Context, orgID uuid.UUID, rng entities.MonthRange) (*kpi.Dashboard, error) {
	f.gotOrg, f.gotRange = orgID, rng
	if f.err != nil {
		return nil, f.err
	}
	return kpi.BuildDashboard(
		[]entities.ProductTotals{{ProductName: "Widget", UnitsSold: 4, Revenue: 40}},
		[]entities.RepTotals{{RepName: "Sam Lee", Revenue: 40, CallsMade: 4, DealsClosed: 1}},
		nil,
	), nil
}

func (f *fakeKPIService) ExportDashboard(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]byte, error) {
	d, err := f.Dashboard(ctx, orgID, rng)
	if err != nil {
		return nil, err
	}
	return kpi.WriteWorkbook(d)
}

func (f *fakeKPIService) RecordProductSales(_ context.Context, orgID uuid.UUID, in kpi.ProductSalesInput) (*entities.ProductSales, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.gotOrg = orgID
	f.products = append(f.products, in)
	return &entities.ProductSales{OrganizationID: orgID, ProductName: in.ProductName}, nil
}

func (f *fakeKPIService) RecordRepPerformance(_ context.Context, orgID uuid.UUID, in kpi.RepPerformanceInput) (*entities.RepPerformance, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return &entities.RepPerformance{OrganizationID: orgID, RepName: in.RepName}, nil
}

type testServer struct {
	e        *echo.Echo
	auth     *fakeAuthService
	insights *fakeInsightsService
	kpi      *fakeKPIService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		e:    echo.New(),
		auth: &fakeAuthService{},
		insights: &fakeInsightsService{
			transcripts: map[string]json.RawMessage{},
			insights:    map[string]json.RawMessage{},
		},
		kpi: &fakeKPIService{},
	}
	logger := zap.NewNop()
	authenticator := fakeAuthenticator{"manager-token": managerPrincipal, "rep-token": repPrincipal}
	router := NewRouter(
		&config.Config{Server: config.ServerConfig{Environment: "test"}},
		logger,
		NewAuth(ts.auth, logger),
		NewInsights(ts.insights, logger),
		NewKPI(ts.kpi, logger),
		NewWebhookHandler(ts.insights, webhookSecret, logger),
		httpmw.EchoAuth(authenticator),
	)
	router.Setup(ts.e)
	return ts
}

func (ts *testServer) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}
