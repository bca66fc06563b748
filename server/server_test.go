package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/engine"
)

const productsCSV = `Index,Name,Brand,Category,Price,Stock,Color,Availability
1,Tablet,Mueller Inc,Electronics,502,81,Black,in_stock
2,Radio,Irwin LLC,Electronics,79,0,Black,out_of_stock
3,Office Chair,Sims Ltd,Furniture,419.99,101,White,limited_stock
4,Earbuds,Mueller Inc,Electronics,71.5,22,Silver,in_stock
5,Blender,Lawson,Kitchen Appliances,227,726,SlateGray,in_stock
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := dataset.Parse([]byte(productsCSV), "test.csv")
	require.NoError(t, err)

	srv, err := New(ds, Options{})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

type dashboardResponse struct {
	Message string           `json:"message"`
	Error   bool             `json:"error"`
	Data    engine.ViewModel `json:"data"`
}

func decodeDashboard(t *testing.T, rec *httptest.ResponseRecorder) dashboardResponse {
	t.Helper()
	var body dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ============================================================================
// API
// ============================================================================

func TestPing(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong","data":{"status":"ok"},"requested_entity":"GET /api/v1/ping"}`, rec.Body.String())
}

func TestDashboardAllRows(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeDashboard(t, rec)
	assert.False(t, body.Error)
	assert.Equal(t, 5, body.Data.RowCount)
	assert.Equal(t, 5, body.Data.TotalRows)
	assert.Equal(t, "light", body.Data.Theme)
	assert.Equal(t, "ag-theme-alpine", body.Data.Grid.ClassName)
	assert.Len(t, body.Data.Grid.ColumnDefs, 8)
	assert.Equal(t, "plotly_white", body.Data.Bar.Template)
}

func TestDashboardFiltersAndTheme(t *testing.T) {
	srv := newTestServer(t)
	rec := get(t, srv, "/api/v1/dashboard?category=Electronics&category=Furniture&dark=true")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeDashboard(t, rec)
	assert.Equal(t, 4, body.Data.RowCount)
	assert.Equal(t, []string{"Electronics", "Furniture"}, body.Data.Selection.Categories)
	assert.Equal(t, "dark", body.Data.Theme)
	assert.Equal(t, "ag-theme-alpine-dark", body.Data.Grid.ClassName)
	assert.Equal(t, "plotly_dark", body.Data.Scatter.Template)
	require.Len(t, body.Data.Bar.Series, 1)
	assert.Len(t, body.Data.Bar.Series[0].Data, 2)
}

func TestDashboardIsDeterministic(t *testing.T) {
	srv := newTestServer(t)
	target := "/api/v1/dashboard?category=Electronics"

	first := get(t, srv, target)
	second := get(t, srv, target)

	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestDashboardRejectsBadDarkFlag(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/dashboard?dark=maybe")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInvalidDark)
	assert.Contains(t, rec.Body.String(), `"error":true`)
}

func TestFilters(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Electronics", "Furniture", "Kitchen Appliances"}, body.Data.Categories)
}

func TestThemes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/themes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			ID            string `json:"id"`
			ChartTemplate string `json:"chartTemplate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "light", body.Data[0].ID)
	assert.Equal(t, "plotly_dark", body.Data[1].ChartTemplate)
}

// ============================================================================
// CHART IMAGES
// ============================================================================

func TestChartImages(t *testing.T) {
	srv := newTestServer(t)
	for _, chart := range engine.ChartTypes {
		t.Run(chart, func(t *testing.T) {
			rec := get(t, srv, "/api/v1/charts/"+chart)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<svg")
		})
	}
}

func TestChartPNG(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/charts/bar?format=png&dark=true")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
}

func TestChartErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/v1/charts/radar")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, srv, "/api/v1/charts/bar?format=gif")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv, "/api/v1/charts/bar?dark=yes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv, "/api/v1/charts/pie?category=Garden")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestReport(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/v1/report?category=Electronics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dashboard-report.pdf")
	assert.Equal(t, "%PDF", rec.Body.String()[:4])

	rec = get(t, srv, "/api/v1/report?category=Garden")
	assert.Equal(t, http.StatusOK, rec.Code, "an empty selection still has a heading")

	rec = get(t, srv, "/api/v1/report?dark=2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// PAGE + MIDDLEWARE
// ============================================================================

func TestIndexPage(t *testing.T) {
	rec := get(t, newTestServer(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, page, "Product Dashboard")
	assert.Contains(t, page, `<option value="Kitchen Appliances">`)
	assert.Contains(t, page, `id="chart-sunburst"`)
	assert.Contains(t, page, `class="ag-theme-alpine"`)
	assert.Contains(t, page, "window.DASHBOARD")
}

func TestStaticAssets(t *testing.T) {
	rec := get(t, newTestServer(t), "/static/app.js")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/dashboard")
}

func TestPageScriptDropsStaleResponses(t *testing.T) {
	body := get(t, newTestServer(t), "/static/app.js").Body.String()

	assert.Contains(t, body, "var seq = ++latestRequest;")
	assert.Contains(t, body, "if (seq !== latestRequest) {")
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/v1/ping")
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set(HeaderRequestID, "5f0c6a9e-7a53-4a8c-9d0e-2b4c1a2f3e4d")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "5f0c6a9e-7a53-4a8c-9d0e-2b4c1a2f3e4d", rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(HeaderRequestID))
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/api/v1/ping")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
