package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chartcore/internal/store"
)

func newTestServer() *Server {
	return NewServer(Config{Addr: ":0", Workers: 2})
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func barsPayload() []map[string]any {
	out := make([]map[string]any, 0, 30)
	for i := 0; i < 30; i++ {
		p := 100.0 + float64(i%5)
		out = append(out, map[string]any{
			"time": i * 60, "open": p, "high": p + 1, "low": p - 1, "close": p, "volume": 100,
		})
	}
	return out
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status %d", w.Code)
	}
}

func TestKindsEndpoint(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/api/kinds", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("kinds status %d", w.Code)
	}
	var resp struct {
		Kinds []string `json:"kinds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, k := range resp.Kinds {
		if k == "sma" {
			found = true
		}
	}
	if !found {
		t.Fatalf("sma missing from kind listing: %v", resp.Kinds)
	}
}

func TestComputeEndpoint(t *testing.T) {
	body := map[string]any{
		"kind":   "sma",
		"params": map[string]any{"length": 5},
		"data":   barsPayload(),
	}
	w := do(t, newTestServer(), http.MethodPost, "/api/compute", body)
	if w.Code != http.StatusOK {
		t.Fatalf("compute status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result struct {
			Lines []struct {
				Name   string `json:"name"`
				Points []struct {
					Time  int64   `json:"time"`
					Value float64 `json:"value"`
				} `json:"points"`
			} `json:"lines"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Result.Lines) != 1 || len(resp.Result.Lines[0].Points) != 26 {
		t.Fatalf("unexpected result shape: %s", w.Body.String())
	}
}

func TestComputeWarmupNaNStillEncodes(t *testing.T) {
	// 全长输出的指标带 NaN 前缀，必须以 null 的形式出现在响应里。
	body := map[string]any{
		"kind":   "stochastic",
		"params": map[string]any{"length": 5},
		"data":   barsPayload(),
	}
	w := do(t, newTestServer(), http.MethodPost, "/api/compute", body)
	if w.Code != http.StatusOK {
		t.Fatalf("stochastic status %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"value":null`)) {
		t.Fatalf("warm-up NaN should encode as null: %s", w.Body.String())
	}
}

func TestComputeUnknownKindIs404(t *testing.T) {
	body := map[string]any{"kind": "nope", "data": barsPayload()}
	w := do(t, newTestServer(), http.MethodPost, "/api/compute", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown kind status %d want 404", w.Code)
	}
}

func TestBarsIngestAndComputeBySymbol(t *testing.T) {
	s := newTestServer()
	w := do(t, s, http.MethodPost, "/api/bars/BTCUSDT/1h", barsPayload())
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status %d: %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/bars/BTCUSDT/1h", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get bars status %d", w.Code)
	}
	var listing struct {
		Bars []struct {
			Time int64 `json:"time"`
		} `json:"bars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Bars) != 30 {
		t.Fatalf("stored 30 bars, got back %d", len(listing.Bars))
	}

	// 不带 data，按 symbol+interval 从存储取数计算。
	body := map[string]any{
		"kind":     "sma",
		"params":   map[string]any{"length": 5},
		"symbol":   "BTCUSDT",
		"interval": "1h",
	}
	w = do(t, s, http.MethodPost, "/api/compute", body)
	if w.Code != http.StatusOK {
		t.Fatalf("compute by symbol status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result struct {
			Lines []struct {
				Points []struct {
					Value float64 `json:"value"`
				} `json:"points"`
			} `json:"lines"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Result.Lines) != 1 || len(resp.Result.Lines[0].Points) != 26 {
		t.Fatalf("unexpected result shape: %s", w.Body.String())
	}
}

func TestComputeByUnknownSymbolIs404(t *testing.T) {
	body := map[string]any{"kind": "sma", "symbol": "NOPEUSDT", "interval": "1h"}
	w := do(t, newTestServer(), http.MethodPost, "/api/compute", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty store status %d want 404", w.Code)
	}
}

func TestComputeSymbolWithoutIntervalIs400(t *testing.T) {
	body := map[string]any{"kind": "sma", "symbol": "BTCUSDT"}
	w := do(t, newTestServer(), http.MethodPost, "/api/compute", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing interval status %d want 400", w.Code)
	}
}

func TestServerHonorsStoreCap(t *testing.T) {
	s := NewServer(Config{Addr: ":0", Workers: 2, Store: store.NewMemoryBarStore(3)})
	w := do(t, s, http.MethodPost, "/api/bars/ETHUSDT/1h", barsPayload())
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status %d", w.Code)
	}
	w = do(t, s, http.MethodGet, "/api/bars/ETHUSDT/1h", nil)
	var listing struct {
		Bars []struct {
			Time int64 `json:"time"`
		} `json:"bars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Bars) != 3 {
		t.Fatalf("capped store should keep 3 bars, got %d", len(listing.Bars))
	}
	if listing.Bars[0].Time != 27*60 {
		t.Fatalf("cap should keep the newest bars, first time %d", listing.Bars[0].Time)
	}
}

func TestComputeMissingKindIs400(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/compute", map[string]any{"data": barsPayload()})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing kind status %d want 400", w.Code)
	}
}

func TestBatchEndpoint(t *testing.T) {
	body := []map[string]any{
		{"id": "a", "kind": "sma", "params": map[string]any{"length": 5}, "data": barsPayload()},
		{"id": "b", "kind": "nope", "data": barsPayload()},
	}
	w := do(t, newTestServer(), http.MethodPost, "/api/compute/batch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("batch status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Responses []struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		} `json:"responses"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Responses) != 2 {
		t.Fatalf("expected 2 responses got %d", len(resp.Responses))
	}
	for _, r := range resp.Responses {
		if r.ID == "a" && r.Error != "" {
			t.Fatalf("healthy request errored: %s", r.Error)
		}
		if r.ID == "b" && r.Error == "" {
			t.Fatalf("unknown kind should carry an error")
		}
	}
}
