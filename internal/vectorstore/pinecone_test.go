package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakePinecone serves both the control plane and the data plane from one
// httptest server; index hosts point back at the server itself.
type fakePinecone struct {
	mu       sync.Mutex
	indexes  map[string]bool
	vectors  map[string]vectorPayload
	upserts  int
	creates  int
	srv      *httptest.Server
	failWith int
}

func newFakePinecone(existing ...string) *fakePinecone {
	f := &fakePinecone{
		indexes: make(map[string]bool),
		vectors: make(map[string]vectorPayload),
	}
	for _, name := range existing {
		f.indexes[name] = true
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /indexes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var list indexList
		for name := range f.indexes {
			list.Indexes = append(list.Indexes, indexDescription{Name: name, Host: f.srv.URL})
		}
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("POST /indexes", func(w http.ResponseWriter, r *http.Request) {
		var req createIndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Dimension != 1536 || req.Metric != "euclidean" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		f.mu.Lock()
		f.indexes[req.Name] = true
		f.creates++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(indexDescription{Name: req.Name, Host: f.srv.URL})
	})
	mux.HandleFunc("GET /indexes/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		f.mu.Lock()
		ok := f.indexes[name]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(indexDescription{Name: name, Host: f.srv.URL})
	})
	mux.HandleFunc("GET /vectors/fetch", func(w http.ResponseWriter, r *http.Request) {
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			return
		}
		id := r.URL.Query().Get("ids")
		f.mu.Lock()
		v, ok := f.vectors[id]
		f.mu.Unlock()
		resp := fetchResponse{Vectors: map[string]vectorPayload{}}
		if ok {
			resp.Vectors[id] = v
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			return
		}
		var req upsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		for _, v := range req.Vectors {
			f.vectors[v.ID] = v
		}
		f.upserts++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]int{"upsertedCount": len(req.Vectors)})
	})
	f.srv = httptest.NewServer(mux)
	return f
}

func newTestClient(t *testing.T, f *fakePinecone) *Pinecone {
	t.Helper()
	p, err := NewPinecone("test-key", "aws", "us-west-2", 1536, 5*time.Second)
	if err != nil {
		t.Fatalf("NewPinecone: %v", err)
	}
	p.controlURL = f.srv.URL
	return p
}

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	f := newFakePinecone()
	defer f.srv.Close()
	p := newTestClient(t, f)

	if err := p.EnsureIndex(context.Background(), "tixy-organizers"); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if f.creates != 1 {
		t.Errorf("expected 1 create call, got %d", f.creates)
	}

	// Second run is idempotent: the index now exists.
	if err := p.EnsureIndex(context.Background(), "tixy-organizers"); err != nil {
		t.Fatalf("EnsureIndex (second run): %v", err)
	}
	if f.creates != 1 {
		t.Errorf("expected create to be skipped on second run, got %d calls", f.creates)
	}
}

func TestEnsureIndexSkipsExisting(t *testing.T) {
	f := newFakePinecone("tixy-events")
	defer f.srv.Close()
	p := newTestClient(t, f)

	if err := p.EnsureIndex(context.Background(), "tixy-events"); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if f.creates != 0 {
		t.Errorf("expected no create call, got %d", f.creates)
	}
}

func TestFetchDistinguishesAbsenceFromFailure(t *testing.T) {
	f := newFakePinecone("tixy-organizers")
	defer f.srv.Close()
	p := newTestClient(t, f)

	rec, err := p.Fetch(context.Background(), "tixy-organizers", "a@x.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for absent id, got %+v", rec)
	}

	f.failWith = http.StatusInternalServerError
	if _, err := p.Fetch(context.Background(), "tixy-organizers", "a@x.com"); err == nil {
		t.Error("expected error on service failure")
	}
}

func TestUpsertThenFetch(t *testing.T) {
	f := newFakePinecone("tixy-organizers")
	defer f.srv.Close()
	p := newTestClient(t, f)

	rec := Record{
		ID:     "a@x.com",
		Values: []float32{0.1, 0.2, 0.3},
		Metadata: map[string]any{
			"organizer_name":  "Alice",
			"organizer_email": "a@x.com",
		},
	}
	if err := p.Upsert(context.Background(), "tixy-organizers", rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := p.Fetch(context.Background(), "tixy-organizers", "a@x.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil {
		t.Fatal("expected record after upsert")
	}
	if got.Metadata["organizer_name"] != "Alice" {
		t.Errorf("metadata lost in round trip: %+v", got.Metadata)
	}
}

func TestUpsertSurfacesServiceFailure(t *testing.T) {
	f := newFakePinecone("tixy-events")
	defer f.srv.Close()
	p := newTestClient(t, f)
	f.failWith = http.StatusBadGateway

	err := p.Upsert(context.Background(), "tixy-events", Record{ID: "k", Values: []float32{1}})
	if err == nil {
		t.Error("expected error on service failure")
	}
}
