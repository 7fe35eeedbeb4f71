package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultControlURL = "https://api.pinecone.io"
	defaultTimeout    = 10 * time.Second

	// All indexes are provisioned for ada-002 embeddings.
	metricEuclidean = "euclidean"
)

// Pinecone talks to the Pinecone serverless REST API. Index hosts are
// resolved through the control plane and memoized per index name.
type Pinecone struct {
	apiKey     string
	controlURL string
	cloud      string
	region     string
	dimension  int
	client     *http.Client

	mu    sync.Mutex
	hosts map[string]string
}

// NewPinecone builds a client. cloud/region select the serverless spec for
// newly created indexes; dimension applies to all of them.
func NewPinecone(apiKey, cloud, region string, dimension int, timeout time.Duration) (*Pinecone, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Pinecone{
		apiKey:     apiKey,
		controlURL: defaultControlURL,
		cloud:      cloud,
		region:     region,
		dimension:  dimension,
		client:     &http.Client{Timeout: timeout},
		hosts:      make(map[string]string),
	}, nil
}

type indexDescription struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

type indexList struct {
	Indexes []indexDescription `json:"indexes"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

func (p *Pinecone) EnsureIndex(ctx context.Context, name string) error {
	var list indexList
	if err := p.do(ctx, http.MethodGet, p.controlURL+"/indexes", nil, &list); err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	for _, idx := range list.Indexes {
		if idx.Name == name {
			p.setHost(name, idx.Host)
			return nil
		}
	}

	req := createIndexRequest{
		Name:      name,
		Dimension: p.dimension,
		Metric:    metricEuclidean,
		Spec:      indexSpec{Serverless: serverlessSpec{Cloud: p.cloud, Region: p.region}},
	}
	var created indexDescription
	if err := p.do(ctx, http.MethodPost, p.controlURL+"/indexes", req, &created); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	p.setHost(name, created.Host)
	return nil
}

type fetchResponse struct {
	Vectors map[string]vectorPayload `json:"vectors"`
}

type vectorPayload struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

func (p *Pinecone) Fetch(ctx context.Context, index, id string) (*Record, error) {
	host, err := p.hostFor(ctx, index)
	if err != nil {
		return nil, err
	}
	u := host + "/vectors/fetch?ids=" + url.QueryEscape(id)
	var resp fetchResponse
	if err := p.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", index, id, err)
	}
	v, ok := resp.Vectors[id]
	if !ok {
		// Absence is a normal outcome, not an error.
		return nil, nil
	}
	return &Record{ID: v.ID, Values: v.Values, Metadata: v.Metadata}, nil
}

type upsertRequest struct {
	Vectors []vectorPayload `json:"vectors"`
}

func (p *Pinecone) Upsert(ctx context.Context, index string, rec Record) error {
	host, err := p.hostFor(ctx, index)
	if err != nil {
		return err
	}
	req := upsertRequest{Vectors: []vectorPayload{{ID: rec.ID, Values: rec.Values, Metadata: rec.Metadata}}}
	if err := p.do(ctx, http.MethodPost, host+"/vectors/upsert", req, nil); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", index, rec.ID, err)
	}
	return nil
}

// hostFor returns the data-plane base URL for an index, describing it
// through the control plane when not already memoized.
func (p *Pinecone) hostFor(ctx context.Context, index string) (string, error) {
	p.mu.Lock()
	host, ok := p.hosts[index]
	p.mu.Unlock()
	if ok {
		return host, nil
	}

	var desc indexDescription
	if err := p.do(ctx, http.MethodGet, p.controlURL+"/indexes/"+url.PathEscape(index), nil, &desc); err != nil {
		return "", fmt.Errorf("describe index %s: %w", index, err)
	}
	if desc.Host == "" {
		return "", fmt.Errorf("describe index %s: no host in response", index)
	}
	return p.setHost(index, desc.Host), nil
}

func (p *Pinecone) setHost(index, host string) string {
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	p.mu.Lock()
	p.hosts[index] = host
	p.mu.Unlock()
	return host
}

// do runs one JSON request against Pinecone and decodes the response into
// out when non-nil. Any non-2xx status is an error.
func (p *Pinecone) do(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pinecone: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
