package sequence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// DefaultEnsemblURL is the GRCh38 Ensembl REST endpoint.
const DefaultEnsemblURL = "https://rest.ensembl.org"

// Ensembl fetches windows from the Ensembl REST sequence/region endpoint.
type Ensembl struct {
	baseURL    string
	species    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEnsembl creates a REST provider. An empty baseURL selects
// DefaultEnsemblURL; use https://grch37.rest.ensembl.org for GRCh37.
func NewEnsembl(baseURL string, timeout time.Duration) *Ensembl {
	if baseURL == "" {
		baseURL = DefaultEnsemblURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Ensembl{
		baseURL: strings.TrimRight(baseURL, "/"),
		species: "human",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for request diagnostics.
func (e *Ensembl) SetLogger(l *zap.Logger) {
	e.logger = l
}

// restSequence is the JSON body of a sequence/region response.
type restSequence struct {
	ID       string `json:"id"`
	Seq      string `json:"seq"`
	Molecule string `json:"molecule"`
}

func (e *Ensembl) GetSequence(ctx context.Context, chrom string, start, end int64) (string, error) {
	if start < 1 {
		start = 1
	}
	if start > end {
		return "", fmt.Errorf("%w: %s:%d-%d", ErrNotFound, chrom, start, end)
	}
	url := fmt.Sprintf("%s/sequence/region/%s/%s:%d..%d:1?content-type=application/json",
		e.baseURL, e.species, cache.NormalizeChrom(chrom), start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build REST request: %w", err)
	}
	e.logger.Debug("ensembl sequence request", zap.String("url", url))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("REST API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		e.logger.Warn("ensembl sequence request failed",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: REST API error %d: %s", ErrNotFound, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", fmt.Errorf("REST API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rs restSequence
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		return "", fmt.Errorf("decode REST response: %w", err)
	}
	if rs.Seq == "" {
		return "", fmt.Errorf("%w: %s:%d-%d", ErrNotFound, chrom, start, end)
	}
	return strings.ToUpper(rs.Seq), nil
}

func (e *Ensembl) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}
