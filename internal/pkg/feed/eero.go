//Package feed downloads network_outages exports from the Eero organization API.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
)

//ErrNoCompletedJob is returned when no completed network_outages aggregation job exists yet
var ErrNoCompletedJob = errors.New("no completed network_outages dataset available")

const outagesDataset = "network_outages"

//Client talks to the Eero organization API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logging.Logger
}

//NewClient creates a feed client for the given API base URL and user token
func NewClient(baseURL, token string, log logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

type aggregationJob struct {
	Dataset       string `json:"dataset"`
	Status        string `json:"status"`
	ArtifactID    string `json:"artifact_id"`
	ScheduledTime string `json:"scheduled_time"`
}

type aggregationJobsResponse struct {
	Data struct {
		AggregationJobs []aggregationJob `json:"aggregation_jobs"`
	} `json:"data"`
}

type artifactResponse struct {
	Data struct {
		DownloadLink        string `json:"download_link"`
		DownloadLinkExpires string `json:"download_link_expires"`
	} `json:"data"`
}

//LatestOutagesArtifact returns the artifact id of today's completed network_outages job
func (c *Client) LatestOutagesArtifact(ctx context.Context) (string, error) {
	start := time.Now().UTC().Format("2006-01-02") + "T00:00:00Z"
	endpoint := fmt.Sprintf("%s/organizations/self/data_aggregation_jobs?start=%s", c.baseURL, url.QueryEscape(start))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	jobs := aggregationJobsResponse{}
	if err := json.Unmarshal(body, &jobs); err != nil {
		return "", fmt.Errorf("failed to decode aggregation jobs response: %w", err)
	}

	for _, job := range jobs.Data.AggregationJobs {
		if job.Dataset == outagesDataset && job.Status == "completed" {
			c.log.Infof("Found %s dataset, artifact %s, scheduled %s", outagesDataset, job.ArtifactID, job.ScheduledTime)
			return job.ArtifactID, nil
		}
	}

	return "", ErrNoCompletedJob
}

//NetworkOutage is one outage record from the per-network outage history endpoint. End
//is zero while the outage is still open.
type NetworkOutage struct {
	Start  time.Time
	End    time.Time
	Reason string
}

type networkOutagesResponse struct {
	Data struct {
		Outages []struct {
			Start  string `json:"start"`
			End    string `json:"end"`
			Reason string `json:"reason"`
		} `json:"outages"`
	} `json:"data"`
}

//NetworkOutages returns the outage history of one network from start onwards. The daily
//exports split an outage that crosses midnight into per-day rows, so this endpoint is
//the only place the real end time of such an outage can be read.
func (c *Client) NetworkOutages(ctx context.Context, networkID int64, start time.Time) ([]NetworkOutage, error) {
	startParam := start.UTC().Format("2006-01-02T15:04:05.000Z")
	endpoint := fmt.Sprintf("%s/organizations/self/network_outages/networks/%d?start=%s",
		c.baseURL, networkID, url.QueryEscape(startParam))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	response := networkOutagesResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode network outages response: %w", err)
	}

	outages := make([]NetworkOutage, 0, len(response.Data.Outages))
	for _, record := range response.Data.Outages {
		if record.Start == "" {
			continue
		}
		outageStart, err := time.Parse(time.RFC3339, record.Start)
		if err != nil {
			c.log.Warnf("Skipping outage record with unparseable start %q for network %d", record.Start, networkID)
			continue
		}

		outage := NetworkOutage{Start: outageStart.UTC(), Reason: record.Reason}
		if record.End != "" {
			outageEnd, err := time.Parse(time.RFC3339, record.End)
			if err != nil {
				c.log.Warnf("Skipping outage record with unparseable end %q for network %d", record.End, networkID)
				continue
			}
			outage.End = outageEnd.UTC()
		}
		outages = append(outages, outage)
	}

	return outages, nil
}

//DownloadURL resolves the signed download link for an artifact
func (c *Client) DownloadURL(ctx context.Context, artifactID string) (string, error) {
	endpoint := fmt.Sprintf("%s/organizations/self/data_artifacts/%s?download_link=true", c.baseURL, url.PathEscape(artifactID))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	artifact := artifactResponse{}
	if err := json.Unmarshal(body, &artifact); err != nil {
		return "", fmt.Errorf("failed to decode artifact response: %w", err)
	}

	if artifact.Data.DownloadLink == "" {
		return "", errors.New("artifact response contained no download link")
	}

	return artifact.Data.DownloadLink, nil
}

//Download fetches the latest outages export into dir and returns the file path
func (c *Client) Download(ctx context.Context, dir string) (string, error) {
	artifactID, err := c.LatestOutagesArtifact(ctx)
	if err != nil {
		return "", err
	}

	downloadURL, err := c.DownloadURL(ctx, artifactID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create inputs directory: %w", err)
	}

	filename := filenameFromURL(downloadURL)
	path := filepath.Join(dir, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s failed with status %d", filename, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	c.log.Infof("Downloaded %s (%d bytes)", path, written)
	return path, nil
}

//get performs an authenticated GET with retries; transient failures are retried with
//exponential backoff for up to two minutes
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("X-User-Token", c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("request to %s failed with status %d", endpoint, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("request to %s failed with status %d", endpoint, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(2*time.Minute)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return body, nil
}

func filenameFromURL(downloadURL string) string {
	name := downloadURL
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		name = fmt.Sprintf("network_outages-%s.csv", time.Now().UTC().Format("2006-01-02"))
	}
	return name
}
