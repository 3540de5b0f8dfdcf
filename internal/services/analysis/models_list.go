package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/oagarcia/proyecto-skandia/internal/httpclient"
)

const modelsEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// modelListing mirrors the fields of the models endpoint response this
// service cares about.
type modelListing struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
}

// ListModels queries the Gemini API for models available to the key that
// support content generation, newest first.
func (s *Service) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	reqURL := fmt.Sprintf("%s?key=%s", modelsEndpoint, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewDefaultHTTPClient(30 * time.Second)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query models endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("models endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var listing modelListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}

	models := filterGenerationModels(listing)
	s.logger.Debug().Int("count", len(models)).Msg("Listed available models")
	return models, nil
}

// filterGenerationModels keeps Gemini models that support generateContent,
// stripping the "models/" prefix and sorting descending so newer versions
// come first.
func filterGenerationModels(listing modelListing) []string {
	names := []string{}
	for _, m := range listing.Models {
		name := strings.TrimPrefix(m.Name, "models/")
		if !strings.Contains(name, "gemini") {
			continue
		}
		supported := false
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				supported = true
				break
			}
		}
		if supported {
			names = append(names, name)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}
