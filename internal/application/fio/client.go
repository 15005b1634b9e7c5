package fio

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// StorageItem is one commodity stack inside a FIO storage payload.
type StorageItem struct {
	MaterialTicker string `json:"MaterialTicker"`
	MaterialAmount int64  `json:"MaterialAmount"`
}

// Storage is one storage container from GET /storage/{username}.
type Storage struct {
	StorageID       string        `json:"StorageId"`
	AddressableID   string        `json:"AddressableId"`
	LocationNaturalID string      `json:"LocationNaturalId"`
	Type            string        `json:"Type"`
	Items           []StorageItem `json:"StorageItems"`
	Timestamp       string        `json:"Timestamp"`
}

// UploadedAt parses the FIO source timestamp; nil when absent or malformed.
func (s *Storage) UploadedAt() *time.Time {
	if s.Timestamp == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999", s.Timestamp)
	if err != nil {
		return nil
	}
	return &t
}

// Client talks to the FIO REST API.
type Client struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

// NewClient builds a FIO client. baseURL defaults to the public FIO endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://rest.fnar.net"
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{client: client, baseURL: baseURL, apiKey: apiKey}
}

// GetStorage fetches all storage containers for a FIO username.
func (c *Client) GetStorage(username string) ([]Storage, error) {
	req := c.client.R()
	if c.apiKey != "" {
		req.SetHeader("Authorization", c.apiKey)
	}
	resp, err := req.Get(fmt.Sprintf("%s/storage/%s", c.baseURL, username))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("FIO storage request failed: %s", resp.Status())
	}

	var storages []Storage
	if err := json.Unmarshal(resp.Body(), &storages); err != nil {
		return nil, err
	}
	return storages, nil
}
