// Package apiclient is a thin HTTP client for the pinboard API used by
// pinctl. Server error statuses come back as the common sentinel errors so
// callers can use errors.Is the same way the server does.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/netx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

// APIError is returned for error statuses without a sentinel mapping.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NewPin is the body of a create-pin request.
type NewPin struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// NewVisit is the body of an add-visit request.
type NewVisit struct {
	Name      string     `json:"name"`
	Note      string     `json:"note,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	VisitedAt *time.Time `json:"visitedAt,omitempty"`
}

// UploadSlot mirrors the server's presigned upload response.
type UploadSlot struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. token may be empty
// for read-only use.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListPins(ctx context.Context, category string) ([]models.Pin, error) {
	path := "/api/pins"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out []models.Pin
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPin(ctx context.Context, id int64) (*models.PinWithVisits, error) {
	var out models.PinWithVisits
	if err := c.do(ctx, http.MethodGet, "/api/pins/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePin(ctx context.Context, in *NewPin) (*models.Pin, error) {
	var out models.Pin
	if err := c.do(ctx, http.MethodPost, "/api/pins", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddVisit(ctx context.Context, pinID int64, in *NewVisit) (*models.Visit, error) {
	var out models.Visit
	path := "/api/pins/" + strconv.FormatInt(pinID, 10) + "/visits"
	if err := c.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var out models.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestUpload(ctx context.Context, contentType string) (*UploadSlot, error) {
	var out UploadSlot
	body := map[string]string{"contentType": contentType}
	if err := c.do(ctx, http.MethodPost, "/api/uploads", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage asks the server for an upload slot, PUTs data to it and
// returns the URL to store on a pin or visit.
func (c *Client) UploadImage(ctx context.Context, data []byte) (string, error) {
	contentType := http.DetectContentType(data)

	slot, err := c.RequestUpload(ctx, contentType)
	if err != nil {
		return "", err
	}
	if err := netx.PutPresigned(ctx, c.http, slot.UploadURL, contentType, data); err != nil {
		return "", err
	}
	return slot.PublicURL, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type errorBody struct {
	Error           string    `json:"error"`
	ServerUpdatedAt time.Time `json:"serverUpdatedAt"`
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return &common.ConflictError{ServerUpdatedAt: eb.ServerUpdatedAt}
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusServiceUnavailable:
		return common.ErrorStorageDisabled
	case http.StatusBadRequest:
		if eb.Error != "" {
			return common.ValidationError(eb.Error)
		}
		return common.ErrorValidation
	}
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
