// Package client is the sync boundary UI code talks to: typed record CRUD
// over the REST API, photo upload/resolution, and polling-based change
// notification. The client keeps no response cache; every caller owns its own
// result, so overlapping calls cannot clobber shared state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
	"github.com/Loxfxgc/lost-and-found-children-reporting/repository"
	"github.com/Loxfxgc/lost-and-found-children-reporting/storage"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// Client calls the report API.
type Client struct {
	base     string
	http     *http.Client
	resolver *storage.Resolver
}

func New(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		base:     base,
		http:     &http.Client{Timeout: 30 * time.Second},
		resolver: storage.NewResolver(base+"/api/images", ""),
	}
}

// Page is one page of records with the pagination facts from the envelope.
type Page[T any] struct {
	Items        []T
	TotalRecords int64
	TotalPages   int
	CurrentPage  int
}

// ListOptions select a page and an optional server-side filter. Status and
// ReporterUID are mutually exclusive; Status wins when both are set.
type ListOptions struct {
	Page        int
	Limit       int
	Status      string
	ReporterUID string
}

// ReportInput mirrors the POST /api/reports body.
type ReportInput struct {
	ReporterUID         string                 `json:"reporterUid"`
	ChildName           string                 `json:"childName"`
	ChildAge            int                    `json:"childAge"`
	ChildGender         string                 `json:"childGender,omitempty"`
	LastSeenDate        *time.Time             `json:"lastSeenDate,omitempty"`
	LastSeenLocation    string                 `json:"lastSeenLocation"`
	Description         string                 `json:"description"`
	ContactName         string                 `json:"contactName,omitempty"`
	ContactPhone        string                 `json:"contactPhone,omitempty"`
	ContactEmail        string                 `json:"contactEmail,omitempty"`
	AdditionalDetails   string                 `json:"additionalDetails,omitempty"`
	IdentifyingFeatures string                 `json:"identifyingFeatures,omitempty"`
	Photo               *models.PhotoReference `json:"photo,omitempty"`
	Latitude            float64                `json:"latitude"`
	Longitude           float64                `json:"longitude"`
}

// EnquiryInput mirrors the POST /api/enquiries body.
type EnquiryInput struct {
	ReportID         string                  `json:"reportId"`
	EnquirerUID      string                  `json:"enquirerUid"`
	EnquirerName     string                  `json:"enquirerName"`
	EnquirerPhone    string                  `json:"enquirerPhone,omitempty"`
	EnquirerEmail    string                  `json:"enquirerEmail,omitempty"`
	Message          string                  `json:"message"`
	Images           []models.PhotoReference `json:"images,omitempty"`
	LastSeenLocation string                  `json:"lastSeenLocation,omitempty"`
	LastSeenDate     *time.Time              `json:"lastSeenDate,omitempty"`
	SightingDetails  string                  `json:"sightingDetails,omitempty"`
	Latitude         float64                 `json:"latitude"`
	Longitude        float64                 `json:"longitude"`
}

// UploadResult is the handle returned by the image upload endpoint.
type UploadResult struct {
	FileID   string
	URL      string
	Filename string
	Photo    *models.PhotoReference
}

func (c *Client) CreateReport(ctx context.Context, in ReportInput) (*models.Report, error) {
	var rep models.Report
	if err := c.mutate(ctx, http.MethodPost, "/api/reports", in, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var rep models.Report
	if err := c.mutate(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(id), nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) ListReports(ctx context.Context, opts ListOptions) (*Page[models.Report], error) {
	path := "/api/reports"
	switch {
	case opts.Status != "":
		path = "/api/reports/status/" + url.PathEscape(opts.Status)
	case opts.ReporterUID != "":
		path = "/api/reports/user/" + url.PathEscape(opts.ReporterUID)
	}
	return list[models.Report](c, ctx, path, pageQuery(opts.Page, opts.Limit))
}

func (c *Client) SearchReportsByLocation(ctx context.Context, lng, lat, radiusKm float64, page, limit int) (*Page[models.Report], error) {
	q := pageQuery(page, limit)
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	if radiusKm > 0 {
		q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	}
	return list[models.Report](c, ctx, "/api/reports/search/location", q)
}

func (c *Client) UpdateReport(ctx context.Context, id string, patch repository.ReportPatch) (*models.Report, error) {
	var rep models.Report
	if err := c.mutate(ctx, http.MethodPut, "/api/reports/"+url.PathEscape(id), patch, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/api/reports/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateEnquiry(ctx context.Context, in EnquiryInput) (*models.Enquiry, error) {
	var enq models.Enquiry
	if err := c.mutate(ctx, http.MethodPost, "/api/enquiries", in, &enq); err != nil {
		return nil, err
	}
	return &enq, nil
}

func (c *Client) EnquiriesForReport(ctx context.Context, reportID string, page, limit int) (*Page[models.Enquiry], error) {
	return list[models.Enquiry](c, ctx, "/api/enquiries/report/"+url.PathEscape(reportID), pageQuery(page, limit))
}

func (c *Client) EnquiriesForUser(ctx context.Context, uid string, page, limit int) (*Page[models.Enquiry], error) {
	return list[models.Enquiry](c, ctx, "/api/enquiries/user/"+url.PathEscape(uid), pageQuery(page, limit))
}

func (c *Client) RespondEnquiry(ctx context.Context, id, response, status string) (*models.Enquiry, error) {
	body := map[string]string{"response": response}
	if status != "" {
		body["status"] = status
	}
	var enq models.Enquiry
	if err := c.mutate(ctx, http.MethodPost, "/api/enquiries/"+url.PathEscape(id)+"/respond", body, &enq); err != nil {
		return nil, err
	}
	return &enq, nil
}

func (c *Client) DeleteEnquiry(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/api/enquiries/"+url.PathEscape(id), nil, nil)
}

// UploadPhoto sends one file as multipart field "image".
func (c *Client) UploadPhoto(ctx context.Context, filename, mimeType string, data []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	hdr.Set("Content-Type", mimeType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/images/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var body models.UploadResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &UploadResult{FileID: body.FileID, URL: body.URL, Filename: body.Filename, Photo: body.Photo}, nil
}

// ResolvePhotoURL returns the renderable URL for a reference, or "".
func (c *Client) ResolvePhotoURL(ref *models.PhotoReference) string {
	return c.resolver.ResolveURL(ref)
}

// --- transport ---

type mutationEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type listEnvelope struct {
	Success      bool            `json:"success"`
	Count        int             `json:"count"`
	TotalPages   int             `json:"totalPages"`
	CurrentPage  int             `json:"currentPage"`
	TotalRecords int64           `json:"totalRecords"`
	Data         json.RawMessage `json:"data"`
}

func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.roundTrip(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	var env mutationEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func list[T any](c *Client, ctx context.Context, path string, query url.Values) (*Page[T], error) {
	raw, err := c.roundTrip(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	page := &Page[T]{
		TotalRecords: env.TotalRecords,
		TotalPages:   env.TotalPages,
		CurrentPage:  env.CurrentPage,
		Items:        make([]T, 0, env.Count),
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &page.Items); err != nil {
			return nil, fmt.Errorf("decode list items: %w", err)
		}
	}
	return page, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, raw)
	}
	return raw, nil
}

func decodeError(status int, raw []byte) error {
	var body models.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return &APIError{StatusCode: status, Message: http.StatusText(status)}
	}
	return &APIError{StatusCode: status, Message: body.Message, Detail: body.Error}
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
