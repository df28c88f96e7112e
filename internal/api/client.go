// Package api is the Zoho Invoice REST client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zomailer/zomailer-cli/internal/models"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/version"
)

// TokenSource supplies a fresh access token per request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Result is the Zoho Invoice response envelope. Every endpoint wraps its
// payload in {code, message, ...}; code 0 means success.
type Result struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"-"`
}

// OK reports whether the API accepted the request.
func (r *Result) OK() bool { return r.Code == 0 }

// Client calls the Zoho Invoice API for one account and organization.
type Client struct {
	baseURL    string
	orgID      string
	tokens     TokenSource
	httpClient *http.Client
}

// New creates a client. orgID may be empty for endpoints that do not need
// an organization, such as listing organizations themselves.
func New(baseURL string, orgID string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		orgID:   orgID,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Result, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if query == nil {
		query = url.Values{}
	}
	if c.orgID != "" {
		query.Set("organization_id", c.orgID)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, output.ErrNetwork(err)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, output.ErrAPI(resp.StatusCode,
			fmt.Sprintf("Unparseable API response (HTTP %d)", resp.StatusCode))
	}
	result.Data = raw
	return &result, nil
}

// get runs a GET and decodes the named field from the payload on success.
func (c *Client) get(ctx context.Context, path string, query url.Values, field string, dst any) error {
	result, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if !result.OK() {
		return output.ErrAPI(0, fmt.Sprintf("Zoho API error %d: %s", result.Code, result.Message))
	}
	return decodeField(result.Data, field, dst)
}

func decodeField(raw json.RawMessage, field string, dst any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	payload, ok := envelope[field]
	if !ok {
		return output.ErrAPI(0, fmt.Sprintf("API response missing %q field", field))
	}
	return json.Unmarshal(payload, dst)
}

// Organizations lists the organizations visible to the account.
func (c *Client) Organizations(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := c.get(ctx, "/organizations", nil, "organizations", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Items lists the active items in the organization.
func (c *Client) Items(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := c.get(ctx, "/items", nil, "items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem creates an item and returns the stored record.
func (c *Client) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	result, err := c.do(ctx, http.MethodPost, "/items", nil, item)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, output.ErrAPI(0, fmt.Sprintf("Zoho API error %d: %s", result.Code, result.Message))
	}
	var created models.Item
	if err := decodeField(result.Data, "item", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Customers lists contacts of type customer.
func (c *Client) Customers(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	q := url.Values{"contact_type": {"customer"}}
	if err := c.get(ctx, "/contacts", q, "contacts", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateCustomer creates a contact. The provider's response envelope is
// returned as-is whether it reports success or failure, so the caller can
// surface Zoho's own diagnostics.
func (c *Client) CreateCustomer(ctx context.Context, contact models.Contact) (*Result, error) {
	return c.do(ctx, http.MethodPost, "/contacts", nil, contact)
}

// Invoices lists invoices, optionally filtered by status (e.g. "draft").
func (c *Client) Invoices(ctx context.Context, status string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	if err := c.get(ctx, "/invoices", q, "invoices", &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// CreateInvoice creates a draft invoice. Like CreateCustomer, the raw
// envelope comes back regardless of the provider's verdict.
func (c *Client) CreateInvoice(ctx context.Context, invoice models.Invoice) (*Result, error) {
	return c.do(ctx, http.MethodPost, "/invoices", nil, invoice)
}

// SendInvoiceEmail emails an invoice to its recipients. An empty request
// sends with the contact's stored email settings.
func (c *Client) SendInvoiceEmail(ctx context.Context, invoiceID string, email models.EmailRequest) (*Result, error) {
	path := fmt.Sprintf("/invoices/%s/email", url.PathEscape(invoiceID))
	return c.do(ctx, http.MethodPost, path, nil, email)
}
