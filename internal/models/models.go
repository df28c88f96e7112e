// Package models defines the Zoho Invoice resource shapes the client
// sends and receives. Only the fields the tool reads or writes are
// modeled; everything else rides along in the raw API payloads.
package models

// Organization is one Zoho Invoice organization the account can act in.
type Organization struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	ContactName    string `json:"contact_name,omitempty"`
	Email          string `json:"email,omitempty"`
	CurrencyCode   string `json:"currency_code,omitempty"`
	IsDefaultOrg   bool   `json:"is_default_org,omitempty"`
}

// Item is a billable product or service.
type Item struct {
	ItemID      string  `json:"item_id,omitempty"`
	Name        string  `json:"name"`
	Rate        float64 `json:"rate"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

// Contact is an invoice recipient.
type Contact struct {
	ContactID    string          `json:"contact_id,omitempty"`
	ContactName  string          `json:"contact_name"`
	CompanyName  string          `json:"company_name,omitempty"`
	ContactType  string          `json:"contact_type,omitempty"`
	Email        string          `json:"email,omitempty"`
	Status       string          `json:"status,omitempty"`
	Persons      []ContactPerson `json:"contact_persons,omitempty"`
	CurrencyCode string          `json:"currency_code,omitempty"`
}

// ContactPerson is an individual under a contact.
type ContactPerson struct {
	ContactPersonID  string `json:"contact_person_id,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Email            string `json:"email,omitempty"`
	IsPrimaryContact bool   `json:"is_primary_contact,omitempty"`
}

// LineItem is one row on an invoice.
type LineItem struct {
	ItemID      string  `json:"item_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
}

// Invoice is a draft or sent invoice.
type Invoice struct {
	InvoiceID     string     `json:"invoice_id,omitempty"`
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	CustomerID    string     `json:"customer_id"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Status        string     `json:"status,omitempty"`
	Date          string     `json:"date,omitempty"`
	DueDate       string     `json:"due_date,omitempty"`
	ReferenceNum  string     `json:"reference_number,omitempty"`
	LineItems     []LineItem `json:"line_items,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Terms         string     `json:"terms,omitempty"`
	Total         float64    `json:"total,omitempty"`
	Balance       float64    `json:"balance,omitempty"`
	CurrencyCode  string     `json:"currency_code,omitempty"`
}

// EmailRequest is the payload for sending an invoice by email.
type EmailRequest struct {
	ToMailIDs []string `json:"to_mail_ids,omitempty"`
	CCMailIDs []string `json:"cc_mail_ids,omitempty"`
	Subject   string   `json:"subject,omitempty"`
	Body      string   `json:"body,omitempty"`
}
