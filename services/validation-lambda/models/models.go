package models

import "encoding/json"

// CallbackPayload is the body the wallet posts to the data callback.
// Call parameters are kept as raw JSON so they are echoed back unchanged.
type CallbackPayload struct {
	RequestedInfo *RequestedInfo `json:"requestedInfo,omitempty"`
	Email         *string        `json:"email,omitempty"`
	PhoneNumber   *PhoneNumber   `json:"phoneNumber,omitempty"`

	Calls        json.RawMessage `json:"calls,omitempty"`
	ChainID      json.RawMessage `json:"chainId,omitempty"`
	Version      json.RawMessage `json:"version,omitempty"`
	Capabilities json.RawMessage `json:"capabilities,omitempty"`
}

// RequestedInfo is the personal data the wallet collected from the user.
type RequestedInfo struct {
	Email           *string          `json:"email,omitempty"`
	PhoneNumber     *PhoneNumber     `json:"phoneNumber,omitempty"`
	PhysicalAddress *PhysicalAddress `json:"physicalAddress,omitempty"`
	Name            *PersonName      `json:"name,omitempty"`
	OnchainAddress  *string          `json:"onchainAddress,omitempty"`
}

type PhoneNumber struct {
	Number  string `json:"number"`
	Country string `json:"country,omitempty"`
}

type PersonName struct {
	FirstName  string `json:"firstName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

type PhysicalAddress struct {
	Address1    string      `json:"address1,omitempty"`
	Address2    string      `json:"address2,omitempty"`
	City        string      `json:"city,omitempty"`
	State       string      `json:"state,omitempty"`
	PostalCode  string      `json:"postalCode,omitempty" validate:"omitempty,postal_code_length"`
	CountryCode string      `json:"countryCode,omitempty" validate:"omitempty,allowed_country"`
	Name        *PersonName `json:"name,omitempty"`
}

// Contact is the effective data checked by the callback rules: requestedInfo
// values win over the top-level ones.
type Contact struct {
	Email           string           `json:"email" validate:"omitempty,allowed_email_domain"`
	Phone           string           `json:"phoneNumber"`
	PhysicalAddress *PhysicalAddress `json:"physicalAddress"`
}

// Contact merges the top-level and requestedInfo fields.
func (p CallbackPayload) Contact() Contact {
	var c Contact
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.Phone = p.PhoneNumber.Number
	}
	if info := p.RequestedInfo; info != nil {
		if info.Email != nil {
			c.Email = *info.Email
		}
		if info.PhoneNumber != nil {
			c.Phone = info.PhoneNumber.Number
		}
		c.PhysicalAddress = info.PhysicalAddress
	}
	return c
}

// CallbackResponse echoes the call parameters back so the wallet can submit them.
type CallbackResponse struct {
	Calls        json.RawMessage `json:"calls,omitempty"`
	ChainID      json.RawMessage `json:"chainId,omitempty"`
	Version      json.RawMessage `json:"version,omitempty"`
	Capabilities json.RawMessage `json:"capabilities,omitempty"`
}

// ValidationErrors maps a field to a message, or to a map of subfield messages.
type ValidationErrors map[string]interface{}

// ErrorResponse blocks the transaction.
type ErrorResponse struct {
	Errors ValidationErrors `json:"errors"`
}

// ServerErrorMessage is the only detail a fault ever reveals.
const ServerErrorMessage = "Server error validating data"

// TicketSelection comes from the callback URL query.
type TicketSelection struct {
	EventID int
	Type    string
}
