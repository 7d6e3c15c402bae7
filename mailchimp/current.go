package mailchimp

import (
	"crypto/md5"
	"encoding/hex"
	"maps"
	"net/mail"
	"strings"
)

// Kind names a piece of context the client can remember
type Kind int

const (
	// KindNone means nothing has been selected
	KindNone Kind = iota
	// KindList is an audience list id
	KindList
	// KindCampaign is a campaign id
	KindCampaign
	// KindEmail is a subscriber address
	KindEmail
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list ID"
	case KindCampaign:
		return "campaign ID"
	case KindEmail:
		return "email"
	default:
		return "none"
	}
}

// Current holds the identifiers a chain has established so far. Omitted
// arguments fall back to these values.
type Current struct {
	ListID     string
	CampaignID string
	Email      string

	// LastSelected is set only by SelectList/SelectCampaign and consumed by Delete
	LastSelected Kind

	// CampaignDefaults is taken from the last created list
	CampaignDefaults map[string]any
}

// Resolve returns the list or campaign id to act on. A non-empty explicit
// value wins and becomes the stored value.
func (c *Current) Resolve(kind Kind, explicit string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	slot := c.slot(kind)
	if slot == nil {
		return "", &MissingContextError{Kind: kind}
	}

	if explicit != "" {
		*slot = explicit
		return explicit, nil
	}
	if *slot == "" {
		return "", &MissingContextError{Kind: kind}
	}
	return *slot, nil
}

// ResolveEmail returns the address to act on. A syntactically invalid
// explicit address yields an invalid_email envelope and is not stored;
// no address at all is a fatal MissingContextError.
func (c *Current) ResolveEmail(explicit string) (string, *Envelope, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		if c.Email == "" {
			return "", nil, &MissingContextError{Kind: KindEmail}
		}
		return c.Email, nil, nil
	}

	if !ValidEmail(explicit) {
		env := failure(CodeInvalidEmail, "Email address not valid.")
		return "", &env, nil
	}

	c.Email = explicit
	return explicit, nil, nil
}

func (c *Current) setCampaignDefaults(defaults map[string]any) {
	c.CampaignDefaults = maps.Clone(defaults)
}

func (c *Current) slot(kind Kind) *string {
	switch kind {
	case KindList:
		return &c.ListID
	case KindCampaign:
		return &c.CampaignID
	case KindEmail:
		return &c.Email
	default:
		return nil
	}
}

// ValidEmail reports whether s is a bare email address
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// reject display-name forms such as "Bob <bob@example.com>"
	return addr.Address == s && addr.Name == ""
}

// SubscriberHash returns the member identifier the API expects in paths:
// the MD5 of the lower-cased address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
