package mailchimp

import (
	"context"
	"maps"
	"net/http"
	"strings"
)

// DefaultPermissionReminder is used when ListParams leaves it empty
const DefaultPermissionReminder = "You are receiving this email for your subscription to the newsletter on the website"

// ListParams describes a new audience list
type ListParams struct {
	Name string
	// Contact is the required postal contact block (company, address1, city, ...)
	Contact map[string]any
	// CampaignDefaults (from_name, from_email, subject, language) also seed
	// the next CreateCampaign.
	CampaignDefaults   map[string]any
	PermissionReminder string
	// EmailTypeOption lets subscribers pick HTML or plain-text email
	EmailTypeOption bool
	// Extra fields are sent as-is but never override the fields above
	Extra map[string]any
}

// Lists fetches lists. A non-positive count leaves the page size to the
// API; settings are passed as query parameters.
func (c *Client) Lists(ctx context.Context, count int, settings map[string]string) *Client {
	if c.halted() {
		return c
	}
	return c.query(ctx, "/lists", "lists", count, settings)
}

// query runs a paged GET collection read. A body without the key
// collection records unknown.
func (c *Client) query(ctx context.Context, path, key string, count int, settings map[string]string) *Client {
	params := make(map[string]any, len(settings)+1)
	for key, value := range settings {
		params[key] = value
	}
	if count > 0 {
		params["count"] = count
	}

	res, ok := c.request(ctx, http.MethodGet, path, params, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}
	if !hasField(res.body, key) {
		return c.record(unknownShape(res.body))
	}
	return c.record(success(res.body))
}

// CreateList creates a list and makes it current. Its campaign defaults
// are remembered for the next CreateCampaign.
func (c *Client) CreateList(ctx context.Context, params ListParams) *Client {
	if c.halted() {
		return c
	}

	name := strings.TrimSpace(params.Name)
	switch {
	case name == "":
		return c.record(failure(CodeEmptyName, "List name cannot be empty."))
	case len(params.Contact) == 0:
		return c.record(failure(CodeEmptyContact, "contact cannot be empty."))
	case len(params.CampaignDefaults) == 0:
		return c.record(failure(CodeEmptyCampaignDefaults, "campaign_defaults cannot be empty."))
	}

	reminder := params.PermissionReminder
	if strings.TrimSpace(reminder) == "" {
		reminder = DefaultPermissionReminder
	}

	payload := withExtra(map[string]any{
		"name":                name,
		"email_type_option":   params.EmailTypeOption,
		"contact":             params.Contact,
		"campaign_defaults":   params.CampaignDefaults,
		"permission_reminder": reminder,
	}, params.Extra)

	res, ok := c.request(ctx, http.MethodPost, "/lists", payload, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}

	id, ok := stringField(res.body, "id")
	if !ok {
		return c.record(unknownShape(res.body))
	}

	c.current.ListID = id
	c.current.setCampaignDefaults(params.CampaignDefaults)

	c.logger.Info().Str("list_id", id).Str("name", name).Msg("Created list")
	return c.record(success(res.body))
}

// DeleteList deletes a list. An empty id uses the current list.
func (c *Client) DeleteList(ctx context.Context, listID string) *Client {
	if c.halted() {
		return c
	}

	listID, err := c.current.Resolve(KindList, listID)
	if err != nil {
		return c.abort(err)
	}

	res, ok := c.request(ctx, http.MethodDelete, "/lists/"+listID, nil, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}

	c.logger.Info().Str("list_id", listID).Msg("Deleted list")
	return c.record(success(res.body))
}

// withExtra layers extra under base: keys in base always win.
func withExtra(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	maps.Copy(out, extra)
	maps.Copy(out, base)
	return out
}
