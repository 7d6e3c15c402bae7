package mailchimp

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Campaign types
const (
	CampaignRegular   = "regular"
	CampaignPlaintext = "plaintext"
	CampaignABSplit   = "absplit"
	CampaignRSS       = "rss"
	CampaignVariate   = "variate"
)

var campaignTypes = []string{CampaignRegular, CampaignPlaintext, CampaignABSplit, CampaignRSS, CampaignVariate}

// CampaignParams describes a new campaign
type CampaignParams struct {
	// Settings (subject_line, from_name, reply_to, title, ...) override the
	// defaults carried over from the last created list.
	Settings map[string]any
	// ListID is the recipient list; empty uses the current list
	ListID string
	// Type defaults to regular
	Type  string
	Extra map[string]any
}

// Content is the body of a campaign
type Content struct {
	// CampaignID empty uses the current campaign
	CampaignID string
	Body       string
	// HTML marks Body as HTML; PlainText is then the optional text part
	HTML      bool
	PlainText string
	Extra     map[string]any
}

// Campaigns fetches campaigns. A non-positive count leaves the page size to
// the API; settings are passed as query parameters.
func (c *Client) Campaigns(ctx context.Context, count int, settings map[string]string) *Client {
	if c.halted() {
		return c
	}
	return c.query(ctx, "/campaigns", "campaigns", count, settings)
}

// CreateCampaign creates a campaign for a list and makes it current.
func (c *Client) CreateCampaign(ctx context.Context, params CampaignParams) *Client {
	if c.halted() {
		return c
	}

	listID, err := c.current.Resolve(KindList, params.ListID)
	if err != nil {
		return c.abort(err)
	}

	settings := campaignSettings(c.current.CampaignDefaults, params.Settings)
	if env := validateSettings(settings); env != nil {
		return c.record(*env)
	}

	campaignType := strings.TrimSpace(params.Type)
	if !slices.Contains(campaignTypes, campaignType) {
		campaignType = CampaignRegular
	}

	payload := withExtra(map[string]any{
		"type": campaignType,
		"recipients": map[string]any{
			"list_id": listID,
		},
		"settings": settings,
	}, params.Extra)

	res, ok := c.request(ctx, http.MethodPost, "/campaigns", payload, false)
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
	c.current.CampaignID = id

	c.logger.Info().Str("campaign_id", id).Str("list_id", listID).Msg("Created campaign")
	return c.record(success(res.body))
}

// campaignSettings maps list campaign_defaults onto campaign settings and
// lays explicit over them.
func campaignSettings(defaults, explicit map[string]any) map[string]any {
	settings := make(map[string]any, len(explicit)+3)
	for from, to := range map[string]string{
		"subject":    "subject_line",
		"from_name":  "from_name",
		"from_email": "reply_to",
	} {
		if v, ok := defaults[from]; ok {
			settings[to] = v
		}
	}
	maps.Copy(settings, explicit)
	return settings
}

func validateSettings(settings map[string]any) *Envelope {
	reject := func(message string) *Envelope {
		env := failure(CodeSettingsError, message)
		return &env
	}

	if len(settings) == 0 {
		return reject("Empty settings.")
	}
	for _, key := range []string{"subject_line", "from_name", "reply_to"} {
		if _, ok := stringField(settings, key); !ok {
			return reject(key + " field not provided in settings.")
		}
	}

	fromName, _ := stringField(settings, "from_name")
	if ValidEmail(fromName) {
		return reject("from_name in settings must be a string, not an email.")
	}
	replyTo, _ := stringField(settings, "reply_to")
	if !ValidEmail(replyTo) {
		return reject("reply_to in settings must be an email address.")
	}
	return nil
}

// SetContent sets the content of a campaign.
func (c *Client) SetContent(ctx context.Context, content Content) *Client {
	if c.halted() {
		return c
	}

	campaignID, err := c.current.Resolve(KindCampaign, content.CampaignID)
	if err != nil {
		return c.abort(err)
	}

	base := map[string]any{}
	if content.HTML {
		base["html"] = content.Body
		if content.PlainText != "" {
			base["plain_text"] = content.PlainText
		}
	} else {
		base["plain_text"] = content.Body
	}

	res, ok := c.request(ctx, http.MethodPut, "/campaigns/"+campaignID+"/content", withExtra(base, content.Extra), false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}

	if !hasField(res.body, "plain_text") {
		return c.record(unknownShape(res.body))
	}
	return c.record(success(res.body))
}

// Send sends a campaign. An empty id uses the current campaign.
func (c *Client) Send(ctx context.Context, campaignID string) *Client {
	if c.halted() {
		return c
	}

	campaignID, err := c.current.Resolve(KindCampaign, campaignID)
	if err != nil {
		return c.abort(err)
	}

	res, ok := c.request(ctx, http.MethodPost, "/campaigns/"+campaignID+"/actions/send", nil, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}

	c.logger.Info().Str("campaign_id", campaignID).Msg("Sent campaign")
	return c.record(success(res.body))
}

// DeleteCampaign deletes a campaign. An empty id uses the current campaign.
func (c *Client) DeleteCampaign(ctx context.Context, campaignID string) *Client {
	if c.halted() {
		return c
	}

	campaignID, err := c.current.Resolve(KindCampaign, campaignID)
	if err != nil {
		return c.abort(err)
	}

	res, ok := c.request(ctx, http.MethodDelete, "/campaigns/"+campaignID, nil, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}

	c.logger.Info().Str("campaign_id", campaignID).Msg("Deleted campaign")
	return c.record(success(res.body))
}
