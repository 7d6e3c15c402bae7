package mailchimp

import (
	"context"
	"maps"
	"strings"
)

// halted reports whether chained operations must pass through untouched:
// after a fatal error, or while the last envelope is an error.
func (c *Client) halted() bool {
	return c.err != nil || c.last.IsError()
}

// record replaces the last envelope
func (c *Client) record(env Envelope) *Client {
	c.last = env
	if env.IsError() {
		c.logger.Warn().
			Str("code", string(env.Code)).
			Str("message", env.Message).
			Msg("Mailchimp operation failed")
	}
	return c
}

// abort stores a fatal error. It is never cleared on this instance.
func (c *Client) abort(err error) *Client {
	if c.err == nil {
		c.err = err
	}
	c.logger.Error().Err(err).Msg("Mailchimp chain aborted")
	return c
}

// Fetch returns the envelope left by the last operation and any fatal
// error that aborted the chain.
func (c *Client) Fetch() (Envelope, error) {
	return c.last, c.err
}

// Err returns the fatal error that aborted the chain, if any
func (c *Client) Err() error {
	return c.err
}

// SelectList makes id the current list and rearms a chain halted by an
// error envelope.
func (c *Client) SelectList(id string) *Client {
	id = strings.TrimSpace(id)
	if id == "" {
		return c.record(failure(CodeInvalidListID, "List ID not valid."))
	}

	c.current.ListID = id
	c.current.LastSelected = KindList
	c.last = Envelope{}
	return c
}

// SelectCampaign makes id the current campaign and rearms a chain halted by
// an error envelope.
func (c *Client) SelectCampaign(id string) *Client {
	id = strings.TrimSpace(id)
	if id == "" {
		return c.record(failure(CodeInvalidCampaignID, "Campaign ID not valid."))
	}

	c.current.CampaignID = id
	c.current.LastSelected = KindCampaign
	c.last = Envelope{}
	return c
}

// SetMergeFields sets merge fields applied to every later Subscribe.
// Fields passed to Subscribe take precedence.
func (c *Client) SetMergeFields(fields map[string]any) *Client {
	c.mergeFields = maps.Clone(fields)
	return c
}

// CurrentList returns the current list id
func (c *Client) CurrentList() string {
	return c.current.ListID
}

// CurrentCampaign returns the current campaign id
func (c *Client) CurrentCampaign() string {
	return c.current.CampaignID
}

// CurrentEmail returns the last address used
func (c *Client) CurrentEmail() string {
	return c.current.Email
}

// Delete deletes whatever SelectList or SelectCampaign last selected. The
// selection is consumed: a second Delete without a new selection fails.
func (c *Client) Delete(ctx context.Context) *Client {
	if c.halted() {
		return c
	}

	kind := c.current.LastSelected
	c.current.LastSelected = KindNone

	switch kind {
	case KindList:
		return c.DeleteList(ctx, "")
	case KindCampaign:
		return c.DeleteCampaign(ctx, "")
	default:
		return c.record(failure(CodeNotChaining, "Not chaining methods."))
	}
}
