package mailchimp

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Member statuses accepted by Subscribe
const (
	StatusSubscribed   = "subscribed"
	StatusPending      = "pending"
	StatusUnsubscribed = "unsubscribed"
	StatusCleaned      = "cleaned"
)

var memberStatuses = []string{StatusSubscribed, StatusPending, StatusUnsubscribed, StatusCleaned}

// Member is one address for AddMembers, with optional merge fields
type Member struct {
	Email       string
	MergeFields map[string]any
}

// Addresses builds members without merge fields
func Addresses(emails ...string) []Member {
	members := make([]Member, 0, len(emails))
	for _, email := range emails {
		members = append(members, Member{Email: email})
	}
	return members
}

// MembersFromMap builds members from an address to merge-field mapping,
// ordered by address.
func MembersFromMap(m map[string]map[string]any) []Member {
	members := make([]Member, 0, len(m))
	for _, email := range slices.Sorted(maps.Keys(m)) {
		members = append(members, Member{Email: email, MergeFields: m[email]})
	}
	return members
}

// MemberOption configures Subscribe and Unsubscribe
type MemberOption func(*memberOptions)

type memberOptions struct {
	listID string
	status string
	fields map[string]any
}

// ToList targets a list other than the current one
func ToList(listID string) MemberOption {
	return func(o *memberOptions) {
		o.listID = listID
	}
}

// WithStatus sets the member status; unknown values fall back to subscribed
func WithStatus(status string) MemberOption {
	return func(o *memberOptions) {
		o.status = status
	}
}

// WithMergeFields sets merge fields (FNAME, LNAME, ...) for this call
func WithMergeFields(fields map[string]any) MemberOption {
	return func(o *memberOptions) {
		o.fields = fields
	}
}

func normalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if !slices.Contains(memberStatuses, status) {
		return StatusSubscribed
	}
	return status
}

func memberPath(listID, email string) string {
	return "/lists/" + listID + "/members/" + SubscriberHash(email)
}

// IsMember reports whether email is on the list. Empty arguments fall back
// to the current list and address. A non-nil envelope carries a classified
// or validation error; a fatal error is left on Err.
func (c *Client) IsMember(ctx context.Context, email, listID string) (bool, *Envelope) {
	if c.err != nil {
		return false, nil
	}

	listID, err := c.current.Resolve(KindList, listID)
	if err != nil {
		c.abort(err)
		return false, nil
	}
	email, invalid, err := c.current.ResolveEmail(email)
	if err != nil {
		c.abort(err)
		return false, nil
	}
	if invalid != nil {
		return false, invalid
	}

	return c.lookupMember(ctx, listID, email)
}

func (c *Client) lookupMember(ctx context.Context, listID, email string) (bool, *Envelope) {
	res, ok := c.request(ctx, http.MethodGet, memberPath(listID, email), nil, true)
	if !ok {
		return false, nil
	}
	if res.classified == nil && res.status == http.StatusNotFound {
		return false, nil
	}
	if env := res.failed(); env != nil {
		return false, env
	}
	return true, nil
}

// Subscribe adds email to a list. Empty arguments fall back to the current
// list and address. An address already on the list is reported as
// already_in_list without creating it again.
func (c *Client) Subscribe(ctx context.Context, email string, opts ...MemberOption) *Client {
	if c.halted() {
		return c
	}

	var o memberOptions
	for _, opt := range opts {
		opt(&o)
	}

	listID, err := c.current.Resolve(KindList, o.listID)
	if err != nil {
		return c.abort(err)
	}
	email, invalid, err := c.current.ResolveEmail(email)
	if err != nil {
		return c.abort(err)
	}
	if invalid != nil {
		return c.record(*invalid)
	}

	member, env := c.lookupMember(ctx, listID, email)
	if c.err != nil {
		return c
	}
	if env != nil {
		return c.record(*env)
	}
	if member {
		return c.record(failure(CodeAlreadyInList, "The email is already in the list."))
	}

	fields := make(map[string]any, len(c.mergeFields)+len(o.fields))
	maps.Copy(fields, c.mergeFields)
	maps.Copy(fields, o.fields)

	res, ok := c.request(ctx, http.MethodPost, "/lists/"+listID+"/members", map[string]any{
		"email_address": email,
		"status":        normalizeStatus(o.status),
		"merge_fields":  fields,
	}, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}

	if _, ok := stringField(res.body, "id"); !ok {
		return c.record(unknownShape(res.body))
	}
	return c.record(success(res.body))
}

// Unsubscribe removes email from a list. Empty arguments fall back to the
// current list and address.
func (c *Client) Unsubscribe(ctx context.Context, email string, opts ...MemberOption) *Client {
	if c.halted() {
		return c
	}

	var o memberOptions
	for _, opt := range opts {
		opt(&o)
	}

	listID, err := c.current.Resolve(KindList, o.listID)
	if err != nil {
		return c.abort(err)
	}
	email, invalid, err := c.current.ResolveEmail(email)
	if err != nil {
		return c.abort(err)
	}
	if invalid != nil {
		return c.record(*invalid)
	}

	member, env := c.lookupMember(ctx, listID, email)
	if c.err != nil {
		return c
	}
	if env != nil {
		return c.record(*env)
	}
	if !member {
		return c.record(failure(CodeNotInList, "The email is not in the list."))
	}

	res, ok := c.request(ctx, http.MethodDelete, memberPath(listID, email), nil, false)
	if !ok {
		return c
	}
	if env := res.failed(); env != nil {
		return c.record(*env)
	}
	return c.record(success(res.body))
}

// AddMembers subscribes every member to the current list with the given
// status. Each address is attempted even if an earlier one failed; the
// resulting envelope lists every input in Members and each outcome in
// Results, and is an error (members_failed) if any address failed. An empty
// address is rejected as invalid_email rather than falling back to the
// current one. A fatal error stops the batch; the envelope then holds the
// addresses attempted so far.
func (c *Client) AddMembers(ctx context.Context, status string, members ...Member) *Client {
	if c.halted() {
		return c
	}

	processed := make([]string, 0, len(members))
	results := make([]MemberResult, 0, len(members))
	failed := 0

	for _, m := range members {
		if strings.TrimSpace(m.Email) == "" {
			c.last = failure(CodeInvalidEmail, "Email address not valid.")
		} else {
			c.last = Envelope{}
			c.Subscribe(ctx, m.Email, WithStatus(status), WithMergeFields(m.MergeFields))
			if c.err != nil {
				env := failure(CodeMembersFailed, fmt.Sprintf("aborted after %d of %d members", len(processed), len(members)))
				env.Members = processed
				env.Results = results
				return c.record(env)
			}
		}

		processed = append(processed, m.Email)
		results = append(results, MemberResult{Email: m.Email, Envelope: c.last})
		if c.last.IsError() {
			failed++
		}
	}

	var env Envelope
	if failed > 0 {
		env = failure(CodeMembersFailed, fmt.Sprintf("%d of %d members could not be added", failed, len(members)))
	} else {
		env = Envelope{Outcome: OutcomeSuccess, Message: "See results."}
	}
	env.Members = processed
	env.Results = results

	return c.record(env)
}
