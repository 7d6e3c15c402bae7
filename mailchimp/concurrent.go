package mailchimp

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MembershipResult is the membership of one address in one list
type MembershipResult struct {
	ListID   string    `json:"list_id" yaml:"list_id"`
	Member   bool      `json:"member" yaml:"member"`
	Envelope *Envelope `json:"envelope,omitempty" yaml:"envelope,omitempty"`
}

// MembershipAcross checks email against several lists concurrently. Each
// lookup runs on its own Fork, so the receiver's context and chain state
// are left untouched. Results are in listIDs order; an empty email falls
// back to the current address.
func (c *Client) MembershipAcross(ctx context.Context, email string, listIDs []string) ([]MembershipResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		email = c.current.Email
	}
	if email == "" {
		return nil, &MissingContextError{Kind: KindEmail}
	}

	results := make([]MembershipResult, len(listIDs))
	if !ValidEmail(email) {
		env := failure(CodeInvalidEmail, "Email address not valid.")
		for i, listID := range listIDs {
			results[i] = MembershipResult{ListID: listID, Envelope: &env}
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.concurrency)

	for i, listID := range listIDs {
		g.Go(func() error {
			fork := c.Fork()
			member, env := fork.IsMember(ctx, email, listID)
			if err := fork.Err(); err != nil {
				return fmt.Errorf("list %q: %w", listID, err)
			}

			results[i] = MembershipResult{
				ListID:   listID,
				Member:   member,
				Envelope: env,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("email", email).
		Int("lists", len(listIDs)).
		Msg("Checked membership across lists")
	return results, nil
}
