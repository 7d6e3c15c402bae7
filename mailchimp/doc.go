// Package mailchimp provides a chainable client for the Mailchimp v3 list
// and campaign API.
//
// A Client remembers the list, campaign and address used by earlier calls,
// so later calls in the same chain can leave them out:
//
//	client, err := mailchimp.NewClient(apiKey, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	env, err := client.
//		SelectList("abc123").
//		Subscribe(ctx, "a@example.com").
//		Subscribe(ctx, "b@example.com", mailchimp.WithStatus(mailchimp.StatusPending)).
//		Fetch()
//
// # Chain state
//
// Every chained operation leaves an Envelope behind, readable with Fetch.
// Once an operation records an error envelope, later chained operations do
// nothing until SelectList or SelectCampaign rearms the chain. Setters and
// getters always run.
//
// # Error Handling
//
// There are two tiers:
//
//   - Fatal errors (missing context, transport failures) abort the chain and
//     are returned by Err and Fetch. They match ErrMissingContext or
//     ErrTransport with errors.Is, and are never cleared on that instance.
//   - Classified errors (API 4xx responses and local validation) are
//     Envelope values with a stable Code. Envelope.Err converts one to an
//     *APIError.
//
// NewClient itself fails with ErrEmptyAPIKey, ErrInvalidAPIKey or
// ErrUnauthorized.
//
// # Concurrency
//
// A Client is not safe for concurrent use. Fork gives an independent
// instance sharing the transport; MembershipAcross uses one fork per list.
package mailchimp
