package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/s0up4200/chimpchain/filter"
	"github.com/s0up4200/chimpchain/mailchimp"
)

type printer struct {
	format string
	out    io.Writer
}

func newPrinter(format string, out io.Writer) (*printer, error) {
	switch format {
	case "table", "json", "yaml":
		return &printer{format: format, out: out}, nil
	}
	return nil, fmt.Errorf("invalid output format: %s (must be table, json or yaml)", format)
}

// Envelope prints an operation result
func (p *printer) Envelope(env mailchimp.Envelope) error {
	switch p.format {
	case "json":
		return p.json(env)
	case "yaml":
		return p.yaml(env)
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Outcome:\t%s\n", env.Outcome)
	if env.IsError() {
		fmt.Fprintf(w, "Code:\t%s\n", env.Code)
	}
	if env.Message != "" {
		fmt.Fprintf(w, "Message:\t%s\n", env.Message)
	}
	if env.ID != "" {
		fmt.Fprintf(w, "ID:\t%s\n", env.ID)
	}
	for _, res := range env.Results {
		status := "ok"
		if res.Envelope.IsError() {
			status = fmt.Sprintf("%s: %s", res.Envelope.Code, res.Envelope.Message)
		}
		fmt.Fprintf(w, "  • %s\t%s\n", res.Email, status)
	}
	return w.Flush()
}

// Records prints collection entries; table output shows columns, each a
// dotted path into the record.
func (p *printer) Records(records []filter.Record, columns []string) error {
	switch p.format {
	case "json":
		return p.json(records)
	case "yaml":
		return p.yaml(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(p.out, "No records found.")
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(rec, col)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// Membership prints one address's membership across lists
func (p *printer) Membership(email string, results []mailchimp.MembershipResult) error {
	switch p.format {
	case "json":
		return p.json(results)
	case "yaml":
		return p.yaml(results)
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "LIST\t%s\n", email)
	for _, res := range results {
		state := "not a member"
		switch {
		case res.Envelope != nil:
			state = fmt.Sprintf("error %s: %s", res.Envelope.Code, res.Envelope.Message)
		case res.Member:
			state = "member"
		}
		fmt.Fprintf(w, "%s\t%s\n", res.ListID, state)
	}
	return w.Flush()
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) yaml(v any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func cell(rec filter.Record, path string) string {
	var cur any = rec
	for part := range strings.SplitSeq(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[part]
	}
	switch v := cur.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
