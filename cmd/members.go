package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/chimpchain/mailchimp"
)

var (
	memberList   string
	memberLists  []string
	memberStatus string
	memberFields []string
)

// subscribeCmd represents the subscribe command
var subscribeCmd = &cobra.Command{
	Use:   "subscribe <email>...",
	Short: "Add one or more addresses to a list",
	Long: `Add addresses to a list. An address already on the list is reported and
skipped. With several addresses every one is attempted and the result lists
the outcome of each.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubscribe,
}

// unsubscribeCmd represents the unsubscribe command
var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe <email>",
	Short: "Remove an address from a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Unsubscribe(cmd.Context(), args[0], mailchimp.ToList(memberList))
		return finish(cmd)
	},
}

// memberCmd represents the member command
var memberCmd = &cobra.Command{
	Use:   "member <email>",
	Short: "Check whether an address is on one or more lists",
	Args:  cobra.ExactArgs(1),
	RunE:  runMember,
}

func init() {
	for _, cmd := range []*cobra.Command{subscribeCmd, unsubscribeCmd} {
		cmd.Flags().StringVarP(&memberList, "list", "l", "", "list ID")
		_ = cmd.MarkFlagRequired("list")
	}
	subscribeCmd.Flags().StringVar(&memberStatus, "status", mailchimp.StatusSubscribed, "member status (subscribed, pending, unsubscribed, cleaned)")
	subscribeCmd.Flags().StringArrayVar(&memberFields, "merge", nil, "merge field as TAG=value, repeatable")

	memberCmd.Flags().StringSliceVarP(&memberLists, "list", "l", nil, "list IDs, comma separated or repeated")
	_ = memberCmd.MarkFlagRequired("list")

	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(memberCmd)
}

// parseMergeFields parses TAG=value pairs; tags are upper-cased
func parseMergeFields(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		tag, value, ok := strings.Cut(pair, "=")
		tag = strings.TrimSpace(tag)
		if !ok || tag == "" {
			return nil, fmt.Errorf("invalid merge field %q (want TAG=value)", pair)
		}
		fields[strings.ToUpper(tag)] = value
	}
	return fields, nil
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	fields, err := parseMergeFields(memberFields)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if len(args) == 1 {
		client.Subscribe(ctx, args[0],
			mailchimp.ToList(memberList),
			mailchimp.WithStatus(memberStatus),
			mailchimp.WithMergeFields(fields),
		)
		return finish(cmd)
	}

	members := mailchimp.Addresses(args...)
	for i := range members {
		members[i].MergeFields = fields
	}
	client.SelectList(memberList).AddMembers(ctx, memberStatus, members...)
	return finish(cmd)
}

func runMember(cmd *cobra.Command, args []string) error {
	results, err := client.MembershipAcross(cmd.Context(), args[0], memberLists)
	if err != nil {
		return err
	}

	p, err := newPrinter(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return p.Membership(args[0], results)
}
