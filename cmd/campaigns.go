package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/chimpchain/mailchimp"
)

var (
	campaignList     string
	campaignType     string
	campaignSubject  string
	campaignFromName string
	campaignReplyTo  string
	campaignTitle    string
	campaignBody     string
	campaignBodyFile string
	campaignHTML     bool
	campaignText     string
	campaignSend     bool
)

// campaignsCmd represents the campaigns command
var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List campaigns",
	Long: `Fetch campaigns, optionally narrowed by a filter expression such as
  status == "sent" and containsFold(subject(), "launch")`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollection(cmd, "campaigns", []string{"id", "type", "status", "settings.subject_line", "create_time"},
			func() *mailchimp.Client {
				return client.Campaigns(cmd.Context(), count, nil)
			})
	},
}

// campaignCmd groups campaign authoring commands
var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Create campaigns",
}

// campaignCreateCmd represents the campaign create command
var campaignCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign, set its content and optionally send it",
	Long: `Create a campaign for a list, set its content and, with --send, send it.
The steps are chained: a failing step stops the ones after it.

--subject, --from-name and --reply-to are required; a missing or malformed
one is reported as settings_error before anything is sent to Mailchimp.`,
	Args: cobra.NoArgs,
	RunE: runCampaignCreate,
}

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <campaign-id>",
	Short: "Send a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Send(cmd.Context(), args[0])
		return finish(cmd)
	},
}

// deleteCampaignCmd represents the delete-campaign command
var deleteCampaignCmd = &cobra.Command{
	Use:   "delete-campaign <campaign-id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client.DeleteCampaign(cmd.Context(), args[0])
		return finish(cmd)
	},
}

func init() {
	addFilterFlags(campaignsCmd)

	flags := campaignCreateCmd.Flags()
	flags.StringVarP(&campaignList, "list", "l", "", "recipient list ID")
	flags.StringVar(&campaignType, "type", mailchimp.CampaignRegular, "campaign type (regular, plaintext, absplit, rss, variate)")
	flags.StringVar(&campaignSubject, "subject", "", "subject line")
	flags.StringVar(&campaignFromName, "from-name", "", "sender name")
	flags.StringVar(&campaignReplyTo, "reply-to", "", "reply-to email address")
	flags.StringVar(&campaignTitle, "title", "", "internal campaign title")
	flags.StringVar(&campaignBody, "body", "", "campaign body")
	flags.StringVar(&campaignBodyFile, "body-file", "", "read the campaign body from a file")
	flags.BoolVar(&campaignHTML, "html", false, "the body is HTML")
	flags.StringVar(&campaignText, "plain-text", "", "plain-text alternative for an HTML body")
	flags.BoolVar(&campaignSend, "send", false, "send the campaign once its content is set")
	_ = campaignCreateCmd.MarkFlagRequired("list")
	campaignCreateCmd.MarkFlagsMutuallyExclusive("body", "body-file")

	campaignCmd.AddCommand(campaignCreateCmd)
	rootCmd.AddCommand(campaignsCmd)
	rootCmd.AddCommand(campaignCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(deleteCampaignCmd)
}

// campaignSettings collects the settings flags that were given
func campaignSettings() map[string]any {
	settings := make(map[string]any)
	for key, value := range map[string]string{
		"subject_line": campaignSubject,
		"from_name":    campaignFromName,
		"reply_to":     campaignReplyTo,
		"title":        campaignTitle,
	} {
		if value != "" {
			settings[key] = value
		}
	}
	return settings
}

func runCampaignCreate(cmd *cobra.Command, args []string) error {
	body := campaignBody
	if campaignBodyFile != "" {
		data, err := os.ReadFile(campaignBodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}
	if body == "" {
		return fmt.Errorf("a campaign body is required (--body or --body-file)")
	}

	ctx := cmd.Context()
	client.
		CreateCampaign(ctx, mailchimp.CampaignParams{
			ListID:   campaignList,
			Type:     campaignType,
			Settings: campaignSettings(),
		}).
		SetContent(ctx, mailchimp.Content{
			Body:      body,
			HTML:      campaignHTML,
			PlainText: campaignText,
		})
	if campaignSend {
		client.Send(ctx, "")
	}

	if id := client.CurrentCampaign(); id != "" {
		logger.Info().Str("campaign_id", id).Msg("Campaign ready")
	}
	return finish(cmd)
}
