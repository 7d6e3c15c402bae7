package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/chimpchain/filter"
	"github.com/s0up4200/chimpchain/mailchimp"
)

var listFile string

// listsCmd represents the lists command
var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List audience lists",
	Long: `Fetch audience lists, optionally narrowed by a filter expression such as
  memberCount() > 100 and daysSince(date_created) > 30`,
	Args: cobra.NoArgs,
	RunE: runLists,
}

// createListCmd represents the create-list command
var createListCmd = &cobra.Command{
	Use:   "create-list",
	Short: "Create an audience list from a YAML definition",
	Long: `Create an audience list. The definition file holds name, contact,
campaign_defaults, and optionally permission_reminder and email_type_option.
Any other keys are sent as-is.`,
	Args: cobra.NoArgs,
	RunE: runCreateList,
}

// deleteListCmd represents the delete-list command
var deleteListCmd = &cobra.Command{
	Use:   "delete-list <list-id>",
	Short: "Delete an audience list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client.SelectList(args[0]).Delete(cmd.Context())
		return finish(cmd)
	},
}

func init() {
	addFilterFlags(listsCmd)
	createListCmd.Flags().StringVar(&listFile, "file", "", "YAML list definition")
	_ = createListCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(createListCmd)
	rootCmd.AddCommand(deleteListCmd)
}

func runLists(cmd *cobra.Command, args []string) error {
	return runCollection(cmd, "lists", []string{"id", "name", "stats.member_count", "date_created"},
		func() *mailchimp.Client {
			return client.Lists(cmd.Context(), count, nil)
		})
}

// runCollection fetches a collection, filters it and prints the records
func runCollection(cmd *cobra.Command, key string, columns []string, fetch func() *mailchimp.Client) error {
	f, err := selectFilter()
	if err != nil {
		return err
	}

	env, err := fetch().Fetch()
	if err != nil {
		return err
	}
	if env.IsError() {
		return finish(cmd)
	}

	records, err := filter.Records(env.Payload, key)
	if err != nil {
		return fmt.Errorf("unexpected %s response: %w", key, err)
	}
	if f != nil {
		logger.Debug().Str("filter", f.Expression()).Int("records", len(records)).Msg("Applying filter")
		if records, err = filter.Select(cmd.Context(), f, records); err != nil {
			return err
		}
	}

	p, err := newPrinter(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return p.Records(records, columns)
}

// listDefinition is the create-list file format
type listDefinition struct {
	Name               string         `yaml:"name"`
	Contact            map[string]any `yaml:"contact"`
	CampaignDefaults   map[string]any `yaml:"campaign_defaults"`
	PermissionReminder string         `yaml:"permission_reminder"`
	EmailTypeOption    bool           `yaml:"email_type_option"`
	Extra              map[string]any `yaml:",inline"`
}

func loadListDefinition(path string) (mailchimp.ListParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mailchimp.ListParams{}, fmt.Errorf("failed to read list definition: %w", err)
	}

	var def listDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return mailchimp.ListParams{}, fmt.Errorf("failed to parse list definition: %w", err)
	}

	return mailchimp.ListParams{
		Name:               def.Name,
		Contact:            def.Contact,
		CampaignDefaults:   def.CampaignDefaults,
		PermissionReminder: def.PermissionReminder,
		EmailTypeOption:    def.EmailTypeOption,
		Extra:              def.Extra,
	}, nil
}

func runCreateList(cmd *cobra.Command, args []string) error {
	params, err := loadListDefinition(listFile)
	if err != nil {
		return err
	}

	client.CreateList(cmd.Context(), params)
	return finish(cmd)
}
