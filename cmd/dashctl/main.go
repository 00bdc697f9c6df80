package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"placementdash/app"
	"placementdash/domain/placement"
	"placementdash/domain/sheet"
	"placementdash/internal/config"
	"placementdash/internal/container"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Inspect learner placement data from the command line",
	}

	rootCmd.AddCommand(
		newDashboardCmd(),
		newParseCSVCmd(),
		newSourcesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadContainer() (*container.Container, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func newDashboardCmd() *cobra.Command {
	var email, from, to, stage string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch one learner's dashboard",
		Long: `Fetch the joined student and applications view for one learner.

Example: dashctl dashboard --email learner@example.com --stage Rejected`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilterFlags(from, to, stage)
			if err != nil {
				return err
			}

			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			dashboard, err := c.DashboardService.Dashboard(cmd.Context(), email)
			if err != nil {
				return err
			}
			summary := placement.Summarize(dashboard.Student, dashboard.Applications, filter)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					*app.Dashboard
					Summary placement.Summary `json:"summary"`
				}{dashboard, summary})
			}
			renderDashboard(cmd.OutOrStdout(), dashboard, filter, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Learner email (case-insensitive)")
	cmd.Flags().StringVar(&from, "from", "", "Only applications on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only applications on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&stage, "stage", "", "Only applications in this stage")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newParseCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-csv FILE",
		Short: "Tokenize a CSV file and print its normalized records as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParseCSV(cmd.OutOrStdout(), args[0])
		},
	}
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show which upstream serves each dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Dataset", "Strategy"})
			for _, choice := range c.Selector.Describe(c.DashboardService.Datasets()...) {
				table.Append([]string{choice.Dataset, choice.Strategy})
			}
			table.Render()

			if email := c.Selector.ServiceAccount(); email != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Service account: %s\n", email)
			}
			return nil
		},
	}
}

func parseFilterFlags(from, to, stage string) (placement.Filter, error) {
	f := placement.Filter{Stage: stage}
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return f, fmt.Errorf("invalid --from date (use YYYY-MM-DD): %w", err)
		}
		f.From = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return f, fmt.Errorf("invalid --to date (use YYYY-MM-DD): %w", err)
		}
		f.To = &t
	}
	return f, nil
}

func runParseCSV(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	rows, err := sheet.ReadCSV(f)
	if err != nil {
		return err
	}
	return writeJSON(w, sheet.RowsToRecords(rows))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderDashboard(w io.Writer, d *app.Dashboard, filter placement.Filter, s placement.Summary) {
	heading := color.New(color.FgCyan, color.Bold)
	st := d.Student

	heading.Fprintf(w, "\n=== %s ===\n", placement.OrPlaceholder(st.Name))
	profile := tablewriter.NewWriter(w)
	profile.SetHeader([]string{"Field", "Value"})
	profile.AppendBulk([][]string{
		{"Email", placement.OrPlaceholder(st.Email)},
		{"User ID", placement.OrPlaceholder(st.UserID)},
		{"Program", placement.OrPlaceholder(st.Program)},
		{"Status", placement.OrPlaceholder(st.Status)},
		{"Experience", placement.FormatExperience(st.Experience)},
		{"Current CTC", placement.FormatCTC(st.CTC)},
		{"Notice period", placement.FormatNoticePeriod(st.NoticePeriod)},
		{"Skills", placement.OrPlaceholder(st.Skills)},
	})
	profile.Render()

	heading.Fprintf(w, "\nApplications (%d of %d)\n", s.Filtered, s.Total)
	apps := tablewriter.NewWriter(w)
	apps.SetHeader([]string{"Company", "Role", "Stage", "Date", "Rejection reason"})
	for _, a := range placement.FilterApplications(d.Applications, filter) {
		apps.Append([]string{
			placement.OrPlaceholder(a.Company),
			placement.OrPlaceholder(a.JobRole),
			placement.OrPlaceholder(a.Stage),
			placement.OrPlaceholder(a.ApplicationDate),
			placement.OrPlaceholder(a.RejectionReason),
		})
	}
	apps.Render()

	if len(s.Rejections) > 0 {
		heading.Fprintln(w, "\nRejection reasons")
		rej := tablewriter.NewWriter(w)
		rej.SetHeader([]string{"Reason", "Count", "Percent"})
		for _, r := range s.Rejections {
			rej.Append([]string{r.Reason, strconv.Itoa(r.Count), strconv.FormatFloat(r.Percent, 'f', 1, 64) + "%"})
		}
		rej.Render()
	}

	if s.Conversion.ResumeToShortlistPct != nil {
		fmt.Fprintf(w, "Resume to shortlist: %.1f%%\n", *s.Conversion.ResumeToShortlistPct)
	}
	if s.Conversion.InterviewToHirePct != nil {
		fmt.Fprintf(w, "Interview to hire: %.1f%%\n", *s.Conversion.InterviewToHirePct)
	}
}
