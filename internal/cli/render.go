package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/patient-table/internal/config"
	"github.com/jwalitptl/patient-table/internal/model"
	"github.com/jwalitptl/patient-table/pkg/logger"
)

type RenderOptions struct {
	*RootOptions
	SeedPath string
	Sort     string
	Search   string
}

var columnTitles = map[model.Field]string{
	model.FieldFirstName: "FIRST NAME",
	model.FieldLastName:  "LAST NAME",
	model.FieldMedicalID: "MEDICAL ID",
	model.FieldAge:       "AGE",
	model.FieldSex:       "SEX",
}

// NewRenderCommand prints the visible records of the seed dataset.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the patient table",
		Long:  "Loads the seed dataset, applies an optional sort column and first-name search, and prints the table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SeedPath, "seed", "", "seed dataset file (overrides seed.path)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "column to sort by (first_name, last_name, medical_id, age, sex)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "first-name prefix to filter by")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.SeedPath != "" {
		cfg.Seed.Path = opts.SeedPath
	}

	var sortKey model.Field
	if opts.Sort != "" {
		if sortKey, err = model.ParseField(opts.Sort); err != nil {
			return fmt.Errorf("invalid --sort: %w", err)
		}
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: cfg.Log.TimeFormat,
		Output:     cmd.ErrOrStderr(),
	})
	store, err := newStore(cfg, log)
	if err != nil {
		return err
	}

	patients, err := newLoader(cfg).Load(cmd.Context())
	if err != nil {
		return err
	}
	store.Initialize(patients)
	if sortKey != "" {
		store.SortBy(sortKey)
	}
	store.SetSearchTerm(opts.Search)

	return writeTable(cmd.OutOrStdout(), store.VisibleRecords())
}

func writeTable(out io.Writer, records []model.Patient) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	titles := make([]string, 0, len(model.Fields))
	for _, f := range model.Fields {
		titles = append(titles, columnTitles[f])
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, p := range records {
		cells := make([]string, 0, len(model.Fields))
		for _, f := range model.Fields {
			cells = append(cells, p.Get(f))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}
