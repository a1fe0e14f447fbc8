// Package cli implements qactl, the command line client for the knowledge-qa API.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	unknownDocumentID = "unknown_id"
	maxParallelUpload = 4
)

type app struct {
	cfgFile string
	json    bool
	noColor bool

	v       *viper.Viper
	cfg     *Config
	client  *Client
	printer *Printer
}

// NewRootCmd builds the qactl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "qactl",
		Short: "Ask questions about your uploaded documents",
		Long: `qactl talks to a knowledge-qa server.

Example usage:
  qactl upload notes.txt faq.txt     # Upload documents
  qactl docs list                    # List documents
  qactl ask "What is the refund policy?"
  qactl history --limit 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .qactl.yaml)")
	root.PersistentFlags().String("server", "", "server base URL (default "+defaultServer+")")
	root.PersistentFlags().BoolVar(&a.json, "json", false, "output as JSON")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	_ = a.v.BindPFlag("server", root.PersistentFlags().Lookup("server"))

	root.AddCommand(
		a.newAskCmd(),
		a.newDocsCmd(),
		a.newUploadCmd(),
		a.newHistoryCmd(),
	)
	return root
}

// Execute runs qactl with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.client = NewClient(cfg.Server, cfg.Timeout)

	useColors := cfg.Output.Colors && !a.noColor
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		useColors = false
	}
	a.printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors)
	return nil
}

func (a *app) newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from the uploaded documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.client.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.json {
				return a.printer.JSON(record)
			}

			a.printer.Print("%s", record.Answer)
			if len(record.Sources) == 0 {
				return nil
			}
			a.printer.Header("Sources")
			rows := make([][]string, 0, len(record.Sources))
			for _, s := range record.Sources {
				rows = append(rows, []string{a.printer.Citation(s.DocumentID), s.DocumentName, truncate(s.Excerpt, 60)})
			}
			return a.printer.Table([]string{"DOCUMENT ID", "NAME", "EXCERPT"}, rows)
		},
	}
}

func (a *app) newDocsCmd() *cobra.Command {
	docs := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage uploaded documents",
	}

	docs.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List documents, newest first",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := a.client.ListDocuments(cmd.Context())
				if err != nil {
					return err
				}
				if a.json {
					return a.printer.JSON(list)
				}
				rows := make([][]string, 0, len(list))
				for _, d := range list {
					rows = append(rows, []string{d.ID, d.Name, humanSize(d.FileSize), d.UploadedAt.Local().Format("2006-01-02 15:04")})
				}
				return a.printer.Table([]string{"ID", "NAME", "SIZE", "UPLOADED"}, rows)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print a document's content",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := a.client.GetDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if a.json {
					return a.printer.JSON(doc)
				}
				a.printer.Header(doc.Name)
				a.printer.Print("%s", doc.Content)
				return nil
			},
		},
		&cobra.Command{
			Use:     "delete <id>...",
			Aliases: []string{"rm"},
			Short:   "Delete documents",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, id := range args {
					if err := a.client.DeleteDocument(cmd.Context(), id); err != nil {
						return fmt.Errorf("deleting %s: %w", id, err)
					}
					a.printer.Success("deleted %s", id)
				}
				return nil
			},
		},
	)
	return docs
}

func (a *app) newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload plain-text documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploaded := make([]*Document, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxParallelUpload)
			for i, path := range args {
				g.Go(func() error {
					doc, err := a.client.Upload(ctx, path)
					if err != nil {
						return fmt.Errorf("uploading %s: %w", path, err)
					}
					uploaded[i] = doc
					return nil
				})
			}
			err := g.Wait()

			done := make([]*Document, 0, len(uploaded))
			for _, doc := range uploaded {
				if doc != nil {
					done = append(done, doc)
				}
			}
			if a.json {
				if jerr := a.printer.JSON(done); jerr != nil {
					return jerr
				}
				return err
			}
			for _, doc := range done {
				a.printer.Success("uploaded %s (%s) as %s", doc.Name, humanSize(doc.FileSize), doc.ID)
			}
			return err
		},
	}
}

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently answered questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.client.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.json {
				return a.printer.JSON(records)
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.AskedAt.Local().Format("2006-01-02 15:04"),
					truncate(r.Question, 40),
					truncate(r.Answer, 60),
					fmt.Sprint(len(r.Sources)),
				})
			}
			return a.printer.Table([]string{"ASKED", "QUESTION", "ANSWER", "SOURCES"}, rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (server caps at 50)")
	return cmd
}
