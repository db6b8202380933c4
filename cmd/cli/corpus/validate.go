package corpus

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/myrjola/casebook/internal/content"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/logging"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "content",
	Title: "Content",
}

var dir string

func init() {
	Validate.Flags().StringVar(&dir, "dir", "", "directory with case YAML files, defaults to the embedded corpus")
}

var Validate = &cobra.Command{
	Use:     "validate",
	GroupID: "content",
	Short:   "Validate case content",
	Long:    "Loads every case and weekly case, checks the cross references and lists what was found",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fsys := content.Embedded()
		if dir != "" {
			fsys = os.DirFS(dir)
		}
		return validate(cmd.OutOrStdout(), cmd.ErrOrStderr(), fsys)
	},
}

func validate(out io.Writer, logSink io.Writer, fsys fs.FS) error {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))
	repo, err := content.Load(fsys, logger)
	if err != nil {
		return errors.Wrap(err, "load content")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0) //nolint:mnd // column padding
	_, _ = fmt.Fprintln(tw, "KIND\tID\tTITLE\tCLUES\tSUSPECTS")
	for _, id := range repo.CaseIDs() {
		c, _ := repo.Case(id)
		_, _ = fmt.Fprintf(tw, "daily\t%s\t%s\t%d\t%d\n", c.ID, c.Title, len(c.Clues), len(c.Suspects))
	}
	for _, id := range repo.WeeklyCaseIDs() {
		w, _ := repo.WeeklyCase(id)
		_, _ = fmt.Fprintf(tw, "weekly\t%s\t%s\t%d\t%d\n", w.ID, w.Title, len(w.AllClues), len(w.Suspects))
	}
	if err = tw.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}
