package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/validation"
)

type ExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	var w io.Writer = ctx.Out
	if c.Output != "" {
		f, err := os.OpenFile(c.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := ctx.Store.Export(w, ctx.Service.Today()); err != nil {
		return err
	}
	if c.Output != "" {
		fmt.Fprintf(ctx.Out, "✓ Exported to %s\n", c.Output)
	}
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"JSON export to load, in habitquest or browser widget format." type:"existingfile"`
	Yes  bool   `short:"y" help:"Replace existing habits without asking."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	habits, stats, err := storage.ReadSnapshot(f, ctx.Service.Today())
	if err != nil {
		return err
	}

	result := validation.ValidateRecords(habits, stats)
	if result.HasIssues() {
		fmt.Fprint(ctx.Out, result.FormatReport())
		return fmt.Errorf("import file failed validation with %d issue(s)", len(result.Issues))
	}

	current, err := ctx.Service.State()
	if err != nil {
		return err
	}
	if len(current.Habits) > 0 && !c.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Replace %d existing habit(s) with %d from %s?", len(current.Habits), len(habits), c.File))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Service.Replace(habits, stats); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Imported %d habit(s), %s\n", len(habits), formatStats(stats))
	return nil
}
