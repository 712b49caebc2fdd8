package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/bakestore"
	"github.com/MeKo-Tech/noisy/internal/raster"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stored bake to an image file",
	Long: `Write a bake from the store to disk. When the output extension names a
different format than the stored one, the image is re-encoded.`,
	RunE: runExport,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the bakes in a store",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Remove bakes from a store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(exportCmd, listCmd, deleteCmd)

	exportCmd.Flags().String("db", "bakes.db", "Bake store path")
	exportCmd.Flags().String("name", "", "Bake name (required)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default <name>.<stored format>)")
	listCmd.Flags().String("db", "bakes.db", "Bake store path")
	deleteCmd.Flags().String("db", "bakes.db", "Bake store path")

	bindFlags := []struct {
		cmd  *cobra.Command
		key  string
		flag string
	}{
		{exportCmd, "export.db", "db"},
		{exportCmd, "export.name", "name"},
		{exportCmd, "export.output", "output"},
		{listCmd, "list.db", "db"},
		{deleteCmd, "delete.db", "db"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, bf.cmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("export.name")
	if name == "" {
		return fmt.Errorf("--name is required")
	}

	r, err := bakestore.OpenReader(viper.GetString("export.db"))
	if err != nil {
		return err
	}
	defer r.Close()

	b, err := r.Get(name)
	if err != nil {
		return err
	}
	stored, err := raster.ParseFormat(b.Format)
	if err != nil {
		return fmt.Errorf("bake %q: %w", name, err)
	}

	output := viper.GetString("export.output")
	if output == "" {
		output = name + "." + stored.Extension()
	}
	format, err := raster.FormatForPath(output)
	if err != nil {
		return err
	}

	if format == stored {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
		}
		if err := os.WriteFile(output, b.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	} else {
		img, err := raster.Decode(bytes.NewReader(b.Data), stored)
		if err != nil {
			return fmt.Errorf("failed to decode bake %q: %w", name, err)
		}
		if err := raster.WriteFile(output, img, format, raster.EncodeOptions{}); err != nil {
			return err
		}
	}

	logger.Info("Bake exported", "name", name, "path", output, "format", format)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := bakestore.OpenReader(viper.GetString("list.db"))
	if err != nil {
		return err
	}
	defer r.Close()

	entries, err := r.List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSIZE\tFORMAT\tREGION\tBYTES\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\t%d\t%s\n",
			e.Name, e.Kind, e.Width, e.Height, e.Format, e.Region, e.Size, e.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	w, err := bakestore.New(viper.GetString("delete.db"), bakestore.Metadata{})
	if err != nil {
		return err
	}
	defer w.Close()

	var errs []error
	for _, name := range args {
		if err := w.Delete(name); err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Info("Bake deleted", "name", name)
	}
	return errors.Join(errs...)
}
