package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Check or rewrite the golden noise samples",
}

var snapshotVerifyCmd = &cobra.Command{
	Use:   "verify [SET...]",
	Short: "Compare every golden set (or the named ones) against the kernels",
	RunE:  runSnapshotVerify,
}

var snapshotUpdateCmd = &cobra.Command{
	Use:   "update [SET...]",
	Short: "Rewrite golden files from the current kernels",
	RunE:  runSnapshotUpdate,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotVerifyCmd, snapshotUpdateCmd)

	snapshotCmd.PersistentFlags().String("dir", filepath.Join("testdata", "golden", "noise"), "Golden file directory")
	snapshotCmd.PersistentFlags().Float64("tolerance", snapshot.DefaultTolerance, "Relative tolerance for verify")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"snapshot.dir", "dir"},
		{"snapshot.tolerance", "tolerance"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, snapshotCmd.PersistentFlags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// selectSets returns the named sets, or all of them when names is empty.
func selectSets(names []string) ([]snapshot.Set, error) {
	if len(names) == 0 {
		return snapshot.Sets(), nil
	}
	sets := make([]snapshot.Set, 0, len(names))
	for _, name := range names {
		s, ok := snapshot.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown snapshot set %q", name)
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func runSnapshotVerify(cmd *cobra.Command, args []string) error {
	sets, err := selectSets(args)
	if err != nil {
		return err
	}
	return verifySnapshots(cmd.OutOrStdout(), sets, viper.GetString("snapshot.dir"), viper.GetFloat64("snapshot.tolerance"))
}

func verifySnapshots(out io.Writer, sets []snapshot.Set, dir string, tol float64) error {
	var errs []error
	for _, s := range sets {
		want, err := snapshot.Load(dir, s.Name)
		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(out, "FAIL %s: %v\n", s.Name, err)
			continue
		}

		mismatches := snapshot.Compare(s.Sample(), want, tol)
		if len(mismatches) == 0 {
			fmt.Fprintf(out, "ok   %s (%d values)\n", s.Name, len(want))
			continue
		}

		errs = append(errs, fmt.Errorf("%s: %d values differ", s.Name, len(mismatches)))
		fmt.Fprintf(out, "FAIL %s: %d of %d values differ\n", s.Name, len(mismatches), len(want))
		for _, m := range mismatches[:min(len(mismatches), 5)] {
			fmt.Fprintf(out, "     %s\n", m)
		}
	}
	return errors.Join(errs...)
}

func runSnapshotUpdate(cmd *cobra.Command, args []string) error {
	sets, err := selectSets(args)
	if err != nil {
		return err
	}
	return updateSnapshots(cmd.OutOrStdout(), sets, viper.GetString("snapshot.dir"))
}

func updateSnapshots(out io.Writer, sets []snapshot.Set, dir string) error {
	for _, s := range sets {
		values := s.Sample()
		if err := snapshot.Save(dir, s.Name, values); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (%d values)\n", snapshot.Path(dir, s.Name), len(values))
	}
	return nil
}
