package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/shader"
)

var shaderCmd = &cobra.Command{
	Use:   "shader",
	Short: "Print or write the WGSL noise prelude",
	Long: fmt.Sprintf(`Print the WGSL prelude that mirrors the Go kernels. Shader composers
import it as %q.`, shader.ImportPath),
	RunE: runShader,
}

func init() {
	rootCmd.AddCommand(shaderCmd)

	shaderCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	if err := viper.BindPFlag("shader.output", shaderCmd.Flags().Lookup("output")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func runShader(cmd *cobra.Command, args []string) error {
	output := viper.GetString("shader.output")
	if output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), shader.Source())
		return err
	}
	if err := os.WriteFile(output, []byte(shader.Source()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}
