package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noisy/internal/field"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "noisy",
	Short: "Deterministic procedural noise: sample, render, bake and serve",
	Long: `Noisy evaluates simplex, fbm, domain-warped and Worley noise with results
that match the bundled WGSL shader prelude bit for bit on the same inputs.

It samples single values, renders fields to PNG or 16-bit TIFF heightmaps,
keeps baked images in a SQLite store and serves previews and map tiles.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.IntP("workers", "w", runtime.NumCPU(), "Number of sampling workers")

	// Field parameters are shared by every command and live under "field".
	def := field.DefaultParams()
	flags.String("kind", string(def.Kind), fmt.Sprintf("Noise kind (%s)", kindList()))
	flags.Uint("octaves", def.Octaves, "fbm octaves")
	flags.Float32("lacunarity", def.Lacunarity, "fbm frequency multiplier per octave")
	flags.Float32("gain", def.Gain, "fbm amplitude multiplier per octave")
	flags.Float32("seed", def.Seed, "Seed for seeded kinds")
	flags.Float32("z", def.Z, "Slice plane for 3D kinds")
	flags.Uint("warp-iterations", def.WarpIterations, "Domain warp iterations")
	flags.Float32("warp-scale-x", def.WarpScaleX, "Domain warp scale along x")
	flags.Float32("warp-scale-y", def.WarpScaleY, "Domain warp scale along y")
	flags.Float32("falloff", def.Falloff, "Domain warp scale falloff per iteration")
	flags.Float32("jitter", def.Jitter, "Worley feature point jitter (0..1)")
	flags.Float32("frequency", def.Frequency, "Input coordinate scale")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"verbose", "verbose"},
		{"workers", "workers"},
		{"field.kind", "kind"},
		{"field.octaves", "octaves"},
		{"field.lacunarity", "lacunarity"},
		{"field.gain", "gain"},
		{"field.seed", "seed"},
		{"field.z", "z"},
		{"field.warp_iterations", "warp-iterations"},
		{"field.warp_scale_x", "warp-scale-x"},
		{"field.warp_scale_y", "warp-scale-y"},
		{"field.falloff", "falloff"},
		{"field.jitter", "jitter"},
		{"field.frequency", "frequency"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, flags.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NOISY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadParams reads the "field" section from flags, env and config file.
func loadParams() (field.Params, error) {
	cfg := struct {
		Field field.Params `mapstructure:"field"`
	}{Field: field.DefaultParams()}

	if err := viper.Unmarshal(&cfg); err != nil {
		return field.Params{}, fmt.Errorf("failed to read field config: %w", err)
	}

	kind, err := field.ParseKind(string(cfg.Field.Kind))
	if err != nil {
		return field.Params{}, err
	}
	cfg.Field.Kind = kind

	if err := cfg.Field.Validate(); err != nil {
		return field.Params{}, fmt.Errorf("invalid field parameters: %w", err)
	}
	return cfg.Field, nil
}

func kindList() string {
	names := make([]string, 0, len(field.Kinds()))
	for _, k := range field.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
