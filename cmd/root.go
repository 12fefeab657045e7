package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tiletex/tiletex/internal/api"
	"github.com/tiletex/tiletex/internal/pipeline"
	"github.com/tiletex/tiletex/internal/typeset"
	"github.com/tiletex/tiletex/pkg/raster"
)

const version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tiletex",
	Short: "Render typeset math into cropped, tiled raster payloads",
	Long: `tiletex rasterizes typeset mathematical markup through a typesetting
service, crops the result to its visible content plus a margin, optionally
rescales it, and splits it into fixed-height row tiles that a constrained
client can reassemble from raw pixel buffers.

Examples:
  # Render a formula to a PNG file
  tiletex --markup '\frac{1}{2}' --typeset-url http://localhost:3000/render -o half.png

  # Render at higher density with a forced color and a 2px margin
  tiletex -m 'e^{i\pi}+1=0' --typeset-url http://localhost:3000/render --scale 4 --color '#ffffff' --margin 2 -o euler.png

  # Resize into a 200x100 frame and dump the tile payload as JSON
  tiletex -m '\sqrt{2}' --typeset-url http://localhost:3000/render --target-width 200 --target-height 100 --json

  # Start HTTP server
  tiletex serve --port 8080 --typeset-url http://localhost:3000/render`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no flags and no args, show help
		if len(args) == 0 && viper.GetString("markup") == "" {
			return cmd.Help()
		}
		return runRender(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tiletex.yaml)")
	rootCmd.PersistentFlags().String("typeset-url", "", "typesetting service endpoint URL (required)")
	rootCmd.PersistentFlags().Int("render-workers", pipeline.DefaultWorkers, "maximum concurrent rasterizations")

	// Output options
	rootCmd.Flags().StringP("output", "o", "", "output PNG file (default: stdout)")
	rootCmd.Flags().Bool("json", false, "emit the tile payload as JSON instead of a PNG")

	// Render options
	rootCmd.Flags().StringP("markup", "m", "", "markup to typeset (required)")
	rootCmd.Flags().Float64("scale", pipeline.DefaultScale, "rasterization density")
	rootCmd.Flags().Float64("font-size", pipeline.DefaultFontSize, "font size in points")
	rootCmd.Flags().String("color", "", "forced stroke/fill color (passed to the typesetting service)")
	rootCmd.Flags().Int("margin", pipeline.DefaultMargin, "margin around the visible content in pixels")
	rootCmd.Flags().Int("alpha-threshold", raster.DefaultAlphaThreshold, "alpha cutoff for content detection")
	rootCmd.Flags().IntP("tile-height", "t", pipeline.DefaultTileHeight, "rows per tile")
	rootCmd.Flags().Int("target-width", 0, "resize target width in pixels")
	rootCmd.Flags().Int("target-height", 0, "resize target height in pixels")
	rootCmd.Flags().String("fit", "contain", "resize fit policy (contain|stretch)")

	// Bind flags to viper for root command
	viper.BindPFlag("typeset-url", rootCmd.PersistentFlags().Lookup("typeset-url"))
	viper.BindPFlag("render-workers", rootCmd.PersistentFlags().Lookup("render-workers"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("json", rootCmd.Flags().Lookup("json"))
	viper.BindPFlag("markup", rootCmd.Flags().Lookup("markup"))
	viper.BindPFlag("scale", rootCmd.Flags().Lookup("scale"))
	viper.BindPFlag("font-size", rootCmd.Flags().Lookup("font-size"))
	viper.BindPFlag("color", rootCmd.Flags().Lookup("color"))
	viper.BindPFlag("margin", rootCmd.Flags().Lookup("margin"))
	viper.BindPFlag("alpha-threshold", rootCmd.Flags().Lookup("alpha-threshold"))
	viper.BindPFlag("tile-height", rootCmd.Flags().Lookup("tile-height"))
	viper.BindPFlag("target-width", rootCmd.Flags().Lookup("target-width"))
	viper.BindPFlag("target-height", rootCmd.Flags().Lookup("target-height"))
	viper.BindPFlag("fit", rootCmd.Flags().Lookup("fit"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tiletex" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tiletex")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	markup := viper.GetString("markup")
	if markup == "" && len(args) > 0 {
		markup = args[0]
	}
	if markup == "" {
		return fmt.Errorf("markup is required (use --markup or pass it as an argument)")
	}

	serviceURL := viper.GetString("typeset-url")
	if serviceURL == "" {
		return fmt.Errorf("typesetting service URL is required (use --typeset-url)")
	}

	fit, err := raster.ParseFit(viper.GetString("fit"))
	if err != nil {
		return err
	}

	params := pipeline.Params{
		Markup:         markup,
		Scale:          viper.GetFloat64("scale"),
		FontSize:       viper.GetFloat64("font-size"),
		Color:          viper.GetString("color"),
		Margin:         viper.GetInt("margin"),
		AlphaThreshold: viper.GetInt("alpha-threshold"),
		TileHeight:     viper.GetInt("tile-height"),
		TargetWidth:    viper.GetInt("target-width"),
		TargetHeight:   viper.GetInt("target-height"),
		Fit:            fit,
	}

	pl := pipeline.New(typeset.NewService(serviceURL), viper.GetInt("render-workers"))

	payload, err := pl.Render(context.Background(), params)
	if err != nil {
		return err
	}

	if viper.GetBool("json") {
		return writePayloadJSON(viper.GetString("output"), payload)
	}

	// Reassemble the row bands into one image and write it out as PNG.
	return raster.WritePNG(viper.GetString("output"), payload.Assemble())
}

func writePayloadJSON(filename string, payload *pipeline.Payload) error {
	var output *os.File
	if filename == "" {
		output = os.Stdout
	} else {
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		output = file
	}

	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(api.NewRenderResponse(payload))
}
