// Package main is the entry point for the bank2sf2 CLI
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/bank2sf2/pkg/api"
	"github.com/james-see/bank2sf2/pkg/converter"
	"github.com/james-see/bank2sf2/pkg/mcpserver"
	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/james-see/bank2sf2/pkg/sf2"
	"github.com/james-see/bank2sf2/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile        string
	codePage          string
	verbose           bool
	verify            bool
	noEffectMods      bool
	attenuationFactor float64
	asJSON            bool
	serverPort        int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bank2sf2",
	Short: "Convert DLS soundbanks to SoundFont 2",
	Long: `bank2sf2 converts Downloadable Sounds (DLS level 1/2) collections
into SoundFont 2.04 banks and inspects DLS and SoundFont files.

Examples:
  bank2sf2 dls2sf2 gm.dls -o gm.sf2
  bank2sf2 convert gm.dls -o gm.sf2
  bank2sf2 inspect gm.sf2 --json
  bank2sf2 extract gm.sf2 -o samples/
  bank2sf2 audition gm.sf2 -o gm.mid
  bank2sf2 tui
  bank2sf2 serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects the input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var dls2sf2Cmd = &cobra.Command{
	Use:   "dls2sf2 <input.dls>",
	Short: "Convert a DLS collection to a .sf2 bank",
	Args:  cobra.ExactArgs(1),
	RunE:  runDLSToSF2,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <bank>",
	Short: "Summarise a DLS or SoundFont bank",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var extractCmd = &cobra.Command{
	Use:   "extract <bank>",
	Short: "Write every sample of a bank as a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var auditionCmd = &cobra.Command{
	Use:   "audition <bank>",
	Short: "Write a MIDI file playing one note per preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudition,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the soundbank tools over MCP on stdio",
	RunE:  runMCP,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&codePage, "codepage", "", "Code page of names in the input (e.g. windows-1252, shift-jis)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log dropped articulation blocks")

	// Conversion tuning
	for _, cmd := range []*cobra.Command{convertCmd, dls2sf2Cmd, extractCmd, auditionCmd, tuiCmd, serveCmd, mcpCmd} {
		cmd.Flags().Float64Var(&attenuationFactor, "attenuation-factor", converter.DefaultAttenuationFactor, "Scale applied to DLS gain when computing attenuation")
		cmd.Flags().BoolVar(&noEffectMods, "no-effect-mods", false, "Do not add CC91/CC93 reverb and chorus modulators")
	}

	// convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	// dls2sf2 command
	dls2sf2Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .sf2 file path")
	dls2sf2Cmd.Flags().BoolVar(&verify, "verify", false, "Load the result with a SoundFont synthesizer after writing")

	// inspect command
	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	// extract command
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output directory")

	// audition command
	auditionCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(dls2sf2Cmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(auditionCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

func getOptions() (converter.Options, error) {
	opts := converter.DefaultOptions()
	opts.AttenuationFactor = attenuationFactor
	opts.EffectModulators = !noEffectMods
	if codePage != "" {
		codec, err := riffio.LookupCodec(codePage)
		if err != nil {
			return opts, err
		}
		opts.Codec = codec
	}
	if verbose {
		opts.Logf = log.Printf
	}
	return opts, nil
}

func getConverter() (*converter.Converter, error) {
	opts, err := getOptions()
	if err != nil {
		return nil, err
	}
	return converter.New(opts), nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, err := getConverter()
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runDLSToSF2(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".sf2")

	conv, err := getConverter()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := conv.ConvertDLS(data)
	if err != nil {
		return err
	}

	if verify {
		report, err := sf2.Verify(result)
		if err != nil {
			return err
		}
		fmt.Printf("Verified: %d presets, %d instruments, %d samples\n",
			report.Presets, report.Instruments, report.Samples)
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	if n := conv.Dropped(); n > 0 {
		fmt.Printf("Dropped %d unsupported articulation blocks\n", n)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, err := getConverter()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	s, err := conv.Inspect(data, converter.DetectFormat(input))
	if err != nil {
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Format:      %s %s\n", strings.ToUpper(string(s.Format)), s.Version)
	fmt.Printf("Name:        %s\n", s.Name)
	if s.SoundEngine != "" {
		fmt.Printf("Engine:      %s\n", s.SoundEngine)
	}
	fmt.Printf("Presets:     %d\n", len(s.Presets))
	fmt.Printf("Instruments: %d\n", s.Instruments)
	fmt.Printf("Samples:     %d (%d bytes)\n", s.Samples, s.SampleBytes)
	for _, p := range s.Presets {
		fmt.Printf("  %03d:%03d %-20s %d zones\n", p.Bank, p.Program, p.Name, p.Zones)
	}
	for _, w := range s.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]
	dir := getOutputPath(input, "_samples")

	conv, err := getConverter()
	if err != nil {
		return err
	}
	bank, err := conv.LoadBank(input)
	if err != nil {
		return err
	}

	paths, err := converter.ExtractSamples(bank, dir)
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d samples to %s\n", len(paths), dir)
	return nil
}

func runAudition(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, "_audition.mid")

	conv, err := getConverter()
	if err != nil {
		return err
	}
	bank, err := conv.LoadBank(input)
	if err != nil {
		return err
	}

	if err := converter.NewAuditionGenerator().WriteFile(bank, output); err != nil {
		return err
	}
	fmt.Printf("Wrote audition %s -> %s\n", input, output)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := getOptions()
	if err != nil {
		return err
	}
	return tui.Run(opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := getOptions()
	if err != nil {
		return err
	}
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, opts)
}

func runMCP(cmd *cobra.Command, args []string) error {
	opts, err := getOptions()
	if err != nil {
		return err
	}
	return mcpserver.Serve(opts)
}
