package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vibe-generator/internal/app"
	"vibe-generator/internal/config"
	"vibe-generator/internal/logging"
	"vibe-generator/internal/vibe"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	mode       string
	lexicon    string
	strictness string
}

type contextFlags struct {
	category    string
	subcategory string
	tone        string
	entity      string
	tags        []string
}

func (f contextFlags) context() vibe.GenerationContext {
	return vibe.GenerationContext{
		Category:    f.category,
		Subcategory: f.subcategory,
		Tone:        f.tone,
		Entity:      f.entity,
		Tags:        f.tags,
	}
}

func (f *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "occasion category, e.g. celebrations")
	cmd.Flags().StringVar(&f.subcategory, "subcategory", "", "occasion subcategory, e.g. \"birthday party\"")
	cmd.Flags().StringVar(&f.tone, "tone", "", "tone, e.g. humorous")
	cmd.Flags().StringVar(&f.entity, "entity", "", "optional entity id")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "required tag (repeatable)")
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "vibe",
		Short:         "Generate caption lines and image prompts for an occasion",
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&g.mode, "mode", "", "generation mode: live or disabled (default from AI_MODE)")
	root.PersistentFlags().StringVar(&g.lexicon, "lexicon", "", "YAML lexicon overlay (default from LEXICON_FILE)")
	root.PersistentFlags().StringVar(&g.strictness, "strictness", "", "creative lane strictness: strict or lenient")

	root.AddCommand(
		newGenerateCmd("text", "Generate the four text lanes", &g, stdout, stderr,
			func(cmd *cobra.Command, a *app.App, gc vibe.GenerationContext) any {
				return a.Generator.Text(cmd.Context(), gc)
			}),
		newGenerateCmd("visual", "Generate the four visual lanes", &g, stdout, stderr,
			func(cmd *cobra.Command, a *app.App, gc vibe.GenerationContext) any {
				return a.Generator.Visual(cmd.Context(), gc)
			}),
		newGenerateCmd("both", "Generate text and visual lanes concurrently", &g, stdout, stderr,
			func(cmd *cobra.Command, a *app.App, gc vibe.GenerationContext) any {
				text, visual := a.Generator.Both(cmd.Context(), gc)
				return map[string]any{"text": text, "visual": visual}
			}),
		newComposeCmd(stdout),
		&cobra.Command{
			Use:   "layouts",
			Short: "List caption layouts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printJSON(stdout, vibe.Layouts())
			},
		},
	)
	return root
}

func newGenerateCmd(
	use, short string,
	g *globalFlags,
	stdout, stderr io.Writer,
	run func(*cobra.Command, *app.App, vibe.GenerationContext) any,
) *cobra.Command {
	var cf contextFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeLog, err := buildApp(g, stderr)
			if err != nil {
				return err
			}
			defer closeLog()
			return printJSON(stdout, run(cmd, a, cf.context()))
		},
	}
	cf.register(cmd)
	return cmd
}

func newComposeCmd(stdout io.Writer) *cobra.Command {
	var (
		cf contextFlags
		in vibe.ComposeInput
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a picked line and visual into the final image payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Text == "" || in.VisualPrompt == "" {
				return errors.New("--line and --visual are required")
			}
			in.Context = cf.context()
			payload := vibe.Compose(in)
			return printJSON(stdout, map[string]any{
				"payload":     payload,
				"imagePrompt": payload.ImagePrompt(),
				"aspectRatio": payload.AspectRatio(),
			})
		},
	}
	cf.register(cmd)
	cmd.Flags().StringVar(&in.Text, "line", "", "picked text line")
	cmd.Flags().StringVar(&in.VisualPrompt, "visual", "", "picked visual prompt")
	cmd.Flags().StringVar(&in.NegativePrompt, "negative", "", "negative prompt")
	cmd.Flags().StringVar(&in.LayoutID, "layout", vibe.DefaultLayoutID, "text layout id")
	cmd.Flags().StringVar(&in.Style, "style", vibe.DefaultStyle, "visual style")
	cmd.Flags().IntVar(&in.Dimensions.Width, "width", vibe.DefaultDimension, "image width")
	cmd.Flags().IntVar(&in.Dimensions.Height, "height", vibe.DefaultDimension, "image height")
	return cmd
}

func buildApp(g *globalFlags, stderr io.Writer) (*app.App, func() error, error) {
	if g.mode != "" {
		_ = os.Setenv("AI_MODE", g.mode)
	}
	if g.strictness != "" {
		_ = os.Setenv("CREATIVE_STRICTNESS", g.strictness)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if g.lexicon != "" {
		cfg.LexiconFile = g.lexicon
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Stdout: stderr})
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Build(cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	return a, closeLog, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
