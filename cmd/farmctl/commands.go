package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ecovision/internal/domain"
	"ecovision/internal/inference"
	"ecovision/internal/service"
	"ecovision/internal/weather"
)

func (c *cli) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [code]",
		Short: "List languages, or switch the active one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				lang, err := c.svcs.Languages.SetLanguage(ctx, c.clientID, args[0])
				if err != nil {
					return fmt.Errorf("language %q: %w", args[0], err)
				}
				fmt.Fprintf(out, "%s (%s)\n", lang.NativeName, lang.Code)
				return nil
			}
			current := c.svcs.Languages.Current(ctx, c.clientID)
			for _, l := range c.svcs.Languages.Languages() {
				mark := " "
				if l.Code == current {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-3s %-12s %-10s %s\n", mark, l.Code, l.Name, l.SpeechLocale, l.NativeName)
			}
			return nil
		},
	}
}

func (c *cli) translateCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "translate <key>...",
		Short: "Print UI translations for the given keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lang == "" {
				lang = c.svcs.Languages.Current(cmd.Context(), c.clientID)
			}
			for _, key := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key, c.svcs.Catalog.Translate(lang, key))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Language code (defaults to the active language)")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Manage saved crop diagnoses",
	}
	history.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved diagnoses, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				items, err := c.svcs.History.List(cmd.Context(), c.clientID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "no saved diagnoses")
					return nil
				}
				for _, it := range items {
					fmt.Fprintf(out, "%s  %s  %-12s %-24s %3d%%\n",
						it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04"), it.CropName, it.Issue, it.Confidence)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove one diagnosis",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				err := c.svcs.History.Remove(cmd.Context(), c.clientID, args[0])
				if errors.Is(err, service.ErrHistoryNotFound) {
					return fmt.Errorf("no diagnosis with id %s", args[0])
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every saved diagnosis",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.svcs.History.Clear(cmd.Context(), c.clientID); err != nil {
					return err
				}
				tr := c.svcs.Languages.Translator(cmd.Context(), c.clientID)
				fmt.Fprintln(cmd.OutOrStdout(), tr.T("historyCleared"))
				return nil
			},
		},
	)
	return history
}

func (c *cli) analyzeCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Diagnose a crop photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			tr := c.svcs.Languages.Translator(ctx, c.clientID)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tr.T("analyzing"))
			draft, err := c.svcs.Analysis.Analyze(ctx, c.clientID, inference.Image{
				Filename: filepath.Base(args[0]),
				Data:     data,
			})
			if errors.Is(err, inference.ErrNotAnImage) || errors.Is(err, inference.ErrEmptyImage) {
				return fmt.Errorf("%s: %s", tr.T("invalidFileType"), tr.T("invalidFileTypeDesc"))
			}
			if err != nil {
				return err
			}
			printDiagnosis(out, tr.T, draft)

			if !save {
				return nil
			}
			entry, err := c.svcs.History.Add(ctx, c.clientID, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\n", tr.T("analysisSaved"), entry.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "Save the diagnosis to history")
	return cmd
}

func printDiagnosis(out io.Writer, t func(string) string, d domain.AnalysisDraft) {
	fmt.Fprintf(out, "%s: %s\n", d.CropName, d.Issue)
	if d.Severity != "" {
		fmt.Fprintf(out, "  severity: %s\n", d.Severity)
	}
	fmt.Fprintf(out, "  %s: %d%%\n", t("confidence"), d.Confidence)
	fmt.Fprintf(out, "  %s\n", d.Diagnosis)
	fmt.Fprintf(out, "%s:\n  %s\n", t("recommendations"), d.Treatment)
	for _, p := range d.Pesticides {
		fmt.Fprintf(out, "  · %s\n", p)
	}
}

func (c *cli) weatherCmd() *cobra.Command {
	var lat, lon float64
	cmd := &cobra.Command{
		Use:   "weather [location]",
		Short: "Show weather and farming tips for a location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tr := c.svcs.Languages.Translator(ctx, c.clientID)
			useCoords := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")

			var (
				snap domain.WeatherSnapshot
				err  error
			)
			if useCoords {
				snap, err = c.svcs.Weather.ByCoordinates(ctx, c.clientID, lat, lon)
			} else {
				snap, err = c.svcs.Weather.ByLocation(ctx, c.clientID, strings.Join(args, " "))
			}
			if err != nil {
				if errors.Is(err, weather.ErrLocationRequired) {
					return fmt.Errorf("%s: %s", tr.T("locationRequired"), tr.T("locationRequiredDesc"))
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s · %s\n", tr.T("currentWeather"), snap.Location)
			fmt.Fprintf(out, "  %d°C %s\n", snap.Temperature, snap.Condition)
			fmt.Fprintf(out, "  %s %d%%  %s %d km/h  %s %d km  %s %d\n",
				tr.T("humidity"), snap.Humidity, tr.T("wind"), snap.WindSpeed,
				tr.T("visibility"), snap.Visibility, tr.T("uvIndex"), snap.UVIndex)
			for _, d := range snap.Forecast {
				fmt.Fprintf(out, "  %-10s %-14s %3d°/%3d°  %3d%%\n", d.Day, d.Condition, d.High, d.Low, d.RainChance)
			}
			fmt.Fprintf(out, "%s:\n", tr.T("farmingInsights"))
			for _, tip := range snap.Tips {
				fmt.Fprintf(out, "  [%s] %s: %s\n", tr.T(tip.Priority), tip.Title, tip.Message)
			}
			fmt.Fprintf(out, "%s:\n", tr.T("weatherSummary"))
			fmt.Fprintf(out, "  %s: %s\n", tr.T("bestPlantingDay"), snap.Summary.BestPlantingDay)
			fmt.Fprintf(out, "  %s: %s\n", tr.T("rainExpected"), snap.Summary.RainExpected)
			fmt.Fprintf(out, "  %s: %s\n", tr.T("irrigationNeeded"), snap.Summary.IrrigationNeeded)
			fmt.Fprintf(out, "  %s: %s\n", tr.T("pestRisk"), snap.Summary.PestRisk)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	return cmd
}

func (c *cli) treatmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "treatment [label]",
		Short: "Show the remedy for a classifier label, or list all labels",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, info := range c.svcs.Treatments.All() {
					fmt.Fprintln(out, info.Label)
				}
				return nil
			}
			info, err := c.svcs.Treatments.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(out, "%s · %s\n  %s\n", info.Crop, info.Condition, info.Solution)
			for _, p := range info.Pesticides {
				fmt.Fprintf(out, "  · %s (%s) %s, PHI %s\n", p.Name, p.ActiveIngredient, p.Dose, p.PHI)
			}
			return nil
		},
	}
}
