package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	renamify "github.com/renamify/go-renamify"
)

var (
	flagSettings    string
	flagOutDir      string
	flagDryRun      bool
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   "renamify",
	Short: "AI-assisted batch renaming for image files",
	Long: `renamify sends each image in a directory to a vision model, turns the
suggested description into a policy-compliant filename (sanitized, cased,
truncated, batch-unique) and writes an archive of the renamed files plus an
original-to-final mapping.

The Gemini API key is read from GEMINI_API_KEY (a .env file in the working
directory is loaded if present).`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run <dir>",
	Short: "Rename every image in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&flagSettings, "settings", "s", "", "settings YAML file (default: built-in defaults)")
	runCmd.Flags().StringVarP(&flagOutDir, "out", "o", ".", "directory for the archive, CSV mapping and session log")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the mapping without writing any output files")
	runCmd.Flags().IntVar(&flagConcurrency, "concurrency", renamify.DefaultConcurrency, "max in-flight vision calls")
	rootCmd.AddCommand(runCmd)
}

// imageExtensions are the upload formats accepted by the batch scan.
var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	settings := renamify.DefaultSettings()
	if flagSettings != "" {
		loaded, err := renamify.LoadSettings(flagSettings)
		if err != nil {
			return err
		}
		settings = loaded
	}

	images, err := scanImages(args[0])
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found in %s", args[0])
	}

	cfg := &renamify.Config{
		Suggester:   &renamify.GeminiSuggester{APIKey: os.Getenv("GEMINI_API_KEY")},
		Cache:       renamify.NewMemoryCache(),
		Concurrency: flagConcurrency,
	}

	res, err := cfg.Run(cmd.Context(), images, settings)
	if err != nil {
		return err
	}

	printMapping(res)
	if flagDryRun {
		return nil
	}
	return writeOutputs(images, res, settings)
}

// scanImages reads every supported image in dir (non-recursive), sorted by
// filename so batch order — and therefore collision suffixing — is stable.
func scanImages(dir string) ([]renamify.ImageRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []renamify.ImageRecord
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		mime, ok := imageExtensions[strings.ToLower(filepath.Ext(e.Name()))]
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		images = append(images, renamify.ImageRecord{
			Filename: e.Name(),
			Data:     data,
			MIMEType: mime,
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Filename < images[j].Filename })
	return images, nil
}

func printMapping(res *renamify.BatchResult) {
	for _, it := range res.Items {
		marker := " "
		if len(it.Errors) > 0 {
			marker = "!"
		}
		fmt.Printf("%s %-40s -> %s  (%.2f, %s)\n",
			marker, it.Original, it.Final, it.Suggestion.Confidence, it.Suggestion.Source)
		for _, e := range it.Errors {
			fmt.Printf("    error: %s\n", e)
		}
	}
	s := res.Stats
	fmt.Printf("\n%d images: %d cached, %d ai, %d fallback, %d cancelled (%.0f credits, %s)\n",
		s.Total, s.CacheHits, s.AICalls, s.Fallbacks, s.Cancelled, s.EstimatedCredits, s.Elapsed.Round(10*time.Millisecond))
}

func writeOutputs(images []renamify.ImageRecord, res *renamify.BatchResult, settings renamify.Settings) error {
	if errs := renamify.ValidateForExport(res.Items); len(errs) > 0 {
		return fmt.Errorf("export blocked: %s", strings.Join(errs, "; "))
	}

	archive, err := renamify.BuildArchive(images, res.Items)
	if err != nil {
		return err
	}
	mapping, err := renamify.CSVMapping(res.Items)
	if err != nil {
		return err
	}
	logData, err := renamify.SessionLog(res, settings)
	if err != nil {
		return err
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{"renamed.zip", archive},
		{"mapping.csv", mapping},
		{"session.json", logData},
	}
	for _, out := range outputs {
		path := filepath.Join(flagOutDir, out.name)
		if err := os.WriteFile(path, out.data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
