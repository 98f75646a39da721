package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lenteapp/lente/internal/api"
)

// supported image formats, keyed by lowercase extension
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

func newAnalyzeCommand() *cobra.Command {
	var analysisType string

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Run object analysis on an image",
		Long:  `Uploads an image (JPEG, PNG or GIF) to the analysis service and prints the detected objects with their confidence metrics.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			imagePath := args[0]

			switch analysisType {
			case "object":
				// the only analysis the service performs today
			case "composition":
				return fmt.Errorf("composition analysis is not available yet")
			default:
				return fmt.Errorf("unknown analysis type %q (want object or composition)", analysisType)
			}

			ext := strings.ToLower(filepath.Ext(imagePath))
			if !imageExtensions[ext] {
				return fmt.Errorf("unsupported image format %q (want .jpg, .jpeg, .png or .gif)", ext)
			}

			file, err := os.Open(imagePath)
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer file.Close()

			correlationID := uuid.NewString()
			ctx.Logger.Debug("submitting image for analysis",
				"image", imagePath, "correlation_id", correlationID)

			resp, err := ctx.Sessions.API().Analyze(cmd.Context(), filepath.Base(imagePath), file, correlationID)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return printMarkdown(formatAnalysis(imagePath, &resp.Data))
		},
	}

	cmd.Flags().StringVar(&analysisType, "type", "object", "Analysis type (object, composition)")

	return cmd
}

// formatAnalysis renders an analysis result as markdown
func formatAnalysis(imagePath string, data *api.AnalysisData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis of %s\n\n", filepath.Base(imagePath))
	fmt.Fprintf(&b, "**Objects found:** %d  \n", data.ObjectsCount)
	fmt.Fprintf(&b, "**Overall accuracy:** %.1f%%\n\n", data.Accuracy*100)

	if len(data.Objects) > 0 {
		b.WriteString("| Object | Confidence |\n")
		b.WriteString("|--------|-----------:|\n")
		for _, obj := range data.Objects {
			if score, ok := data.Metrics[obj]; ok {
				fmt.Fprintf(&b, "| %s | %.1f%% |\n", obj, score*100)
			} else {
				fmt.Fprintf(&b, "| %s | n/a |\n", obj)
			}
		}
	} else {
		b.WriteString("No objects detected.\n")
	}

	// Metrics that are not tied to a detected object, if any
	var extra []string
	for name := range data.Metrics {
		found := false
		for _, obj := range data.Objects {
			if obj == name {
				found = true
				break
			}
		}
		if !found {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		b.WriteString("\n")
		for _, name := range extra {
			fmt.Fprintf(&b, "- %s: %.3f\n", name, data.Metrics[name])
		}
	}

	if data.ImageURL != "" {
		fmt.Fprintf(&b, "\nStored at: %s\n", data.ImageURL)
	}

	return b.String()
}
