package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/sign"
)

func classifyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <landmarks.json>",
		Short: "Classify one hand from a landmark file (use - for stdin)",
		Long: `Classify one hand from a JSON landmark file. The file holds either a
hand object {"points": [{"x":..,"y":..,"z":..}, ...]} or a bare array of
21 points in MediaPipe order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			hand, err := parseLandmarks(data)
			if err != nil {
				return err
			}

			label, features := sign.NewClassifier(sign.DefaultThresholds()).Explain(&hand)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Sign     sign.Sign     `json:"sign"`
					Features sign.Features `json:"features"`
				}{label, features})
			}
			printClassification(cmd.OutOrStdout(), label, features)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// parseLandmarks accepts a hand object or a bare point array.
func parseLandmarks(data []byte) (detector.HandLandmarks, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var points []detector.Point3D
		if err := json.Unmarshal(data, &points); err != nil {
			return detector.HandLandmarks{}, fmt.Errorf("parse landmarks: %w", err)
		}
		return detector.FromSlice(points)
	}

	var raw struct {
		Points     []detector.Point3D `json:"points"`
		Handedness string             `json:"handedness"`
		Score      float64            `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("parse landmarks: %w", err)
	}
	hand, err := detector.FromSlice(raw.Points)
	if err != nil {
		return hand, err
	}
	hand.Handedness = raw.Handedness
	hand.Score = raw.Score
	return hand, nil
}

func printClassification(w io.Writer, label sign.Sign, f sign.Features) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	result := label.String()
	if label.IsNone() {
		result = "(no match)"
	}
	fmt.Fprintf(tw, "Sign:\t%s\n", result)
	fmt.Fprintf(tw, "Fingers:\t%s (%d extended)\n", f.Fingers, f.Fingers.Count())
	fmt.Fprintf(tw, "Thumb-index:\t%.4f\n", f.ThumbIndex)
	fmt.Fprintf(tw, "Thumb-middle:\t%.4f\n", f.ThumbMiddle)
	fmt.Fprintf(tw, "Index-middle:\t%.4f\n", f.IndexMiddle)
	tw.Flush()
}
