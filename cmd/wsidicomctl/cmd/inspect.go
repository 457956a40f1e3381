package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/wsidicom/pkg/wsidicom"
)

// NewInspectCmd creates the inspect cobra command: print a WSI instance's
// scalar root attributes, optical-path code value, tile-grid derivation,
// and pixel-item offset table.
func NewInspectCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "print a WSI instance's root attributes and tile-offset table",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required; use --file or pass it as an argument")
			}
			format, _ := cmd.Flags().GetString("format")
			return runInspect(filePath, format)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "WSI DICOM file path")
	pf.String("format", "text", "output format (text|json)")
	return cmd
}

func runInspect(filePath, format string) error {
	p, err := wsidicom.Open(filePath)
	if err != nil {
		return err
	}
	defer p.Close()

	attrs, err := wsidicom.ExtractWSIAttributes(p)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filePath, err)
	}
	across, down := attrs.TileGrid()

	if format == "json" {
		return json.NewEncoder(os.Stdout).Encode(struct {
			*wsidicom.WSIAttributes
			TilesAcross int `json:"tiles_across"`
			TilesDown   int `json:"tiles_down"`
		}{attrs, across, down})
	}

	fmt.Printf("StudyInstanceUID:        %s\n", attrs.StudyInstanceUID)
	fmt.Printf("NumberOfFrames:          %d\n", attrs.NumberOfFrames)
	fmt.Printf("Rows x Columns:          %d x %d\n", attrs.Rows, attrs.Columns)
	fmt.Printf("TotalPixelMatrix:        %d x %d\n", attrs.TotalPixelMatrixColumns, attrs.TotalPixelMatrixRows)
	fmt.Printf("OpticalPathCodeValue:    %s (icon=%v)\n", attrs.OpticalPathCodeValue, attrs.IsIcon)
	fmt.Printf("TileGrid:                %d across x %d down\n", across, down)
	fmt.Printf("Frames captured:         %d\n", len(attrs.FrameOffsets))
	for i, off := range attrs.FrameOffsets {
		fmt.Printf("  frame %d: offset=%d length=%d\n", i, off, attrs.FrameLengths[i])
	}
	return nil
}
