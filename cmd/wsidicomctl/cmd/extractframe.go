package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/wsidicom/pkg/wsidicom"
)

// NewExtractFrameCmd creates the extract-frame cobra command. It pulls one
// encapsulated pixel-data fragment's raw bytes out of a WSI instance and
// writes them to disk verbatim — decoding the fragment (JPEG, JPEG 2000,
// RLE, ...) is outside the parser's scope (spec §1's non-goal) and is left
// to whatever external collaborator consumes the extracted bytes.
func NewExtractFrameCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-frame",
		Short: "extract one encapsulated pixel-data fragment from a WSI instance",
		Long:  "Walks the pixel data sequence and writes one frame's raw, still-encoded bytes to disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required; use --file or pass it as an argument")
			}
			frameIdx, _ := cmd.Flags().GetInt("frame")
			outPath, _ := cmd.Flags().GetString("out")
			return runExtractFrame(filePath, frameIdx, outPath)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "WSI DICOM file path")
	pf.Int("frame", 0, "0-based frame index (the basic offset table is never counted as a frame)")
	pf.String("out", "", "output path for the raw fragment (default frame_<n>.bin)")
	return cmd
}

func runExtractFrame(filePath string, frameIdx int, outPath string) error {
	p, err := wsidicom.Open(filePath)
	if err != nil {
		return err
	}
	defer p.Close()

	attrs, err := wsidicom.ExtractWSIAttributes(p)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filePath, err)
	}
	if frameIdx < 0 || frameIdx >= len(attrs.FrameOffsets) {
		return fmt.Errorf("frame index %d out of bounds (0-%d)", frameIdx, len(attrs.FrameOffsets)-1)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(attrs.FrameOffsets[frameIdx], io.SeekStart); err != nil {
		return fmt.Errorf("seeking to frame %d: %w", frameIdx, err)
	}
	data := make([]byte, attrs.FrameLengths[frameIdx])
	if _, err := io.ReadFull(f, data); err != nil {
		return fmt.Errorf("reading frame %d: %w", frameIdx, err)
	}

	if outPath == "" {
		outPath = fmt.Sprintf("frame_%d.bin", frameIdx)
	}
	fmt.Printf("wrote frame %d (%d bytes) to %s\n", frameIdx, len(data), outPath)
	return os.WriteFile(outPath, data, 0o644)
}
