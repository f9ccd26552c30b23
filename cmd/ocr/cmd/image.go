package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrbeckett/speedreader/internal/detector"
	"github.com/jrbeckett/speedreader/internal/engine"
	"github.com/jrbeckett/speedreader/internal/imgio"
	"github.com/jrbeckett/speedreader/internal/models"
	"github.com/jrbeckett/speedreader/internal/onnx"
	"github.com/jrbeckett/speedreader/internal/pipeline"
	"github.com/jrbeckett/speedreader/internal/recognizer"
)

var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Run detection and recognition over one or more image files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImage,
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.Flags().Bool("server", false, "use the larger server detection/recognition models instead of mobile")
	imageCmd.Flags().String("dict", "", "override dictionary file path")
}

func runImage(cmd *cobra.Command, args []string) error {
	modelsDir, _ := cmd.Flags().GetString("models-dir")
	useServer, _ := cmd.Flags().GetBool("server")
	dictOverride, _ := cmd.Flags().GetString("dict")

	pl, closeAll, err := buildPipeline(modelsDir, useServer, dictOverride)
	if err != nil {
		return err
	}
	defer closeAll()

	ctx := context.Background()
	for pageNum, path := range args {
		img, meta, err := imgio.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		ticket, err := pl.ReadOne(ctx, img)
		if err != nil {
			return fmt.Errorf("admit %s: %w", path, err)
		}
		res, err := ticket.Wait(ctx)
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}

		page := pipeline.ToPageResult(pageNum+1, meta.Path, "", res)
		js, err := pipeline.ToJSON(page)
		if err != nil {
			return fmt.Errorf("marshal result for %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), js)
	}
	return nil
}

// buildPipeline loads the detection and recognition models and character
// dictionary from modelsDir, wiring a Pipeline around them. The returned
// closer releases both ONNX sessions.
func buildPipeline(modelsDir string, useServer bool, dictOverride string) (*pipeline.Pipeline, func(), error) {
	detKernel, err := onnx.NewKernel(onnx.Config{ModelPath: models.GetDetectionModelPath(modelsDir, useServer)})
	if err != nil {
		return nil, nil, fmt.Errorf("load detection model: %w", err)
	}
	recKernel, err := onnx.NewKernel(onnx.Config{ModelPath: models.GetRecognitionModelPath(modelsDir, useServer)})
	if err != nil {
		_ = detKernel.Close()
		return nil, nil, fmt.Errorf("load recognition model: %w", err)
	}

	detEngine := engine.NewCPUEngine(detKernel, 1)
	recEngine := engine.NewCPUEngine(recKernel, 1)
	closeEngines := func() {
		_ = detEngine.Close()
		_ = recEngine.Close()
	}

	det, err := detector.New(detector.DefaultConfig(), detEngine)
	if err != nil {
		closeEngines()
		return nil, nil, fmt.Errorf("build detector: %w", err)
	}

	dictPath := dictOverride
	if dictPath == "" {
		dictPath = models.GetDictionaryPath(modelsDir, models.DictionaryPPOCRKeysV1)
	}
	dict, err := recognizer.LoadCharacterDictionary(dictPath)
	if err != nil {
		closeEngines()
		return nil, nil, fmt.Errorf("load dictionary: %w", err)
	}

	rec, err := recognizer.New(recognizer.DefaultConfig(), recEngine, dict)
	if err != nil {
		closeEngines()
		return nil, nil, fmt.Errorf("build recognizer: %w", err)
	}

	pl, err := pipeline.New(det, rec)
	if err != nil {
		closeEngines()
		return nil, nil, fmt.Errorf("build pipeline: %w", err)
	}

	closer := func() {
		_ = pl.Close()
		closeEngines()
	}
	return pl, closer, nil
}

// GetImageCommand returns the image command for testing purposes.
func GetImageCommand() *cobra.Command {
	return imageCmd
}
