package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hypersurf/internal/metrics"
	"github.com/san-kum/hypersurf/internal/storage"
)

// Run is the JSON document of a stored run.
type Run struct {
	storage.RunMetadata
	Frames []metrics.FrameStat `json:"frames"`
}

func JSON(w io.Writer, meta storage.RunMetadata, frames []metrics.FrameStat) error {
	if frames == nil {
		frames = []metrics.FrameStat{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Run{RunMetadata: meta, Frames: frames})
}

// JSONFile writes the run document to path, or to stdout when path is "-".
func JSONFile(path string, meta storage.RunMetadata, frames []metrics.FrameStat) error {
	if path == "-" || path == "" {
		return JSON(os.Stdout, meta, frames)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := JSON(file, meta, frames); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
