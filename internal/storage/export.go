package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/threebody/internal/trajectory"
)

type ExportData struct {
	RunMetadata
	Retained int          `json:"retained"`
	Steps    []ExportStep `json:"steps"`
}

type ExportStep struct {
	Step   uint32       `json:"step"`
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportBody struct {
	Position [2]float64 `json:"position"`
	Velocity [2]float64 `json:"velocity"`
}

func ExportJSON(w io.Writer, meta RunMetadata, traj *trajectory.Store) error {
	data := ExportData{
		RunMetadata: meta,
		Retained:    traj.Len(),
		Steps:       make([]ExportStep, 0, traj.Len()),
	}

	for step := range traj.All() {
		es := ExportStep{Step: step.ID, Time: step.Time, Bodies: make([]ExportBody, step.Len())}
		for i := range es.Bodies {
			b := step.Body(i)
			es.Bodies[i] = ExportBody{
				Position: [2]float64{b.Position.X, b.Position.Y},
				Velocity: [2]float64{b.Velocity.X, b.Velocity.Y},
			}
		}
		data.Steps = append(data.Steps, es)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
