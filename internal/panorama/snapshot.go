package panorama

import "github.com/relabs-tech/panorama/internal/orientation"

// SurfaceOffset is the published state of one surface.
type SurfaceOffset struct {
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Paused   bool    `json:"paused"`
	Style    Style   `json:"style"`
}

// Snapshot is the published state of a session after a sample.
type Snapshot struct {
	Session    string            `json:"session"`
	State      string            `json:"state"`
	Camera     orientation.Euler `json:"camera"`
	Quaternion [4]float64        `json:"quaternion"` // w, x, y, z
	Surfaces   []SurfaceOffset   `json:"surfaces"`
}

// Snapshot captures the tracker state for publishing.
func (t *Tracker) Snapshot() Snapshot {
	q := orientation.Quaternion(t.current)
	snap := Snapshot{
		Session:    t.id.String(),
		State:      t.state.String(),
		Camera:     t.current,
		Quaternion: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Surfaces:   make([]SurfaceOffset, 0, len(t.surfaces)),
	}
	for _, sf := range t.surfaces {
		snap.Surfaces = append(snap.Surfaces, SurfaceOffset{
			Name:     sf.Name,
			ImageURL: sf.ImageURL,
			X:        sf.offset.X,
			Y:        sf.offset.Y,
			Paused:   sf.paused,
			Style:    sf.Style(),
		})
	}
	return snap
}
