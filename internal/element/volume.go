package element

import (
	"sort"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// VolumePoint pairs a main volume with the routing volume it maps to.
type VolumePoint struct {
	Main   audio.MainVolume `yaml:"main" json:"main"`
	Volume audio.Volume     `yaml:"volume" json:"volume"`
}

// VolumeMap converts between main and routing volumes by piecewise-linear
// interpolation. Points must be monotonic in both columns. An empty map
// spans MinMainVolume..MaxMainVolume onto MinVolume..MaxVolume.
type VolumeMap []VolumePoint

var defaultVolumeMap = VolumeMap{
	{Main: audio.MinMainVolume, Volume: audio.MinVolume},
	{Main: audio.MaxMainVolume, Volume: audio.MaxVolume},
}

func (m VolumeMap) points() VolumeMap {
	if len(m) < 2 {
		return defaultVolumeMap
	}
	pts := make(VolumeMap, len(m))
	copy(pts, m)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Main < pts[j].Main })
	return pts
}

// ToVolume maps a main volume to a routing volume, clamping at the ends.
func (m VolumeMap) ToVolume(main audio.MainVolume) audio.Volume {
	pts := m.points()
	if main <= pts[0].Main {
		return pts[0].Volume
	}
	for i := 1; i < len(pts); i++ {
		lo, hi := pts[i-1], pts[i]
		if main <= hi.Main {
			return audio.Volume(interpolate(int(main), int(lo.Main), int(hi.Main), int(lo.Volume), int(hi.Volume)))
		}
	}
	return pts[len(pts)-1].Volume
}

// ToMain maps a routing volume back to a main volume.
func (m VolumeMap) ToMain(vol audio.Volume) audio.MainVolume {
	pts := m.points()
	sort.Slice(pts, func(i, j int) bool { return pts[i].Volume < pts[j].Volume })
	if vol <= pts[0].Volume {
		return pts[0].Main
	}
	for i := 1; i < len(pts); i++ {
		lo, hi := pts[i-1], pts[i]
		if vol <= hi.Volume {
			return audio.MainVolume(interpolate(int(vol), int(lo.Volume), int(hi.Volume), int(lo.Main), int(hi.Main)))
		}
	}
	return pts[len(pts)-1].Main
}

// interpolate maps x in [x0,x1] onto [y0,y1], rounding to nearest.
func interpolate(x, x0, x1, y0, y1 int) int {
	if x1 == x0 {
		return y0
	}
	num := (x - x0) * (y1 - y0)
	den := x1 - x0
	if (num < 0) != (den < 0) {
		return y0 + (num-den/2)/den
	}
	return y0 + (num+den/2)/den
}
