package iogpkg

import (
	"fmt"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom/proj"
)

// proj4 definitions of coordinate systems found in FIM inputs.
var proj4 = map[int]string{
	4326: "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs",
	4269: "+proj=longlat +ellps=GRS80 +no_defs",
	5070: "+proj=aea +lat_1=29.5 +lat_2=45.5 +lat_0=23 +lon_0=-96 " +
		"+x_0=0 +y_0=0 +ellps=GRS80 +units=m +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 " +
		"+x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs",
}

// Reproject transforms all features of the layer in place to EPSG code
// dst. Layers already in dst are left untouched.
func Reproject(l *vector.Layer, dst int) error {
	if l.CRS == dst || dst == 0 {
		return nil
	}
	src, ok := proj4[l.CRS]
	if !ok {
		return ReprojectError(l.CRS, dst, fmt.Errorf("unknown source CRS"))
	}
	tgt, ok := proj4[dst]
	if !ok {
		return ReprojectError(l.CRS, dst, fmt.Errorf("unknown target CRS"))
	}
	srcSR, err := proj.Parse(src)
	if err != nil {
		return ReprojectError(l.CRS, dst, err)
	}
	dstSR, err := proj.Parse(tgt)
	if err != nil {
		return ReprojectError(l.CRS, dst, err)
	}
	ct, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return ReprojectError(l.CRS, dst, err)
	}
	for i, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		g, err := f.Geometry.Transform(ct)
		if err != nil {
			return ReprojectError(l.CRS, dst, err)
		}
		l.Features[i].Geometry = g
	}
	l.CRS = dst
	return nil
}
