package services

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/paulmach/orb"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// Geocoder derives point geometries from the coordinate columns of a table.
type Geocoder struct {
	logger *utils.Logger
}

// NewGeocoder creates a Geocoder with the given logger.
func NewGeocoder(logger *utils.Logger) *Geocoder {
	return &Geocoder{logger: logger}
}

// ToGeo builds one point per row from (lonCol, latCol), taken in that order
// as (x, y), and tags the result with crs (models.DefaultCRS when empty).
// The source columns are left in place. Coordinate ranges are not validated:
// swapped or out-of-range values still produce structurally valid points.
func (g *Geocoder) ToGeo(df dataframe.DataFrame, lonCol, latCol, crs string) (*models.GeoTable, error) {
	for _, col := range []string{lonCol, latCol} {
		if !hasColumn(df, col) {
			return nil, fmt.Errorf("geocoder: column %q not found: numeric coordinate column required", col)
		}
	}
	if crs == "" {
		crs = models.DefaultCRS
	}

	lons := df.Col(lonCol).Float()
	lats := df.Col(latCol).Float()

	points := make([]orb.Point, len(lons))
	for i := range lons {
		points[i] = orb.Point{lons[i], lats[i]}
	}

	g.logger.Info("[geocoder] Built %d point geometries (CRS %s)", len(points), crs)

	return &models.GeoTable{Table: df.Copy(), Geometry: points, CRS: crs}, nil
}
