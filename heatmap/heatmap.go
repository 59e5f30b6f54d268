// Package heatmap aggregates report locations into S2 cells for the
// dashboard map view.
package heatmap

import (
	"billboard-service/models"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// ViewPort is the visible map rectangle in degrees.
type ViewPort struct {
	LatMin float64 `form:"latmin" json:"latmin"`
	LonMin float64 `form:"lonmin" json:"lonmin"`
	LatMax float64 `form:"latmax" json:"latmax"`
	LonMax float64 `form:"lonmax" json:"lonmax"`
}

// Center returns the viewport's center point.
func (vp *ViewPort) Center() (lat, lon float64) {
	return (vp.LatMin + vp.LatMax) / 2, (vp.LonMin + vp.LonMax) / 2
}

type aggrUnit struct {
	cnt      int64
	origCell s2.CellID
}

// Aggregator buckets points into S2 cells at a level chosen so the
// viewport holds roughly expectedCells cells.
type Aggregator struct {
	level int
	aggrs map[s2.CellID]*aggrUnit
}

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

func cellBaseLevel(vp *ViewPort) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}

	vpArea := rect.Area()

	centerLat, centerLon := vp.Center()
	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(centerLat, centerLon))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

// NewAggregator creates an aggregator sized for the viewport.
func NewAggregator(vp *ViewPort) *Aggregator {
	return &Aggregator{
		level: cellBaseLevel(vp),
		aggrs: make(map[s2.CellID]*aggrUnit),
	}
}

// AddPoint adds one report location.
func (a *Aggregator) AddPoint(lat, lon float64) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon))
	parent := pc.Parent(a.level)
	if _, ok := a.aggrs[parent]; !ok {
		a.aggrs[parent] = &aggrUnit{}
	}
	a.aggrs[parent].cnt += 1
	a.aggrs[parent].origCell = pc
}

// ToCells returns the aggregated cells. A cell holding a single point
// keeps that point's exact position instead of the cell center.
func (a *Aggregator) ToCells() []models.HeatmapCell {
	r := make([]models.HeatmapCell, 0, len(a.aggrs))
	for c, unit := range a.aggrs {
		ll := c.LatLng()
		if unit.cnt == 1 {
			ll = unit.origCell.LatLng()
		}
		r = append(r, models.HeatmapCell{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.cnt,
		})
	}
	return r
}
