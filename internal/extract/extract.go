// Package extract assembles real elevation data over a geographic bounding
// box from degree-by-degree HGT tiles: it fetches the covering tiles,
// mosaics them into one raster and crops to the requested region.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
	"github.com/MeKo-Tech/reliefmap/internal/hgt"
	"github.com/MeKo-Tech/reliefmap/internal/worker"
	"github.com/paulmach/orb"
)

// samplesPerDegree is the tile resolution minus the shared border column.
const samplesPerDegree = hgt.TileSize - 1

// Options tunes an extraction run.
type Options struct {
	// Workers is the number of parallel tile fetches. Zero means one.
	Workers int
	// OnProgress, if set, is called after each tile fetch completes.
	OnProgress worker.ProgressFunc
	Logger     *slog.Logger
}

// Result is the extracted raster together with the region it actually
// covers. The covered bound is the requested one expanded outward to whole
// arcseconds.
type Result struct {
	Elevation grid.Int16
	Bound     orb.Bound
}

// Extract fetches, mosaics and crops elevation data for the given bound
// (ISO 6709 conventions: north latitude and east longitude positive,
// decimal degrees, endpoints inclusive).
func Extract(ctx context.Context, provider hgt.Provider, bound orb.Bound, opts Options) (Result, error) {
	minLat, maxLat := bound.Min.Lat(), bound.Max.Lat()
	minLon, maxLon := bound.Min.Lon(), bound.Max.Lon()

	if math.IsNaN(minLat) || math.IsNaN(minLon) || math.IsNaN(maxLat) || math.IsNaN(maxLon) {
		return Result{}, fmt.Errorf("bound contains NaN coordinates")
	}
	if minLat > maxLat || minLon > maxLon {
		return Result{}, fmt.Errorf("bound is inverted: %v", bound)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Tile span, in whole degrees, inclusive on both ends.
	tileMinLat := int(math.Floor(minLat))
	tileMinLon := int(math.Floor(minLon))
	tileMaxLat := int(math.Floor(maxLat))
	tileMaxLon := int(math.Floor(maxLon))

	rows := (tileMaxLat-tileMinLat+1)*samplesPerDegree + 1
	cols := (tileMaxLon-tileMinLon+1)*samplesPerDegree + 1

	logger.Debug("Extracting elevation data",
		"lat_min", tileMinLat, "lat_max", tileMaxLat,
		"lon_min", tileMinLon, "lon_max", tileMaxLon,
		"buffer_rows", rows, "buffer_cols", cols,
	)

	var tasks []worker.Task
	for lat := tileMinLat; lat <= tileMaxLat; lat++ {
		for lon := tileMinLon; lon <= tileMaxLon; lon++ {
			tasks = append(tasks, worker.Task{Lat: lat, Lon: lon})
		}
	}

	pool := worker.New(worker.Config{
		Workers:    opts.Workers,
		Provider:   provider,
		OnProgress: opts.OnProgress,
	})

	tiles := make(map[worker.Task]grid.Int16, len(tasks))
	for _, res := range pool.Run(ctx, tasks) {
		if res.Err != nil {
			return Result{}, fmt.Errorf("failed to fetch tile %d/%d: %w", res.Task.Lat, res.Task.Lon, res.Err)
		}
		tiles[res.Task] = res.Tile
	}

	// Mosaic in task order so that shared borders between adjacent tiles
	// are resolved the same way on every run.
	buf := grid.NewInt16(rows, cols)
	for _, task := range tasks {
		placeTile(buf, tiles[task], (task.Lat-tileMinLat)*samplesPerDegree, (task.Lon-tileMinLon)*samplesPerDegree)
	}

	// Crop to the region of interest, rounded outward to whole arcseconds.
	latStart := int(math.Floor((minLat - float64(tileMinLat)) * samplesPerDegree))
	lonStart := int(math.Floor((minLon - float64(tileMinLon)) * samplesPerDegree))
	latEnd := int(math.Ceil((maxLat - float64(tileMinLat)) * samplesPerDegree))
	lonEnd := int(math.Ceil((maxLon - float64(tileMinLon)) * samplesPerDegree))

	out := grid.NewInt16(latEnd-latStart+1, lonEnd-lonStart+1)
	for r := 0; r < out.Rows; r++ {
		src := (latStart+r)*cols + lonStart
		copy(out.Data[r*out.Cols:(r+1)*out.Cols], buf.Data[src:src+out.Cols])
	}

	covered := orb.Bound{
		Min: orb.Point{
			float64(tileMinLon) + float64(lonStart)/samplesPerDegree,
			float64(tileMinLat) + float64(latStart)/samplesPerDegree,
		},
		Max: orb.Point{
			float64(tileMinLon) + float64(lonEnd)/samplesPerDegree,
			float64(tileMinLat) + float64(latEnd)/samplesPerDegree,
		},
	}

	logger.Debug("Extraction complete",
		"rows", out.Rows, "cols", out.Cols,
		"bound", fmt.Sprintf("%v", covered),
	)

	return Result{Elevation: out, Bound: covered}, nil
}

// placeTile copies a 3601x3601 tile into the mosaic buffer with its
// south-west sample at (row, col). Neighboring tiles overlap by one shared
// row and column.
func placeTile(buf, tile grid.Int16, row, col int) {
	for r := 0; r < tile.Rows; r++ {
		dst := (row+r)*buf.Cols + col
		copy(buf.Data[dst:dst+tile.Cols], tile.Data[r*tile.Cols:(r+1)*tile.Cols])
	}
}
