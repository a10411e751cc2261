package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
	"github.com/MeKo-Tech/reliefmap/internal/hgt"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatProvider returns tiles uniformly filled with lat*100+lon, so every
// sample identifies the tile it came from.
func flatProvider(lat, lon int) (grid.Int16, error) {
	tile := grid.NewInt16(hgt.TileSize, hgt.TileSize)
	v := int16(lat*100 + lon)
	for i := range tile.Data {
		tile.Data[i] = v
	}
	return tile, nil
}

// rampProvider returns a tile whose value encodes the sample position.
func rampProvider(lat, lon int) (grid.Int16, error) {
	tile := grid.NewInt16(hgt.TileSize, hgt.TileSize)
	for r := 0; r < tile.Rows; r++ {
		for c := 0; c < tile.Cols; c++ {
			tile.Set(r, c, int16((r+2*c)%10000))
		}
	}
	return tile, nil
}

func bound(minLon, minLat, maxLon, maxLat float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
}

func TestExtractSingleTileCrop(t *testing.T) {
	// Quarter-degree offsets map to exact sample indexes (0.25 * 3600 = 900).
	res, err := Extract(context.Background(), rampProvider, bound(14.25, 50.25, 14.5, 50.5), Options{})
	require.NoError(t, err)

	assert.Equal(t, 901, res.Elevation.Rows)
	assert.Equal(t, 901, res.Elevation.Cols)

	// Row 0 of the output is the southernmost requested arcsecond.
	want, _ := rampProvider(50, 14)
	assert.Equal(t, want.At(900, 900), res.Elevation.At(0, 0))
	assert.Equal(t, want.At(1800, 1800), res.Elevation.At(900, 900))
	assert.Equal(t, want.At(1234, 1000), res.Elevation.At(334, 100))
}

func TestExtractReportsCoveredBound(t *testing.T) {
	res, err := Extract(context.Background(), flatProvider, bound(14.25, 50.25, 14.5, 50.5), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 14.25, res.Bound.Min.Lon(), 1e-9)
	assert.InDelta(t, 50.25, res.Bound.Min.Lat(), 1e-9)
	assert.InDelta(t, 14.5, res.Bound.Max.Lon(), 1e-9)
	assert.InDelta(t, 50.5, res.Bound.Max.Lat(), 1e-9)
}

func TestExtractStitchesAdjacentTiles(t *testing.T) {
	// Spans the meridian between tiles (50,14) and (50,15).
	res, err := Extract(context.Background(), flatProvider, bound(14.5, 50.25, 15.5, 50.5), Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 901, res.Elevation.Rows)
	assert.Equal(t, 3601, res.Elevation.Cols)

	// West of the tile border the data comes from tile (50,14).
	assert.Equal(t, int16(5014), res.Elevation.At(0, 0))
	assert.Equal(t, int16(5014), res.Elevation.At(450, 1799))

	// East of the border, tile (50,15).
	assert.Equal(t, int16(5015), res.Elevation.At(450, 1801))
	assert.Equal(t, int16(5015), res.Elevation.At(900, 3600))

	// The shared column is written by both tiles; the mosaic order makes
	// the eastern tile win, deterministically.
	assert.Equal(t, int16(5015), res.Elevation.At(450, 1800))
}

func TestExtractPropagatesProviderErrors(t *testing.T) {
	failing := func(lat, lon int) (grid.Int16, error) {
		return grid.Int16{}, errors.New("disk gone")
	}

	_, err := Extract(context.Background(), failing, bound(14.25, 50.25, 14.5, 50.5), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch tile 50/14")
}

func TestExtractRejectsInvertedBound(t *testing.T) {
	_, err := Extract(context.Background(), flatProvider, bound(15.5, 50.25, 14.5, 50.5), Options{})
	assert.Error(t, err)
}
