package cmd

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/reliefmap/internal/extract"
	"github.com/MeKo-Tech/reliefmap/internal/hgt"
	"github.com/MeKo-Tech/reliefmap/internal/store"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract real elevation data",
	Long: `Extract elevation data for a latitude/longitude bounding box from local
NASADEM or SRTMGL1 HGT tiles, stitched and cropped to the requested region.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("dataset", "nasadem", "Tile dataset: nasadem or srtmgl1")
	extractCmd.Flags().String("data-dir", ".", "Directory holding the HGT tiles")
	extractCmd.Flags().String("tile-format", "zip", "Tile storage format: hgt or zip")
	extractCmd.Flags().String("bbox", "", "Bounding box: minLon,minLat,maxLon,maxLat (e.g. \"14.2,50.0,14.6,50.2\")")
	extractCmd.Flags().IntP("workers", "w", 0, "Number of parallel tile fetches (default: number of CPUs)")
	extractCmd.Flags().String("output-db", "", "Terrain database to write the result to")
	extractCmd.Flags().String("name", "", "Name of the terrain in the database (default: the bbox)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"extract.dataset", "dataset"},
		{"extract.data_dir", "data-dir"},
		{"extract.tile_format", "tile-format"},
		{"extract.bbox", "bbox"},
		{"extract.workers", "workers"},
		{"extract.output_db", "output-db"},
		{"extract.name", "name"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, extractCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	bboxStr := viper.GetString("extract.bbox")
	if bboxStr == "" {
		return fmt.Errorf("--bbox is required")
	}
	bound, err := parseBBox(bboxStr)
	if err != nil {
		return err
	}

	format, err := hgt.ParseFormat(viper.GetString("extract.tile_format"))
	if err != nil {
		return err
	}

	dataDir := viper.GetString("extract.data_dir")
	var provider hgt.Provider
	switch dataset := viper.GetString("extract.dataset"); dataset {
	case "nasadem":
		provider = hgt.NASADEM(dataDir, format, logger)
	case "srtmgl1":
		provider = hgt.SRTMGL1(dataDir, format, logger)
	default:
		return fmt.Errorf("unsupported dataset %q (want nasadem or srtmgl1)", dataset)
	}

	workers := viper.GetInt("extract.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger.Info("Extracting elevation data", "bbox", bboxStr, "dataset", viper.GetString("extract.dataset"), "workers", workers)

	res, err := extract.Extract(cmd.Context(), provider, bound, extract.Options{
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.Info("Extraction complete",
		"rows", res.Elevation.Rows,
		"cols", res.Elevation.Cols,
		"min_lon", res.Bound.Min.Lon(),
		"min_lat", res.Bound.Min.Lat(),
		"max_lon", res.Bound.Max.Lon(),
		"max_lat", res.Bound.Max.Lat(),
	)

	if outputDB := viper.GetString("extract.output_db"); outputDB != "" {
		name := viper.GetString("extract.name")
		if name == "" {
			name = bboxStr
		}

		s, err := store.Open(outputDB)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Put(store.Terrain{Name: name, Height: res.Elevation.ToField()}); err != nil {
			return err
		}
		logger.Info("Terrain stored", "db", outputDB, "name", name)
	}

	return nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat" into a bound.
func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}

	if vals[0] > vals[2] || vals[1] > vals[3] {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: min must not exceed max", s)
	}

	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}
