// Package hgt loads 1-arcsecond elevation tiles in HGT format, as shipped
// by NASADEM and SRTMGL1. A tile covers one degree by one degree at
// 3601x3601 samples and holds elevation in meters as big-endian int16.
package hgt

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
)

// TileSize is the number of samples along each tile axis. Adjacent tiles
// share their border row and column.
const TileSize = 3601

// Format selects how tiles are stored on disk.
type Format string

const (
	// FormatHGT reads bare .hgt files.
	FormatHGT Format = "hgt"
	// FormatZIP reads .hgt members out of per-tile zip archives.
	FormatZIP Format = "zip"
)

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case string(FormatHGT):
		return FormatHGT, nil
	case string(FormatZIP):
		return FormatZIP, nil
	default:
		return "", fmt.Errorf("unknown tile format %q (want hgt or zip)", s)
	}
}

// Provider returns one degree-by-degree elevation raster for the tile whose
// south-west corner is at the given integer latitude and longitude.
// The returned grid is ordered south-to-north per ISO 6709.
type Provider func(lat, lon int) (grid.Int16, error)

type source struct {
	dir        string
	format     Format
	upperCase  bool
	zipPattern string // with one %s placeholder for the cell name
	logger     *slog.Logger
}

// NASADEM returns a provider for NASADEM HGT data under dir.
// See https://lpdaac.usgs.gov/documents/592/NASADEM_User_Guide_V1.pdf.
func NASADEM(dir string, format Format, logger *slog.Logger) Provider {
	s := &source{
		dir:        dir,
		format:     format,
		upperCase:  false,
		zipPattern: "NASADEM_HGT_%s.zip",
		logger:     logger,
	}
	return s.load
}

// SRTMGL1 returns a provider for SRTM Global 1-arcsecond data under dir.
func SRTMGL1(dir string, format Format, logger *slog.Logger) Provider {
	s := &source{
		dir:        dir,
		format:     format,
		upperCase:  true,
		zipPattern: "%s.SRTMGL1.hgt.zip",
		logger:     logger,
	}
	return s.load
}

func (s *source) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// cellName builds the tile name for a south-west corner, e.g. "n50e014".
func (s *source) cellName(lat, lon int) string {
	var latStr, lonStr string
	if lat >= 0 {
		latStr = fmt.Sprintf("n%02d", lat)
	} else {
		latStr = fmt.Sprintf("s%02d", -lat+1)
	}
	if lon >= 0 {
		lonStr = fmt.Sprintf("e%03d", lon)
	} else {
		lonStr = fmt.Sprintf("w%03d", -lon+1)
	}

	name := latStr + lonStr
	if s.upperCase {
		name = strings.ToUpper(name)
	}
	return name
}

func (s *source) load(lat, lon int) (grid.Int16, error) {
	cell := s.cellName(lat, lon)
	filename := cell + ".hgt"

	var raw []byte
	switch s.format {
	case FormatZIP:
		zipPath := filepath.Join(s.dir, fmt.Sprintf(s.zipPattern, cell))
		if _, err := os.Stat(zipPath); os.IsNotExist(err) {
			// Oceans have no tiles; treat a missing archive as sea level.
			s.log().Debug("Tile archive missing, assuming sea level", "path", zipPath)
			return grid.NewInt16(TileSize, TileSize), nil
		}

		s.log().Debug("Loading tile", "path", zipPath)
		data, err := readZipMember(zipPath, filename)
		if err != nil {
			return grid.Int16{}, err
		}
		raw = data

	case FormatHGT:
		path := filepath.Join(s.dir, filename)
		s.log().Debug("Loading tile", "path", path)
		data, err := os.ReadFile(path)
		if err != nil {
			return grid.Int16{}, fmt.Errorf("failed to read tile %s: %w", cell, err)
		}
		raw = data

	default:
		return grid.Int16{}, fmt.Errorf("unknown tile format %q", s.format)
	}

	return decode(cell, raw)
}

func readZipMember(zipPath, member string) ([]byte, error) {
	z, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tile archive %s: %w", zipPath, err)
	}
	defer z.Close()

	f, err := z.Open(member)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", member, zipPath, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s in %s: %w", member, zipPath, err)
	}
	return data, nil
}

// decode parses raw HGT bytes. Files are stored north-to-south; rows are
// flipped so the result runs south-to-north in line with ISO 6709.
func decode(cell string, raw []byte) (grid.Int16, error) {
	want := TileSize * TileSize * 2
	if len(raw) != want {
		return grid.Int16{}, fmt.Errorf("tile %s has %d bytes, want %d", cell, len(raw), want)
	}

	tile := grid.NewInt16(TileSize, TileSize)
	for r := 0; r < TileSize; r++ {
		src := (TileSize - 1 - r) * TileSize * 2
		for c := 0; c < TileSize; c++ {
			tile.Data[r*TileSize+c] = int16(binary.BigEndian.Uint16(raw[src : src+2]))
			src += 2
		}
	}
	return tile, nil
}
