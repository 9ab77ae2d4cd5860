package network

import (
	"fmt"
	"math"
	"os"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats/scalar"
	"gopkg.in/yaml.v3"
)

const (
	DefaultColor     = "#666"
	DefaultNodeSize  = 30.0
	DefaultSizeScale = 80.0
)

var defaultPalette = map[rune]string{
	'A': "#FFB3BA", 'B': "#FFDFBA", 'C': "#FFFFBA", 'D': "#BAFFBA",
	'E': "#BAE1FF", 'F': "#D1BAFF", 'G': "#FFBAFF", 'H': "#FFBABA",
	'I': "#FFEBBA", 'J': "#BAFFD8", 'K': "#D7FFBA", 'L': "#FFB6C1",
	'M': "#E3FFE3", 'N': "#BAF3FF", 'O': "#FFD1BA", 'P': "#D9A9FF",
	'Q': "#F0F8FF", 'R': "#FFCCCC", 'S': "#E2F3E2", 'T': "#D8E8FF",
	'U': "#F8D0B3", 'V': "#B9C7FF", 'W': "#F5B7B1", 'X': "#E9F7D2",
	'Y': "#D6F3FF", 'Z': "#FFE0E0",
}

// Style is the immutable table of visual constants used by the projector.
// Build it once with DefaultStyle or LoadStyle and share it.
type Style struct {
	palette      map[rune]string
	defaultColor string
	defaultSize  float64
	sizeScale    float64
	pinLeft      Position
	pinRight     Position
}

// DefaultStyle returns the pastel A–Z palette with 30px default nodes.
func DefaultStyle() *Style {
	palette := make(map[rune]string, len(defaultPalette))
	for k, v := range defaultPalette {
		palette[k] = v
	}
	return &Style{
		palette:      palette,
		defaultColor: DefaultColor,
		defaultSize:  DefaultNodeSize,
		sizeScale:    DefaultSizeScale,
		pinLeft:      Position{X: 100, Y: 300},
		pinRight:     Position{X: 1000, Y: 300},
	}
}

type styleFile struct {
	Palette      map[string]string `yaml:"palette"`
	DefaultColor string            `yaml:"default_color"`
	DefaultSize  *float64          `yaml:"default_size"`
	SizeScale    *float64          `yaml:"size_scale"`
	PinLeft      *Position         `yaml:"pin_left"`
	PinRight     *Position         `yaml:"pin_right"`
}

// LoadStyle overlays a YAML style file on DefaultStyle. Palette keys must be
// single letters A–Z.
func LoadStyle(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}
	return ParseStyle(data)
}

// ParseStyle is LoadStyle on an in-memory document.
func ParseStyle(data []byte) (*Style, error) {
	var f styleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse style file: %w", err)
	}

	s := DefaultStyle()
	for key, color := range f.Palette {
		r, size := utf8.DecodeRuneInString(key)
		if size != len(key) || r < 'A' || r > 'Z' {
			return nil, fmt.Errorf("palette key %q must be a single letter A-Z", key)
		}
		s.palette[r] = color
	}
	if f.DefaultColor != "" {
		s.defaultColor = f.DefaultColor
	}
	if f.DefaultSize != nil {
		if *f.DefaultSize <= 0 {
			return nil, fmt.Errorf("default_size must be positive")
		}
		s.defaultSize = *f.DefaultSize
	}
	if f.SizeScale != nil {
		if *f.SizeScale <= 0 {
			return nil, fmt.Errorf("size_scale must be positive")
		}
		s.sizeScale = *f.SizeScale
	}
	if f.PinLeft != nil {
		s.pinLeft = *f.PinLeft
	}
	if f.PinRight != nil {
		s.pinRight = *f.PinRight
	}
	return s, nil
}

// Color maps the upper-cased first character of code to the palette.
func (s *Style) Color(code DiseaseCode) string {
	r, _ := utf8.DecodeRuneInString(string(code))
	if c, ok := s.palette[unicode.ToUpper(r)]; ok {
		return c
	}
	return s.defaultColor
}

// Size scales a width/height hint to pixels, or returns the default size.
func (s *Style) Size(hint *float64) float64 {
	if hint == nil || math.IsNaN(*hint) {
		return s.defaultSize
	}
	return scalar.RoundEven(*hint*s.sizeScale, 2)
}

// PinPositions returns the left and right anchor positions.
func (s *Style) PinPositions() (left, right Position) {
	return s.pinLeft, s.pinRight
}
