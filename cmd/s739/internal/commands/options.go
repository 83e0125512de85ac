package commands

import (
	"github.com/s739/s739/internal/codec"
	"github.com/s739/s739/internal/config"
	"github.com/s739/s739/internal/imageopts"
)

// ExtractionFlags are the embedding parameters shared by encode and decode:
// a decode must be given the identical values an encode used, or it
// recovers garbage rather than failing.
type ExtractionFlags struct {
	Key         string `name:"key" help:"Key seeding the stride CSPRNG"`
	Depth       int    `name:"depth" default:"0" help:"Bit offset within a sample where embedding starts (0-7)"`
	Bits        int    `name:"bits" default:"1" help:"Contiguous bits embedded per sample (1-8)"`
	JPEGComp    *int   `name:"jpeg-comp" help:"Restrict JPEG traversal to a single color component"`
	Selective   bool   `name:"selective" help:"JPEG-only: skip DC, zero, and sign-boundary coefficients"`
	MaxStep     *int   `name:"max-step" help:"Override the capacity-derived stride"`
}

// EmbedConfig builds the core library's config.EmbedConfig from the shared
// flags.
func (f ExtractionFlags) EmbedConfig() config.EmbedConfig {
	return config.EmbedConfig{
		Key:           f.Key,
		Depth:         f.Depth,
		Bits:          f.Bits,
		JPEGComponent: f.JPEGComp,
		Selective:     f.Selective,
		MaxStep:       f.MaxStep,
	}
}

// ReserializationFlags are the carrier re-encoding knobs that only matter on
// encode.
type ReserializationFlags struct {
	PNGCompression imageopts.PNGCompression `name:"png-compression" default:"default" help:"PNG zlib effort: default, fast, best"`
	PNGFilter      imageopts.PNGFilter      `name:"png-filter" help:"PNG per-scanline filter heuristic"`
	JPEGProfile    imageopts.JPEGProfile    `name:"jpeg-profile" help:"JPEG re-compression profile: max, fastest"`
}

// Options builds the core library's codec.Options from the shared flags.
func (f ReserializationFlags) Options() codec.Options {
	return codec.Options{
		PNG: imageopts.PNGOptions{
			Compression: f.PNGCompression,
			Filter:      f.PNGFilter,
		},
		JPEG: imageopts.JPEGOptions{
			Profile: f.JPEGProfile,
		},
	}
}
