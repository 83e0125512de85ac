package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	cliconfig "github.com/s739/s739/cmd/s739/internal/config"
	"github.com/s739/s739/internal/codec"
)

// DecodeCmd recovers a payload previously embedded into a carrier image.
type DecodeCmd struct {
	Input string  `name:"input" required:"" type:"existingfile" help:"Carrier image to extract from"`
	File  *string `name:"file" help:"Write the recovered payload here instead of standard output"`

	ExtractionFlags
}

// Run executes the decode command.
func (c *DecodeCmd) Run(_ *cliconfig.GlobalConfig) error {
	logger := log.Default()

	carrier, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("failed to read carrier: %w", err)
	}

	payload, err := codec.Decode(carrier, c.EmbedConfig())
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	logger.Debug("decoded", "input", c.Input, "payload_bytes", len(payload))

	if c.File == nil {
		_, err := os.Stdout.Write(payload)
		return err
	}
	return writeFileAtomic(*c.File, payload)
}
