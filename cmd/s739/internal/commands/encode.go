package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/s739/s739/internal/codec"
	cliconfig "github.com/s739/s739/cmd/s739/internal/config"
)

// EncodeCmd embeds a payload into a carrier image.
type EncodeCmd struct {
	Input  string `name:"input" required:"" type:"existingfile" help:"Carrier image to embed into"`
	Output string `name:"output" short:"o" required:"" help:"Path to write the carrier with the payload embedded"`

	Text  *string `name:"text" xor:"payload" help:"Payload given directly as a string"`
	File  *string `name:"file" xor:"payload" type:"existingfile" help:"Payload read from a file"`
	Stdin bool    `name:"stdin" xor:"payload" help:"Payload read from standard input"`

	ExtractionFlags
	ReserializationFlags
}

// Run executes the encode command.
func (c *EncodeCmd) Run(_ *cliconfig.GlobalConfig) error {
	logger := log.Default()

	payload, err := c.readPayload()
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	carrier, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("failed to read carrier: %w", err)
	}

	logger.Debug("encoding", "input", c.Input, "payload_bytes", len(payload), "depth", c.Depth, "bits", c.Bits)

	out, err := codec.Encode(carrier, payload, c.EmbedConfig(), c.ReserializationFlags.Options())
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	if err := writeFileAtomic(c.Output, out); err != nil {
		return fmt.Errorf("failed to write carrier: %w", err)
	}

	logger.Info("encoded", "output", c.Output, "payload_bytes", len(payload))
	return nil
}

func (c *EncodeCmd) readPayload() ([]byte, error) {
	switch {
	case c.Text != nil:
		return []byte(*c.Text), nil
	case c.File != nil:
		return os.ReadFile(*c.File)
	case c.Stdin:
		return io.ReadAll(os.Stdin)
	default:
		return nil, fmt.Errorf("one of --text, --file, or --stdin is required")
	}
}
