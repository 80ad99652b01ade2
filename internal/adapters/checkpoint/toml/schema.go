package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version     int                `toml:"version"`
	Checkpoints []checkpointSchema `toml:"checkpoints"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported checkpoints schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type checkpointSchema struct {
	Actor          string `toml:"actor"`
	Category       string `toml:"category"`
	AcknowledgedAt string `toml:"acknowledged_at"`
}
