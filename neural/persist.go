package neural

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// SaveGenome writes a genome to path in goNEAT's plain text encoding,
// creating parent directories as needed.
func SaveGenome(path string, g *genetics.Genome) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating genome dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating genome file: %w", err)
	}
	defer f.Close()

	w, err := genetics.NewGenomeWriter(f, genetics.PlainGenomeEncoding)
	if err != nil {
		return err
	}
	if err := w.WriteGenome(g); err != nil {
		return fmt.Errorf("writing genome: %w", err)
	}
	return f.Close()
}

// LoadGenome reads a genome written by SaveGenome.
func LoadGenome(path string) (*genetics.Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening genome file: %w", err)
	}
	defer f.Close()

	r, err := genetics.NewGenomeReader(f, genetics.PlainGenomeEncoding)
	if err != nil {
		return nil, err
	}
	g, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading genome %s: %w", path, err)
	}
	return g, nil
}
