package cache

import "fmt"

// Keyer builds cache keys for each cached stage.
type Keyer interface {
	// BatchKey identifies a generated batch by category and background hash.
	BatchKey(category, imageHash string, opts BatchKeyOpts) string

	// LayoutKey identifies the draw ops of one design under given overrides.
	LayoutKey(designHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered output format of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// BatchKeyOpts are the generator settings that change a batch.
type BatchKeyOpts struct {
	Model string `json:"model,omitempty"`
}

// LayoutKeyOpts are the layout inputs besides the design itself.
type LayoutKeyOpts struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	RecipientName string `json:"recipient_name,omitempty"`
	Date          string `json:"date,omitempty"`
	Signature     string `json:"signature,omitempty"`
}

// ArtifactKeyOpts are the render inputs besides the layout.
type ArtifactKeyOpts struct {
	Format         string `json:"format"`
	BackgroundHash string `json:"background_hash,omitempty"`

	// DesignID and DesignName are set for formats that embed them.
	DesignID   int    `json:"design_id,omitempty"`
	DesignName string `json:"design_name,omitempty"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BatchKey returns "batch:<category>:<hash>".
func (DefaultKeyer) BatchKey(category, imageHash string, opts BatchKeyOpts) string {
	return hashKey(fmt.Sprintf("batch:%s", category), imageHash, opts)
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(designHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", designHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), layoutHash, opts)
}
