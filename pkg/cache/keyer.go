package cache

// Keyer derives cache keys. Implementations must be deterministic.
type Keyer interface {
	// ReportKey keys a deadlock report by the hash of its input graph.
	ReportKey(graphHash string) string

	// ArtifactKey keys a rendered artifact by graph hash and render options.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the Keyer used by the CLI and server.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey returns "report:<graphHash>".
func (DefaultKeyer) ReportKey(graphHash string) string {
	return "report:" + graphHash
}

// ArtifactKey hashes the options together with the graph hash.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
