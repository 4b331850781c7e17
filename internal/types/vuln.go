package types

// VulnMatch is the subset of a scanner match the deduplicator reads.
type VulnMatch struct {
	VulnerabilityID string
	ArtifactName    string
	PURL            string
	Locations       []string
}

type VulnerabilityRef struct {
	ID string `json:"id"`
}

type GroupedArtifact struct {
	Names     []string `json:"name"`
	Locations []string `json:"locations"`
	PURLs     []string `json:"purls"`
}

type VulnerabilityGroup struct {
	Vulnerability VulnerabilityRef `json:"vulnerability"`
	Artifact      GroupedArtifact  `json:"artifact"`
}

type DedupReport struct {
	Matches []VulnerabilityGroup `json:"matches"`
}
