package model

import (
	"encoding/json"
	"fmt"
)

// DeepSource names the site-specific scanner that produced DeepData.
type DeepSource string

const (
	SourceGitHub    DeepSource = "github"
	SourceEtherscan DeepSource = "etherscan"
	SourceSolscan   DeepSource = "solscan"
)

// DeepData is the result of a site-specific scanner. Data holds one of
// *GitHubData, *ExplorerData or *SolscanData depending on Source.
type DeepData struct {
	Source DeepSource `json:"source"`
	Data   any        `json:"data"`
}

func (d *DeepData) UnmarshalJSON(b []byte) error {
	var raw struct {
		Source DeepSource      `json:"source"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var target any
	switch raw.Source {
	case SourceGitHub:
		target = &GitHubData{}
	case SourceEtherscan:
		target = &ExplorerData{}
	case SourceSolscan:
		target = &SolscanData{}
	default:
		return fmt.Errorf("unknown deep data source %q", raw.Source)
	}
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, target); err != nil {
			return fmt.Errorf("decode %s data: %w", raw.Source, err)
		}
	}
	d.Source = raw.Source
	d.Data = target
	return nil
}

// RepoFile is one entry of a repository file listing.
type RepoFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// RepoMetrics are the headline numbers of a repository page.
type RepoMetrics struct {
	Stars        int     `json:"stars"`
	Forks        int     `json:"forks"`
	Contributors int     `json:"contributors"`
	IsFork       bool    `json:"isFork"`
	HasLicense   bool    `json:"hasLicense"`
	Age          *string `json:"age"`
}

// CodePatterns summarises signs of low-effort or templated repositories.
type CodePatterns struct {
	GenericFiles       []string `json:"genericFiles"`
	BoilerplateScore   int      `json:"boilerplateScore"`
	SuspiciousPatterns []string `json:"suspiciousPatterns"`
}

// GitHubData is extracted from a GitHub page.
type GitHubData struct {
	Type         string       `json:"type"`
	Repo         *string      `json:"repo"`
	Files        []RepoFile   `json:"files"`
	Readme       *string      `json:"readme"`
	Metrics      RepoMetrics  `json:"metrics"`
	CodePatterns CodePatterns `json:"codePatterns"`
}

// ExplorerData is extracted from an EVM block explorer page.
type ExplorerData struct {
	Type         string  `json:"type"`
	Address      *string `json:"address"`
	Balance      *string `json:"balance"`
	ContractName *string `json:"contract_name"`
	Verified     bool    `json:"verified"`
}

// SolscanData is extracted from a Solscan page.
type SolscanData struct {
	Type      string  `json:"type"`
	Address   *string `json:"address"`
	Balance   *string `json:"balance"`
	TokenInfo *string `json:"token_info"`
}
