package sites

import (
	"regexp"
	"slices"
	"strings"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/model"
)

// ExplorerDomains are the EVM block explorers sharing the Etherscan layout.
var ExplorerDomains = []string{
	"etherscan.io",
	"bscscan.com",
	"polygonscan.com",
	"arbiscan.io",
	"optimistic.etherscan.io",
}

var ethAmount = regexp.MustCompile(`[\d.,]+\s*ETH`)

// Explorer reads Etherscan-family address and contract pages.
type Explorer struct{}

func (Explorer) Source() model.DeepSource { return model.SourceEtherscan }

func (Explorer) Match(host string) bool { return matchAny(host, ExplorerDomains) }

func (Explorer) Extract(doc *dom.Document) any {
	data := &model.ExplorerData{Type: "unknown"}
	if addr := text(doc.First(`#mainaddress, .hash-tag`)); addr != "" {
		data.Address = &addr
		data.Type = "address"
	}
	if n := doc.First(`.card .h5, #ContentPlaceHolder1_divSummary .card-body`); n != nil {
		data.Balance = ptr(ethAmount.FindString(n.TextContent()))
	}
	data.Verified = doc.First(`.text-success, .fa-check-circle`) != nil
	if name := text(doc.First(`#ContentPlaceHolder1_divCodeOrPending .h6`)); name != "" {
		data.ContractName = &name
		data.Type = "contract"
	}
	return data
}

// Solscan reads Solana account and token pages.
type Solscan struct{}

func (Solscan) Source() model.DeepSource { return model.SourceSolscan }

func (Solscan) Match(host string) bool { return MatchDomain(host, "solscan.io") }

func (Solscan) Extract(doc *dom.Document) any {
	data := &model.SolscanData{Type: "unknown"}
	parts := strings.Split(doc.Path(), "/")
	switch {
	case slices.Contains(parts, "token"):
		data.Type = "token"
	case slices.Contains(parts, "account"):
		data.Type = "account"
	}
	if data.Type != "unknown" {
		data.Address = ptr(parts[len(parts)-1])
	}
	data.Balance = ptr(text(doc.First(`[class*="balance"], [class*="Balance"]`)))
	return data
}
