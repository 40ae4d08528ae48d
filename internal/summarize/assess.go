package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raysh454/rawdata/internal/content"
	"github.com/raysh454/rawdata/internal/model"
)

type Status string

const (
	StatusRisky Status = "RISKY"
	StatusMixed Status = "MIXED"
	StatusClean Status = "CLEAN"
)

// Assessment is the model's verdict on a repository's legitimacy.
type Assessment struct {
	OneLine  string   `json:"one_line"`
	Detailed string   `json:"detailed"`
	Status   Status   `json:"status"`
	RedFlags []string `json:"red_flags"`
}

const assessMaxTokens = 512

// AssessRepository asks the model to judge a GitHub repository scan.
func (s *Summarizer) AssessRepository(ctx context.Context, repo *model.GitHubData) (*Assessment, error) {
	if s.client == nil || s.cfg.Model == "" {
		return nil, ErrNotConfigured
	}
	if repo == nil {
		return nil, errors.New("no repository data")
	}
	out, err := s.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: AssessPrompt(repo)},
	}, assessMaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseAssessment(out), nil
}

// AssessPrompt builds the repository assessment request.
func AssessPrompt(repo *model.GitHubData) string {
	names := make([]string, 0, min(len(repo.Files), promptRepoFiles))
	for i, f := range repo.Files {
		if i == promptRepoFiles {
			break
		}
		names = append(names, f.Name)
	}
	readme := "No README"
	if repo.Readme != nil {
		readme = content.Truncate(*repo.Readme, 500)
	}

	var b strings.Builder
	b.WriteString("Analyze this GitHub repository for code legitimacy and quality.\n\n")
	fmt.Fprintf(&b, "REPOSITORY: %s\n", deref(repo.Repo))
	b.WriteString("METRICS:\n")
	fmt.Fprintf(&b, "- Stars: %d\n- Forks: %d\n", repo.Metrics.Stars, repo.Metrics.Forks)
	fmt.Fprintf(&b, "- Is Fork: %s\n- Has License: %s\n\n", yesNo(repo.Metrics.IsFork), yesNo(repo.Metrics.HasLicense))
	fmt.Fprintf(&b, "FILES (%d total):\n%s\n\n", len(repo.Files), strings.Join(names, ", "))
	b.WriteString("CODE PATTERNS:\n")
	fmt.Fprintf(&b, "- Generic filenames: %s\n", joinOrNone(repo.CodePatterns.GenericFiles))
	fmt.Fprintf(&b, "- Boilerplate score: %d%%\n", repo.CodePatterns.BoilerplateScore)
	fmt.Fprintf(&b, "- Suspicious patterns: %s\n\n", joinOrNone(repo.CodePatterns.SuspiciousPatterns))
	fmt.Fprintf(&b, "README SAMPLE:\n%s\n\n", readme)
	b.WriteString(`Provide:
1. ONE-LINE ASSESSMENT (max 80 chars): Quick verdict on code legitimacy
2. DETAILED ASSESSMENT (2-3 sentences): Code originality, quality, concerns
3. STATUS: RISKY, MIXED, or CLEAN
4. RED FLAGS: List specific issues (or "None" if clean)

Format:
ONE_LINE: [your assessment]
DETAILED: [your assessment]
STATUS: [RISKY/MIXED/CLEAN]
RED_FLAGS: [comma-separated list or "None"]`)
	return b.String()
}

// ParseAssessment reads the line-oriented reply requested by AssessPrompt.
// Unknown statuses fall back to MIXED.
func ParseAssessment(reply string) *Assessment {
	a := &Assessment{Status: StatusMixed, RedFlags: []string{}}
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ONE_LINE:"):
			a.OneLine = strings.TrimSpace(strings.TrimPrefix(line, "ONE_LINE:"))
		case strings.HasPrefix(line, "DETAILED:"):
			a.Detailed = strings.TrimSpace(strings.TrimPrefix(line, "DETAILED:"))
		case strings.HasPrefix(line, "STATUS:"):
			switch st := Status(strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "STATUS:")))); st {
			case StatusRisky, StatusMixed, StatusClean:
				a.Status = st
			}
		case strings.HasPrefix(line, "RED_FLAGS:"):
			flags := strings.TrimSpace(strings.TrimPrefix(line, "RED_FLAGS:"))
			if strings.EqualFold(flags, "none") {
				continue
			}
			for _, f := range strings.Split(flags, ",") {
				if f = strings.TrimSpace(f); f != "" {
					a.RedFlags = append(a.RedFlags, f)
				}
			}
		}
	}
	return a
}

func deref(s *string) string {
	if s == nil {
		return "Unknown"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "None"
	}
	return strings.Join(s, ", ")
}
