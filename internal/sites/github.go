package sites

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/raysh454/rawdata/internal/content"
	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/model"
)

const readmeLimit = 3000

var (
	genericNames = map[string]bool{
		"main.js": true, "index.js": true, "app.js": true, "script.js": true,
		"utils.js": true, "helper.js": true, "config.js": true, "test.js": true,
	}
	boilerplateFile = regexp.MustCompile(`(?i)^(setup|install|readme|contributing|changelog)\.(md|txt)$`)
	templatePhrases = []string{"your-project-name", "project-description", "todo:", "replace this", "edit this file"}
	githubNumber    = regexp.MustCompile(`([\d.]+)([km]?)`)
)

// GitHub reads repository pages.
type GitHub struct{}

func (GitHub) Source() model.DeepSource { return model.SourceGitHub }

func (GitHub) Match(host string) bool { return MatchDomain(host, "github.com") }

func (GitHub) Extract(doc *dom.Document) any {
	data := &model.GitHubData{
		Type:  "unknown",
		Files: []model.RepoFile{},
		CodePatterns: model.CodePatterns{
			GenericFiles:       []string{},
			SuspiciousPatterns: []string{},
		},
	}

	if doc.First(`[itemprop="name"] a, .AppHeader-context-item-label`) != nil {
		data.Type = "repository"
		data.Repo = ptr(repoSlug(doc.Path()))
	}
	if n := doc.First(`#repo-stars-counter-star, [href$="/stargazers"]`); n != nil {
		data.Metrics.Stars = ParseGitHubNumber(text(n))
	}
	if n := doc.First(`#repo-network-counter, [href$="/forks"]`); n != nil {
		data.Metrics.Forks = ParseGitHubNumber(text(n))
	}
	data.Metrics.IsFork = doc.First(`.fork-flag, [class*="fork"]`) != nil

	boilerplate := 0
	for _, row := range doc.Find(`.react-directory-row, .js-navigation-item`) {
		link := row.First(`a.Link--primary, a.js-navigation-open`)
		if link == nil {
			continue
		}
		name := text(link)
		data.Files = append(data.Files, model.RepoFile{Name: name, Path: link.AttrOr("href", "")})
		lower := strings.ToLower(name)
		if genericNames[lower] {
			data.CodePatterns.GenericFiles = append(data.CodePatterns.GenericFiles, name)
		}
		if strings.Contains(lower, "license") {
			data.Metrics.HasLicense = true
		}
		if boilerplateFile.MatchString(name) {
			boilerplate++
		}
	}
	if len(data.Files) > 0 {
		data.CodePatterns.BoilerplateScore = int(math.Round(float64(boilerplate) / float64(len(data.Files)) * 100))
	}

	if n := doc.First(`article.markdown-body, .readme`); n != nil {
		readme := content.Truncate(n.InnerText(), readmeLimit)
		data.Readme = &readme
		if IsTemplateReadme(readme) {
			data.CodePatterns.SuspiciousPatterns = append(data.CodePatterns.SuspiciousPatterns, "Template README detected")
		}
	}
	return data
}

// IsTemplateReadme reports whether text still contains scaffold placeholders.
func IsTemplateReadme(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range templatePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ParseGitHubNumber reads counters such as "1,204", "1.2k" or "3m".
func ParseGitHubNumber(s string) int {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), ",", "")
	m := githubNumber.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "k":
		f *= 1000
	case "m":
		f *= 1000000
	}
	return int(math.Round(f))
}

func repoSlug(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	end := min(len(parts), 3)
	return strings.Join(parts[1:end], "/")
}
