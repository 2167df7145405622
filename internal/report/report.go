// Package report renders organization metrics and usage history into a
// standalone HTML report for sharing outside the dashboard.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/metrics"
	"github.com/seismohq/seismo/internal/usage"
)

// Input bundles everything a report is built from.
type Input struct {
	OrganizationName string
	SurveyName       string
	Metrics          metrics.OrganizationalMetrics
	Buckets          []usage.Bucket
	Granularity      usage.Granularity
	Alerts           []usage.Alert
	GeneratedAt      time.Time
}

// forceLabels maps force identifiers to display names.
var forceLabels = map[forces.ForceType]string{
	forces.PainOfOld:    "Pain of the old",
	forces.PullOfNew:    "Pull of the new",
	forces.AnchorsToOld: "Anchors to the old",
	forces.AnxietyOfNew: "Anxiety of the new",
	forces.Demographic:  "Demographic",
}

// BuildMarkdown renders the report body as markdown.
func BuildMarkdown(in Input) string {
	var b strings.Builder

	title := in.OrganizationName
	if title == "" {
		title = "Organization"
	}
	fmt.Fprintf(&b, "# %s - Force Analysis Report\n\n", title)
	if in.SurveyName != "" {
		fmt.Fprintf(&b, "Survey: **%s**\n\n", in.SurveyName)
	}
	fmt.Fprintf(&b, "Generated %s\n\n", in.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	m := in.Metrics
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Responses analyzed | %d |\n", m.TotalResponses)
	fmt.Fprintf(&b, "| Quality score | %.2f / 4 |\n", m.QualityScore)
	fmt.Fprintf(&b, "| Average confidence | %.2f / 5 |\n", m.AverageConfidence)
	fmt.Fprintf(&b, "| Average force strength | %.2f / 5 |\n", m.AverageForceStrength)
	fmt.Fprintf(&b, "| Average sentiment | %+.2f |\n", m.AverageSentiment)
	if !m.DateRange.From.IsZero() {
		fmt.Fprintf(&b, "| Date range | %s to %s |\n",
			m.DateRange.From.Format("2006-01-02"), m.DateRange.To.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if len(m.ForceDistribution) > 0 {
		fmt.Fprintf(&b, "## Force distribution\n\n| Force | Responses |\n|---|---|\n")
		for _, f := range forces.All {
			count, ok := m.ForceDistribution[f]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %d |\n", forceLabels[f], count)
		}
		b.WriteString("\n")
	}

	if len(m.SentimentDistribution) > 0 {
		fmt.Fprintf(&b, "## Sentiment\n\n| Sentiment | Responses |\n|---|---|\n")
		for _, label := range []string{"positive", "neutral", "negative"} {
			if count, ok := m.SentimentDistribution[label]; ok {
				fmt.Fprintf(&b, "| %s | %d |\n", label, count)
			}
		}
		b.WriteString("\n")
	}

	if len(m.ThemeFrequency) > 0 {
		fmt.Fprintf(&b, "## Top themes\n\n| Theme | Mentions |\n|---|---|\n")
		for _, tc := range m.ThemeFrequency {
			fmt.Fprintf(&b, "| %s | %d |\n", tc.Theme, tc.Count)
		}
		b.WriteString("\n")
	}

	if len(in.Buckets) > 0 {
		fmt.Fprintf(&b, "## Usage by %s\n\n| Period | Requests | Errors | Tokens | Cost |\n|---|---|---|---|---|\n", in.Granularity)
		for _, bucket := range in.Buckets {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | $%.2f |\n",
				bucket.Label(in.Granularity), bucket.Requests, bucket.Errors,
				bucket.Tokens, bucket.CostCents/100)
		}
		b.WriteString("\n")
	}

	if len(in.Alerts) > 0 {
		fmt.Fprintf(&b, "## Active alerts\n\n")
		for _, a := range in.Alerts {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", a.Type, a.Severity, a.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTML converts the report markdown into a standalone HTML page.
func RenderHTML(in Input) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(BuildMarkdown(in)), &body); err != nil {
		return "", fmt.Errorf("converting report markdown: %w", err)
	}

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}

	var page bytes.Buffer
	err = tmpl.Execute(&page, map[string]any{
		"Title":   in.OrganizationName + " - Force Analysis",
		"Content": template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("rendering report page: %w", err)
	}
	return page.String(), nil
}
