package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tnatlas/domain/estimate"
	"tnatlas/domain/study"
)

// Manuscript builds the methods-section draft for the journal submission.
// The draft is authored in Markdown; RenderHTML produces the reviewable
// HTML form. Word export is handled outside this repository.
type Manuscript struct{}

// NewManuscript creates a manuscript builder.
func NewManuscript() *Manuscript {
	return &Manuscript{}
}

// Methods renders the methods section as Markdown from the run's actual
// parameters, so the prose can never drift from the computation.
func (m *Manuscript) Methods(run *estimate.Run) string {
	var b strings.Builder

	b.WriteString("# METHODS\n\n")

	b.WriteString("## Data Acquisition\n\n")
	fmt.Fprintf(&b,
		"This retrospective cross-sectional study utilized data from the %s research database. "+
			"We queried the database for all patients with a primary or secondary diagnosis of %s "+
			"(ICD-10 code %s) during the study period from %s through %s. "+
			"Data were extracted at the state level (50 US states plus the District of Columbia) and "+
			"aggregated by US Census division to facilitate analyses where state-level sample sizes "+
			"were limited.\n\n",
		run.Condition.DataSource,
		strings.ToLower(run.Condition.Name),
		run.Condition.ICD10,
		run.Window.Start.Format("January 2, 2006"),
		run.Window.End.Format("January 2, 2006"),
	)

	fmt.Fprintf(&b,
		"To protect patient privacy, the source platform suppresses exact counts for cells containing "+
			"10 or fewer patients, displaying these values as %q. For quantitative analyses, suppressed "+
			"values were imputed as the midpoint of the possible range (1–10); %d such substitutions "+
			"were made in this run and are listed in the imputation audit table. ",
		study.SuppressionSentinel, len(run.Imputations))
	if len(study.ExcludedStates) > 0 {
		fmt.Fprintf(&b,
			"%s was excluded from state-level comparative analyses due to sample size limitations, "+
				"though it was retained in aggregate national and regional calculations.",
			strings.Join(study.ExcludedStates, ", "))
	}
	b.WriteString("\n\n")

	confidence := estimate.DefaultConfidence
	if len(run.National) > 0 {
		confidence = run.National[0].Confidence
	}

	b.WriteString("## Statistical Analysis\n\n")
	fmt.Fprintf(&b,
		"Treatment utilization rates were expressed as the percentage of the total cohort "+
			"(N = %s). Confidence intervals for proportions were computed with the Wilson score "+
			"method at the %.0f%% level. State-level rates were compared against the pooled national "+
			"rate using two-tailed one-proportion z-tests. Regional variation in treatment-category "+
			"distribution was assessed with Pearson chi-square tests of independence across census "+
			"divisions. Statistical significance was defined as p < %.2f (two-tailed); p-values are "+
			"reported to three decimals, with values below 0.001 reported as \"<0.001\". "+
			"Per capita diagnosis rates were calculated using 2024 population estimates from the "+
			"US Census Bureau.\n",
		FormatCount(run.TotalPatients), confidence*100, estimate.Alpha)

	if len(run.Failures) > 0 {
		fmt.Fprintf(&b,
			"\n%d stratum-level computations could not be completed and are shown as %s in the "+
				"tables; no failed stratum aborted the analysis.\n",
			len(run.Failures), NA)
	}

	return b.String()
}

// RenderHTML converts the Markdown methods draft into a standalone HTML
// fragment.
func (m *Manuscript) RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
