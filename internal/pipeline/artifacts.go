package pipeline

import (
	"slices"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

type ArtifactsReport string

const (
	ReportAccessibility      ArtifactsReport = "accessibility"
	ReportAPIFuzzing         ArtifactsReport = "api_fuzzing"
	ReportBrowserPerformance ArtifactsReport = "browser_performance"
	ReportCodeQuality        ArtifactsReport = "codequality"
	ReportContainerScanning  ArtifactsReport = "container_scanning"
	ReportCoverageFuzzing    ArtifactsReport = "coverage_fuzzing"
	ReportCoverage           ArtifactsReport = "coverage_report"
	ReportCyclonedx          ArtifactsReport = "cyclonedx"
	ReportDAST               ArtifactsReport = "dast"
	ReportDependencyScanning ArtifactsReport = "dependency_scanning"
	ReportDotenv             ArtifactsReport = "dotenv"
	ReportJUnit              ArtifactsReport = "junit"
	ReportLicenseScanning    ArtifactsReport = "license_scanning"
	ReportLoadPerformance    ArtifactsReport = "load_performance"
	ReportMetrics            ArtifactsReport = "metrics"
	ReportRequirements       ArtifactsReport = "requirements"
	ReportSAST               ArtifactsReport = "sast"
	ReportSecretDetection    ArtifactsReport = "secret_detection"
	ReportTerraform          ArtifactsReport = "terraform"
)

var artifactsReports = []ArtifactsReport{
	ReportAccessibility, ReportAPIFuzzing, ReportBrowserPerformance, ReportCodeQuality,
	ReportContainerScanning, ReportCoverageFuzzing, ReportCoverage, ReportCyclonedx,
	ReportDAST, ReportDependencyScanning, ReportDotenv, ReportJUnit, ReportLicenseScanning,
	ReportLoadPerformance, ReportMetrics, ReportRequirements, ReportSAST,
	ReportSecretDetection, ReportTerraform,
}

type ArtifactsConfig struct {
	Paths     []string
	Excludes  []string
	ExpireIn  string
	ExposeAs  string
	Name      string
	Public    *bool
	Reports   map[ArtifactsReport]string
	Untracked *bool
	When      When
}

// Artifacts lists the files a job keeps after it finished. Paths are stored
// relative to the project directory without duplicates.
type Artifacts struct {
	paths     []string
	excludes  []string
	expireIn  string
	exposeAs  string
	name      string
	public    *bool
	reports   map[ArtifactsReport]string
	untracked *bool
	when      When
}

func NewArtifacts(cfg ArtifactsConfig) (*Artifacts, error) {
	if cfg.When != "" && !cfg.When.jobResult() {
		return nil, newConfigurationError("artifacts", "when must be one of always, on_failure or on_success, got %q", cfg.When)
	}
	for report := range cfg.Reports {
		if !slices.Contains(artifactsReports, report) {
			return nil, newConfigurationError("artifacts", "unknown report %q", report)
		}
	}

	a := &Artifacts{
		paths:     projectPaths(cfg.Paths),
		excludes:  projectPaths(cfg.Excludes),
		expireIn:  cfg.ExpireIn,
		exposeAs:  cfg.ExposeAs,
		name:      cfg.Name,
		public:    cloneBool(cfg.Public),
		reports:   make(map[ArtifactsReport]string, len(cfg.Reports)),
		untracked: cloneBool(cfg.Untracked),
		when:      cfg.When,
	}
	for report, path := range cfg.Reports {
		a.reports[report] = path
	}
	return a, nil
}

func MustNewArtifacts(cfg ArtifactsConfig) *Artifacts {
	a, err := NewArtifacts(cfg)
	if err != nil {
		panic(err)
	}
	return a
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func (a *Artifacts) Paths() []string {
	return slices.Clone(a.paths)
}

func (a *Artifacts) Excludes() []string {
	return slices.Clone(a.excludes)
}

func (a *Artifacts) AddPaths(paths ...string) *Artifacts {
	for _, p := range paths {
		a.paths = appendUnique(a.paths, projectPath(p))
	}
	return a
}

func (a *Artifacts) AddExcludes(excludes ...string) *Artifacts {
	for _, p := range excludes {
		a.excludes = appendUnique(a.excludes, projectPath(p))
	}
	return a
}

// Empty reports whether the artifacts neither keep paths nor reports, in
// which case they are not rendered.
func (a *Artifacts) Empty() bool {
	return len(a.paths) == 0 && len(a.reports) == 0
}

// Copy returns an independent copy of a. A nil a copies to nil.
func (a *Artifacts) Copy() *Artifacts {
	if a == nil {
		return nil
	}
	cp := *a
	cp.paths = slices.Clone(a.paths)
	cp.excludes = slices.Clone(a.excludes)
	cp.public = cloneBool(a.public)
	cp.untracked = cloneBool(a.untracked)
	cp.reports = make(map[ArtifactsReport]string, len(a.reports))
	for report, path := range a.reports {
		cp.reports[report] = path
	}
	return &cp
}

// Render returns nil for empty artifacts.
func (a *Artifacts) Render() yaml.MapSlice {
	if a.Empty() {
		return nil
	}
	rendered := yaml.MapSlice{}
	if a.name != "" {
		rendered = append(rendered, yaml.MapItem{Key: "name", Value: a.name})
	}
	if len(a.paths) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "paths", Value: slices.Clone(a.paths)})
	}
	if len(a.excludes) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "exclude", Value: slices.Clone(a.excludes)})
	}
	if a.expireIn != "" {
		rendered = append(rendered, yaml.MapItem{Key: "expire_in", Value: a.expireIn})
	}
	if a.exposeAs != "" {
		rendered = append(rendered, yaml.MapItem{Key: "expose_as", Value: a.exposeAs})
	}
	if a.public != nil {
		rendered = append(rendered, yaml.MapItem{Key: "public", Value: *a.public})
	}
	if len(a.reports) > 0 {
		reports := make([]string, 0, len(a.reports))
		for report := range a.reports {
			reports = append(reports, string(report))
		}
		sort.Strings(reports)
		renderedReports := make(yaml.MapSlice, 0, len(reports))
		for _, report := range reports {
			renderedReports = append(renderedReports, yaml.MapItem{
				Key:   report,
				Value: a.reports[ArtifactsReport(report)],
			})
		}
		rendered = append(rendered, yaml.MapItem{Key: "reports", Value: renderedReports})
	}
	if a.untracked != nil {
		rendered = append(rendered, yaml.MapItem{Key: "untracked", Value: *a.untracked})
	}
	if a.when != "" {
		rendered = append(rendered, yaml.MapItem{Key: "when", Value: string(a.when)})
	}
	return rendered
}

func (a *Artifacts) IsEqual(other *Artifacts) bool {
	if a == nil || other == nil {
		return a == other
	}
	return cmp.Equal(a.Render(), other.Render())
}
