package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/ai-bank/kgadmin/internal/cli/output"
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/journal"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Health check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// Health check groups.
const (
	groupConfig  = "configuration"
	groupBackend = "backend"
	groupGraph   = "graph"
	groupJournal = "journal"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, backend and graph health",
		Long: `Check that kgadmin is configured correctly, that the knowledge-graph
backend answers, and that the graph it serves is well formed.

The report includes:
- A summary of the backend and its graph
- Health checks grouped by category (Configuration, Backend, Graph, Journal)
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  kgadmin doctor

  # Check the staging backend and output JSON
  kgadmin doctor --env staging --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         BackendSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// BackendSummary describes the backend that was checked.
type BackendSummary struct {
	BaseURL       string `json:"base_url"`
	Environment   string `json:"environment"`
	ConfigFile    string `json:"config_file,omitempty"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	NodeTypes     int    `json:"node_types"`
	RelationTypes int    `json:"relation_types"`
	Problems      int    `json:"problems"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	CheckID    string   `json:"check_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	mode, err := output.ParseMode(opts.Format)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	}

	doctorOutput := diagnose(cmd.Context(), cmdCtx.Cfg, cmdCtx.Client)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

// diagnose runs every health check against cfg and the backend behind client.
func diagnose(ctx context.Context, cfg *config.Config, client *kgclient.Client) *DoctorOutput {
	summary := BackendSummary{
		BaseURL:     cfg.BaseURL,
		Environment: cfg.Environment,
		ConfigFile:  config.GetConfigFileUsed(),
	}

	checks := configChecks(cfg)

	var page *kgclient.PageQuery
	if cfg.PageSize > 0 {
		page = &kgclient.PageQuery{PageNum: 1, PageSize: cfg.PageSize}
	}
	res, err := client.GraphData(ctx, page)
	if err != nil {
		checks = append(checks, failedCheck("BE01", "Graph data", groupBackend, statusError, err))
	} else {
		g := res.Data
		summary.Nodes = len(g.Nodes)
		summary.Edges = len(g.Edges)
		summary.NodeTypes = len(graph.NodeTypes(g.Nodes))
		summary.RelationTypes = len(graph.RelationTypes(g.Edges))
		checks = append(checks, HealthCheck{
			CheckID: "BE01", Name: "Graph data", Group: groupBackend, Status: statusPass,
			Details: []string{fmt.Sprintf("%d nodes, %d relationships", summary.Nodes, summary.Edges)},
		})
		checks = append(checks, graphChecks(g)...)
	}

	if ids, err := client.ListProblemIDs(ctx); err != nil {
		checks = append(checks, failedCheck("BE02", "Problem catalogue", groupBackend, statusWarn, err))
	} else {
		summary.Problems = len(ids.Data)
		checks = append(checks, HealthCheck{CheckID: "BE02", Name: "Problem catalogue", Group: groupBackend, Status: statusPass})
	}

	if _, err := client.VerifyGraph(ctx); err != nil {
		checks = append(checks, failedCheck("BE03", "Backend verification", groupBackend, statusWarn, err))
	} else {
		checks = append(checks, HealthCheck{CheckID: "BE03", Name: "Backend verification", Group: groupBackend, Status: statusPass})
	}

	checks = append(checks, journalCheck(cfg))

	// Sort health checks by group then by check ID
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].CheckID < checks[j].CheckID
	})

	issues := 0
	for _, c := range checks {
		issues += c.IssueCount
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks, summary.Nodes),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func failedCheck(id, name, group, status string, err error) HealthCheck {
	return HealthCheck{CheckID: id, Name: name, Group: group, Status: status, IssueCount: 1, Details: []string{err.Error()}}
}

func configChecks(cfg *config.Config) []HealthCheck {
	file := HealthCheck{CheckID: "CF01", Name: "Configuration file", Group: groupConfig, Status: statusPass}
	if used := config.GetConfigFileUsed(); used != "" {
		file.Details = []string{used}
	} else {
		file.Status = statusWarn
		file.IssueCount = 1
		file.Details = []string{"no kgadmin.yaml found; using flags, environment and defaults"}
	}

	token := HealthCheck{CheckID: "CF02", Name: "Backend token", Group: groupConfig, Status: statusPass}
	if cfg.Token == "" {
		token.Status = statusWarn
		token.IssueCount = 1
		token.Details = []string{"requests are sent without an Authorization header"}
	}

	return []HealthCheck{file, token}
}

// graphChecks inspects the raw graph as served, before any merging.
func graphChecks(g graph.Graph) []HealthCheck {
	nodeIDs := make(map[string]int, len(g.Nodes))
	var untyped, duplicates []string
	for _, n := range g.Nodes {
		nodeIDs[n.ID]++
		if nodeIDs[n.ID] == 2 {
			duplicates = append(duplicates, n.ID)
		}
		if n.NodeType == "" {
			untyped = append(untyped, n.ID)
		}
	}

	var dangling []string
	for _, e := range g.Edges {
		_, srcOK := nodeIDs[e.Source]
		_, dstOK := nodeIDs[e.Target]
		if !srcOK || !dstOK {
			dangling = append(dangling, fmt.Sprintf("%s (%s -> %s)", e.Key(), e.Source, e.Target))
		}
	}

	var invalid []string
	if err := g.Validate(); err != nil {
		invalid = append(invalid, err.Error())
	}

	return []HealthCheck{
		listCheck("GR01", "Untyped nodes", statusWarn, untyped),
		listCheck("GR02", "Dangling relationships", statusError, dangling),
		listCheck("GR03", "Duplicate node identities", statusWarn, duplicates),
		listCheck("GR04", "Property values", statusError, invalid),
	}
}

func listCheck(id, name, failStatus string, issues []string) HealthCheck {
	c := HealthCheck{CheckID: id, Name: name, Group: groupGraph, Status: statusPass, IssueCount: len(issues), Details: issues}
	if len(issues) > 0 {
		c.Status = failStatus
	}
	return c
}

func journalCheck(cfg *config.Config) HealthCheck {
	c := HealthCheck{CheckID: "JN01", Name: "Operation journal", Group: groupJournal, Status: statusPass}
	if cfg.Journal == "" {
		c.Details = []string{"disabled"}
		return c
	}
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return failedCheck(c.CheckID, c.Name, c.Group, statusError, err)
	}
	defer func() { _ = store.Close() }()
	c.Details = []string{cfg.Journal}
	return c
}

// calculateHealthScore computes a health score from 0-100.
// Larger graphs make each individual graph issue count for less.
func calculateHealthScore(checks []HealthCheck, nodeCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if nodeCount > 100 {
		basePenalty = 3.0
	}
	if nodeCount > 1000 {
		basePenalty = 2.0
	}
	if nodeCount > 10000 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		penalty := basePenalty
		if check.Group != groupGraph {
			// Setup problems do not shrink with graph size.
			penalty = 5.0
		}
		switch check.Status {
		case statusError:
			score -= float64(check.IssueCount) * penalty * 2 // Errors count double
		case statusWarn:
			score -= float64(check.IssueCount) * penalty
		}
	}

	// Clamp to 0-100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}

		rec := getRecommendation(check.CheckID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(checkID string) string {
	switch checkID {
	case "CF01":
		return "Create kgadmin.yaml with base_url and per-environment blocks"
	case "CF02":
		return "Set token (or KGADMIN_TOKEN) if the backend requires authentication"
	case "BE01":
		return "Check base_url and that the backend is running"
	case "BE02":
		return "Check that the backend exposes the problem catalogue endpoint"
	case "BE03":
		return "Run 'kgadmin graph verify' and inspect the backend logs"
	case "GR01":
		return "Give every node a nodeType so filters can select it"
	case "GR02":
		return "Remove or reconnect relationships whose endpoints are missing"
	case "GR03":
		return "Deduplicate nodes that share an identity on the backend"
	case "GR04":
		return "Replace array property values with scalars or objects"
	case "JN01":
		return "Point journal at a writable location or unset it"
	default:
		return ""
	}
}

// titleCase capitalizes group names for headings.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func statusIcon(styles *output.Styles, status string) string {
	switch status {
	case statusWarn:
		return styles.Warning.Render("!")
	case statusError:
		return styles.StatusFailed.Render("✗")
	default:
		return styles.StatusSuccess.Render("✓")
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header.Render("kgadmin Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header2.Render("Backend Summary"))
	r.Printf("   URL: %s | Environment: %s\n", out.Summary.BaseURL, out.Summary.Environment)
	r.Printf("   Nodes: %d | Relationships: %d | Problems: %d\n", out.Summary.Nodes, out.Summary.Edges, out.Summary.Problems)
	r.Printf("   Node types: %d | Relation types: %d\n", out.Summary.NodeTypes, out.Summary.RelationTypes)
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCase(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		status := fmt.Sprintf("%s %s: %s", statusIcon(styles, check.Status), check.CheckID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# kgadmin Health Report")
	r.Println("")

	r.Println("## Backend Summary")
	r.Println("")
	r.Printf("- **URL**: %s\n", out.Summary.BaseURL)
	r.Printf("- **Environment**: %s\n", out.Summary.Environment)
	if out.Summary.ConfigFile != "" {
		r.Printf("- **Config file**: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("- **Nodes**: %d\n", out.Summary.Nodes)
	r.Printf("- **Relationships**: %d\n", out.Summary.Edges)
	r.Printf("- **Node types**: %d\n", out.Summary.NodeTypes)
	r.Printf("- **Relation types**: %d\n", out.Summary.RelationTypes)
	r.Printf("- **Problems**: %d\n", out.Summary.Problems)
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCase(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.CheckID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
