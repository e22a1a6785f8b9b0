package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/ontorepair/pkg/ontorepair"
	"github.com/cognicore/ontorepair/pkg/ontorepair/issue"
	"github.com/cognicore/ontorepair/pkg/ontorepair/rdf"
	"github.com/cognicore/ontorepair/pkg/ontorepair/repair"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store"
)

type issueJSON struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Severity string   `json:"severity"`
	Impact   string   `json:"impact"`
	Message  string   `json:"message"`
	Subjects []string `json:"subjects"`
	Evidence []string `json:"evidence,omitempty"`
}

type proposalJSON struct {
	ID                   string   `json:"id"`
	Strategy             string   `json:"strategy"`
	Issue                string   `json:"issue"`
	Confidence           float64  `json:"confidence"`
	Impact               string   `json:"impact"`
	Actions              []string `json:"actions"`
	RequiresConfirmation bool     `json:"requires_confirmation,omitempty"`
	AutoApply            bool     `json:"auto_apply,omitempty"`
	Description          string   `json:"description,omitempty"`
	Error                string   `json:"error,omitempty"`
}

type changeJSON struct {
	ID       string    `json:"id"`
	Proposal string    `json:"proposal"`
	Strategy string    `json:"strategy"`
	Added    []string  `json:"added,omitempty"`
	Removed  []string  `json:"removed,omitempty"`
	At       time.Time `json:"at"`
}

func factStrings(facts []rdf.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.String()
	}
	return out
}

func issuesJSON(issues []issue.Issue) []issueJSON {
	out := make([]issueJSON, len(issues))
	for i, is := range issues {
		out[i] = issueJSON{
			ID:       is.ID,
			Kind:     string(is.Kind),
			Severity: is.Severity.String(),
			Impact:   is.Impact.String(),
			Message:  is.Message,
			Subjects: is.Subjects,
			Evidence: factStrings(is.Evidence),
		}
	}
	return out
}

func toProposalJSON(p repair.Proposal) proposalJSON {
	actions := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		actions[i] = a.String()
	}
	return proposalJSON{
		ID:                   p.ID,
		Strategy:             p.Kind,
		Issue:                p.IssueKey,
		Confidence:           p.Confidence,
		Impact:               p.Impact.String(),
		Actions:              actions,
		RequiresConfirmation: p.RequiresConfirmation,
		AutoApply:            p.AutoApply,
		Description:          p.Description,
	}
}

func (a *app) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <facts.yaml>...",
		Short: "Add facts from YAML files to the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			var facts []rdf.Fact
			for _, path := range args {
				loaded, err := loadFacts(path)
				if err != nil {
					return err
				}
				facts = append(facts, loaded...)
			}
			added, err := addAll(ctx, s, facts)
			if err != nil {
				return err
			}
			size, err := s.Size(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("facts loaded", zap.Int("read", len(facts)), zap.Int("added", added), zap.Int("size", size))
			return writeJSON(cmd.OutOrStdout(), map[string]int{"read": len(facts), "added": added, "size": size})
		},
	}
}

func addAll(ctx context.Context, s store.Batcher, facts []rdf.Fact) (int, error) {
	added := 0
	err := s.Batch(ctx, func(tx store.Tx) error {
		for _, f := range facts {
			ok, err := tx.Add(ctx, f)
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
		return nil
	})
	return added, err
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Compute the class hierarchy and print inferred subsumptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := a.engine().Classify(ctx, s)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Inferred     []string   `json:"inferred"`
				Equivalences [][]string `json:"equivalences,omitempty"`
				Cycles       [][]string `json:"cycles,omitempty"`
				Iterations   int        `json:"iterations"`
				Partial      bool       `json:"partial,omitempty"`
			}{factStrings(res.Inferred), res.Equivalences, res.Cycles, res.Iterations, res.Partial})
		},
	}
}

func (a *app) reasonCmd() *cobra.Command {
	var (
		timeout       time.Duration
		maxInferences int
		extensions    []string
		rulesPath     string
	)
	cmd := &cobra.Command{
		Use:   "reason",
		Short: "Run classification, consistency, realization and extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e := a.engine()
			opts := e.ReasonOptions()
			if cmd.Flags().Changed("timeout") {
				opts.Timeout = timeout
			}
			if cmd.Flags().Changed("max-inferences") {
				opts.MaxInferences = maxInferences
			}
			if len(extensions) > 0 {
				opts.Extensions = extensions
			}
			if rulesPath != "" {
				rules, err := readFile(rulesPath)
				if err != nil {
					return err
				}
				opts.Rules = rules
			}
			opts.OnPhase = func(p ontorepair.Phase, ps ontorepair.PhaseStats) {
				a.logger.Debug("phase", zap.String("phase", string(p)), zap.Duration("took", ps.Duration))
			}

			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := e.ReasonAll(ctx, s, opts)
			if err != nil {
				return err
			}
			var issues []issueJSON
			if res.Consistency != nil {
				issues = issuesJSON(res.Consistency.Issues)
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				SessionID string                  `json:"session_id"`
				Success   bool                    `json:"success"`
				TimedOut  bool                    `json:"timed_out,omitempty"`
				Capped    bool                    `json:"capped,omitempty"`
				Inferred  []string                `json:"inferred"`
				Issues    []issueJSON             `json:"issues,omitempty"`
				Phases    []ontorepair.PhaseStats `json:"phases"`
			}{res.SessionID, res.Success, res.TimedOut, res.Capped, factStrings(res.InferredFacts), issues, res.PhaseStats})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Reasoning deadline (0 disables it; default from config)")
	cmd.Flags().IntVar(&maxInferences, "max-inferences", 0, "Inference cap (0 disables it; default from config)")
	cmd.Flags().StringSliceVar(&extensions, "extension", nil, "Extension to run (repeatable)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Datalog rules file deriving inferred/3 from triple/3")
	return cmd
}

func (a *app) repairCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Detect issues, apply repairs and completions, and validate the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e := a.engine()
			opts := e.RepairOptions()
			if dryRun {
				opts.AutoRepair = false
			}

			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := e.RepairAndComplete(ctx, s, opts)
			if err != nil {
				return err
			}

			out := struct {
				SessionID   string                  `json:"session_id"`
				TimedOut    bool                    `json:"timed_out,omitempty"`
				Issues      []issueJSON             `json:"issues"`
				Proposals   []proposalJSON          `json:"proposals"`
				Applied     []proposalJSON          `json:"applied"`
				Failed      []proposalJSON          `json:"failed,omitempty"`
				Changes     []changeJSON            `json:"changes,omitempty"`
				SuccessRate float64                 `json:"success_rate"`
				Consistent  bool                    `json:"consistent"`
				Overall     float64                 `json:"overall_score"`
				Remaining   int                     `json:"remaining_issues"`
				Phases      []ontorepair.PhaseStats `json:"phases"`
			}{
				SessionID:   res.SessionID,
				Issues:      issuesJSON(res.IssuesFound),
				TimedOut:    res.TimedOut,
				SuccessRate: res.SuccessRate(),
				Phases:      res.PhaseStats,
			}
			if v := res.Validation; v != nil {
				out.Consistent, out.Overall, out.Remaining = v.IsConsistent, v.Overall, v.RemainingIssues
			}
			for _, p := range res.Proposals {
				out.Proposals = append(out.Proposals, toProposalJSON(p))
			}
			for _, p := range res.ProposalsApplied {
				out.Applied = append(out.Applied, toProposalJSON(p))
			}
			for _, f := range res.ProposalsFailed {
				pj := toProposalJSON(f.Proposal)
				pj.Error = f.Err.Error()
				out.Failed = append(out.Failed, pj)
			}
			for _, c := range res.Changes {
				out.Changes = append(out.Changes, changeJSON{
					ID:       c.ID,
					Proposal: c.ProposalID,
					Strategy: c.Kind,
					Added:    factStrings(c.Added),
					Removed:  factStrings(c.Removed),
					At:       c.At,
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Propose repairs without applying them")
	return cmd
}
