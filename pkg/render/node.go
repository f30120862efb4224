package render

import (
	"fmt"

	"github.com/matzehuels/flowlens/pkg/flow"
)

// LogicPrefix starts the condition-logic line of a decision rule.
const LogicPrefix = "Logic: "

type style struct {
	typ  string
	icon Icon
	skin Skin
}

var styles = map[flow.Kind]style{
	flow.KindApexPluginCall:      {"Apex Plugin Call", IconCode, SkinNone},
	flow.KindAssignment:          {"Assignment", IconAssignment, SkinOrange},
	flow.KindCollectionProcessor: {"Collection Processor", IconNone, SkinNone},
	flow.KindDecision:            {"Decision", IconDecision, SkinOrange},
	flow.KindLoop:                {"Loop", IconLoop, SkinOrange},
	flow.KindOrchestratedStage:   {"Orchestrated Stage", IconRight, SkinNavy},
	flow.KindRecordCreate:        {"Record Create", IconCreateRecord, SkinPink},
	flow.KindRecordDelete:        {"Record Delete", IconDelete, SkinPink},
	flow.KindRecordLookup:        {"Record Lookup", IconLookup, SkinPink},
	flow.KindRecordRollback:      {"Record Rollback", IconNone, SkinPink},
	flow.KindRecordUpdate:        {"Record Update", IconUpdate, SkinPink},
	flow.KindScreen:              {"Screen", IconScreen, SkinBlue},
	flow.KindStep:                {"Step", IconNone, SkinNone},
	flow.KindSubflow:             {"Subflow", IconNone, SkinNavy},
	flow.KindTransform:           {"Transform", IconNone, SkinNone},
	flow.KindWait:                {"Wait", IconWait, SkinNone},
	flow.KindActionCall:          {"Action Call", IconCode, SkinNavy},
}

// TypeName returns the display name of a node kind.
func TypeName(k flow.Kind) string {
	if s, ok := styles[k]; ok {
		return s.typ
	}
	return k.String()
}

// ToDiagramNode converts a flow node into its diagram form.
func ToDiagramNode(n *flow.Node) DiagramNode {
	s, ok := styles[n.Kind]
	if !ok {
		s = style{typ: n.Kind.String()}
	}
	d := DiagramNode{
		ID:         n.Name,
		Label:      n.Label,
		Type:       s.typ,
		Color:      s.skin,
		Icon:       s.icon,
		DiffStatus: n.DiffStatus,
	}
	switch n.Kind {
	case flow.KindDecision:
		d.InnerNodes = ruleNodes(n)
	case flow.KindOrchestratedStage:
		d.InnerNodes = stageStepNodes(n)
	}
	return d
}

func ruleNodes(n *flow.Node) []InnerNode {
	if len(n.Rules) == 0 {
		return nil
	}
	out := make([]InnerNode, 0, len(n.Rules))
	for _, r := range n.Rules {
		out = append(out, InnerNode{
			ID:      n.Name + "_" + r.Name,
			Type:    "Rule",
			Label:   r.Label,
			Content: ruleContent(r),
		})
	}
	return out
}

func ruleContent(r flow.Rule) []string {
	lines := make([]string, 0, len(r.Conditions)+1)
	for i, c := range r.Conditions {
		lines = append(lines, fmt.Sprintf("%d. %s %s %s", i+1, c.LeftValueReference, c.Operator, FormatValue(c.RightValue)))
	}
	if len(lines) > 1 {
		lines = append(lines, LogicPrefix+r.ConditionLogic)
	}
	return lines
}

func stageStepNodes(n *flow.Node) []InnerNode {
	if len(n.StageSteps) == 0 {
		return nil
	}
	out := make([]InnerNode, 0, len(n.StageSteps))
	for i, s := range n.StageSteps {
		icon := IconStageStep
		if s.ActionType == flow.StepBackground {
			icon = IconStageStepBackground
		}
		out = append(out, InnerNode{
			ID:    n.Name + "_" + s.ActionName,
			Type:  "Stage Step",
			Label: fmt.Sprintf("%d. %s", i+1, s.Label),
			Icon:  icon,
		})
	}
	return out
}
