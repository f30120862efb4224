package plantuml

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowlens/pkg/flow"
	"github.com/matzehuels/flowlens/pkg/render"
)

func TestHeader(t *testing.T) {
	got := New().Header("foo")
	want := `skinparam State {
  BackgroundColor<<Pink>> #F9548A
  FontColor<<Pink>> white

  BackgroundColor<<Orange>> #DD7A00
  FontColor<<Orange>> white

  BackgroundColor<<Navy>> #344568
  FontColor<<Navy>> white

  BackgroundColor<<Blue>> #1B96FF
  FontColor<<Blue>> white
}

title foo`
	if got != want {
		t.Errorf("Header() =\n%s\nwant\n%s", got, want)
	}
}

func TestNode(t *testing.T) {
	tests := []struct {
		name string
		in   render.DiagramNode
		want string
	}{
		{
			name: "no skin",
			in:   render.DiagramNode{ID: "myApexPluginCall", Label: "myApexPluginCall", Type: "Apex Plugin Call", Icon: render.IconCode},
			want: `state "**Apex Plugin Call** <&code> \n myApexPluginCall" as myApexPluginCall`,
		},
		{
			name: "skin",
			in:   render.DiagramNode{ID: "myAssignment", Label: "myAssignment", Type: "Assignment", Icon: render.IconAssignment, Color: render.SkinOrange},
			want: `state "**Assignment** <&menu> \n myAssignment" as myAssignment <<Orange>>`,
		},
		{
			name: "quotes",
			in:   render.DiagramNode{ID: "s", Label: `say "hi"`, Type: "Screen", Icon: render.IconScreen, Color: render.SkinBlue},
			want: `state "**Screen** <&browser> \n say 'hi'" as s <<Blue>>`,
		},
		{
			name: "added",
			in:   render.DiagramNode{ID: "myNode", Label: "myNode", Type: "Record Create", Icon: render.IconCreateRecord, Color: render.SkinPink, DiffStatus: flow.DiffAdded},
			want: `state "**<&plus{scale=2}>** **Record Create** <&medical-cross> \n myNode" as myNode <<Pink>>`,
		},
		{
			name: "inner nodes",
			in: render.DiagramNode{
				ID: "myOrchestratedStage", Label: "myOrchestratedStage", Type: "Orchestrated Stage", Icon: render.IconRight,
				InnerNodes: []render.InnerNode{
					{ID: "myOrchestratedStage_step1Action", Label: "step1", Type: "Stage Step"},
					{ID: "myOrchestratedStage_step2Action", Label: "step2", Type: "Stage Step"},
				},
			},
			want: `state "**Orchestrated Stage** <&chevron-right> \n myOrchestratedStage" as myOrchestratedStage {
state "**Stage Step** \n step1" as myOrchestratedStage_step1Action <<Navy>>
state "**Stage Step** \n step2" as myOrchestratedStage_step2Action <<Navy>>
}`,
		},
		{
			name: "stage step icons",
			in: render.DiagramNode{
				ID: "S", Label: "S", Type: "Orchestrated Stage", Icon: render.IconRight, Color: render.SkinNavy,
				InnerNodes: []render.InnerNode{
					{ID: "S_a1", Label: "1. One", Type: "Stage Step", Icon: render.IconStageStep},
					{ID: "S_a2", Label: "2. Two", Type: "Stage Step", Icon: render.IconStageStepBackground},
				},
			},
			want: `state "**Orchestrated Stage** <&chevron-right> \n S" as S <<Navy>> {
state "**Stage Step** <&pencil> \n 1. One" as S_a1 <<Navy>>
state "**Stage Step** <&justify-center> \n 2. Two" as S_a2 <<Navy>>
}`,
		},
		{
			name: "rule content",
			in: render.DiagramNode{
				ID: "d", Label: "d", Type: "Decision", Icon: render.IconDecision, Color: render.SkinOrange,
				InnerNodes: []render.InnerNode{{ID: "d_r", Label: "r", Type: "Rule", Content: []string{"1. a EqualTo b"}}},
			},
			want: `state "**Decision** <&fork> \n d" as d <<Orange>> {
state "**Rule** \n r \n 1. a EqualTo b" as d_r <<Navy>>
}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Node(tt.in); got != tt.want {
				t.Errorf("Node() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		in   flow.Transition
		want string
	}{
		{flow.Transition{From: flow.StartName, To: "a"}, "[*] --> a"},
		{flow.Transition{From: "a", To: "b", Label: "for each"}, "a --> b : for each"},
		{flow.Transition{From: "a", To: "c", Fault: true, Label: "Fault"}, "a -[#red,dashed]-> c : Fault"},
	}
	for _, tt := range tests {
		if got := New().Transition(tt.in); got != tt.want {
			t.Errorf("Transition(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFooterEmpty(t *testing.T) {
	f := &flow.Flow{Label: "x"}
	got := render.Generate(f, New())
	if strings.HasSuffix(got, "\n") {
		t.Errorf("Generate() with empty footer ends with a newline: %q", got)
	}
}
