package flow

// Kind identifies the variant collection a node belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindStart
	KindEnd
	KindApexPluginCall
	KindAssignment
	KindCollectionProcessor
	KindDecision
	KindLoop
	KindOrchestratedStage
	KindRecordCreate
	KindRecordDelete
	KindRecordLookup
	KindRecordRollback
	KindRecordUpdate
	KindScreen
	KindStep
	KindSubflow
	KindTransform
	KindWait
	KindActionCall
)

// firstVariant is the first Kind that maps to a document collection.
const firstVariant = KindApexPluginCall

const variantCount = int(KindActionCall-firstVariant) + 1

var collectionKeys = [variantCount]string{
	"apexPluginCalls",
	"assignments",
	"collectionProcessors",
	"decisions",
	"loops",
	"orchestratedStages",
	"recordCreates",
	"recordDeletes",
	"recordLookups",
	"recordRollbacks",
	"recordUpdates",
	"screens",
	"steps",
	"subflows",
	"transforms",
	"waits",
	"actionCalls",
}

// Variants returns the variant kinds in indexing and rendering order.
func Variants() []Kind {
	out := make([]Kind, variantCount)
	for i := range out {
		out[i] = firstVariant + Kind(i)
	}
	return out
}

// KindForCollection returns the variant kind stored under the given document
// key, such as "recordLookups".
func KindForCollection(key string) (Kind, bool) {
	for i, k := range collectionKeys {
		if k == key {
			return firstVariant + Kind(i), true
		}
	}
	return KindUnknown, false
}

// Collection returns the document key of a variant kind, or "" for Start,
// End and Unknown.
func (k Kind) Collection() string {
	if i := k.variantIndex(); i >= 0 {
		return collectionKeys[i]
	}
	return ""
}

func (k Kind) variantIndex() int {
	i := int(k - firstVariant)
	if i < 0 || i >= variantCount {
		return -1
	}
	return i
}

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	}
	if c := k.Collection(); c != "" {
		return c[:len(c)-1]
	}
	return "unknown"
}

// Shape is the connector layout of a node, which decides how its outgoing
// transitions are extracted.
type Shape int

const (
	// ShapeNone has no outgoing connectors.
	ShapeNone Shape = iota
	// ShapeFaultable has a connector and an optional fault connector.
	ShapeFaultable
	// ShapeStep has a list of connectors.
	ShapeStep
	// ShapeDecision has a default connector and one connector per rule.
	ShapeDecision
	// ShapeWait has a default connector and an optional fault connector.
	ShapeWait
	// ShapeLoop has next-value and no-more-values connectors.
	ShapeLoop
	// ShapeGeneric has a connector that may be a single value or a list.
	ShapeGeneric
)

func (s Shape) String() string {
	switch s {
	case ShapeFaultable:
		return "faultable"
	case ShapeStep:
		return "step"
	case ShapeDecision:
		return "decision"
	case ShapeWait:
		return "wait"
	case ShapeLoop:
		return "loop"
	case ShapeGeneric:
		return "generic"
	}
	return "none"
}

// classifier pairs distinguishing fields with the shape they imply. The
// order is significant: the first rule with any present field wins.
var classifier = []struct {
	fields []string
	shape  Shape
}{
	{[]string{"inputReference", "filters", "apexClass", "actionName"}, ShapeFaultable},
	{[]string{"connectors"}, ShapeStep},
	{[]string{"rules"}, ShapeDecision},
	{[]string{"waitEvents"}, ShapeWait},
	{[]string{"nextValueConnector"}, ShapeLoop},
	{[]string{"assignmentItems", "collectionProcessorType", "fields", "flowName", "dataType", "connector"}, ShapeGeneric},
}

// Classify returns the connector shape implied by an element's fields.
// A field counts as present when its key exists, whatever its value.
func Classify(attrs map[string]any) Shape {
	for _, rule := range classifier {
		for _, f := range rule.fields {
			if _, ok := attrs[f]; ok {
				return rule.shape
			}
		}
	}
	return ShapeNone
}
