package model

// Tag is a colored label. Priorities, backlog tags, requirement types and
// requirement focuses all share this shape.
type Tag struct {
	ID      string `firestore:"-" json:"id"`
	Name    string `firestore:"name" json:"name"`
	Color   string `firestore:"color" json:"color"`
	Deleted bool   `firestore:"deleted" json:"deleted"`
}

// StatusTag is a kanban column.
type StatusTag struct {
	Tag
	OrderIndex      int  `firestore:"orderIndex" json:"orderIndex"`
	MarksTaskAsDone bool `firestore:"marksTaskAsDone" json:"marksTaskAsDone"`
}

const (
	TodoTagName         = "Todo"
	DoingTagName        = "Doing"
	DoneTagName         = "Done"
	AwaitsReviewTagName = "Awaits Review"

	DefaultRequirementTypeName = "Functional"
)

// AutomaticTag stands for "derive the status from the item's tasks".
var AutomaticTag = StatusTag{
	Tag:        Tag{ID: "", Name: "Automatic", Color: "#333333"},
	OrderIndex: -1,
}

// NoTag is shown when a referenced tag no longer exists.
var NoTag = Tag{ID: "unknown", Name: "Unknown", Color: "#CCCCCC"}

func DefaultStatusTags() []StatusTag {
	return []StatusTag{
		{Tag: Tag{Name: TodoTagName, Color: "#0737E3"}, OrderIndex: 0},
		{Tag: Tag{Name: DoingTagName, Color: "#AD7C00"}, OrderIndex: 1},
		{Tag: Tag{Name: DoneTagName, Color: "#009719"}, OrderIndex: 2, MarksTaskAsDone: true},
	}
}

func AwaitsReviewTag() StatusTag {
	return StatusTag{Tag: Tag{Name: AwaitsReviewTagName, Color: "#FF4D00"}, OrderIndex: 3}
}

func DefaultPriorityTags() []Tag {
	return []Tag{
		{Name: "P0", Color: "#FF0000"},
		{Name: "P1", Color: "#d1b01d"},
		{Name: "P2", Color: "#2c7817"},
	}
}

func DefaultRequirementTypeTags() []Tag {
	return []Tag{
		{Name: DefaultRequirementTypeName, Color: "#24A5BC"},
		{Name: "Non Functional", Color: "#CD4EC0"},
	}
}

func (t *Tag) SetID(id string) { t.ID = id }
